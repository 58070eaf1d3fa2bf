package config

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/yourorg/fitclubcl/internal/session"
)

// MinPollInterval es el piso del intervalo de polling, espejo del mínimo que
// impone el scheduler de background de la plataforma móvil. Valores menores
// se ajustan hacia arriba, nunca se respetan.
const MinPollInterval = 15 * time.Minute

// AgentConfig configura el agente de notificaciones. Se carga desde YAML
// y/o variables de entorno (las env vars pisan al archivo).
type AgentConfig struct {
	// BaseURLs candidatas del backend, probadas en orden por el poller.
	BaseURLs      []string      `yaml:"base_urls" env:"FITCLUB_BASE_URLS" env-separator:","`
	PollInterval  time.Duration `yaml:"poll_interval" env:"FITCLUB_POLL_INTERVAL" env-default:"15m"`
	SessionFile   string        `yaml:"session_file" env:"FITCLUB_SESSION_FILE"`
	SessionKeyHex string        `yaml:"session_key" env:"FITCLUB_SESSION_KEY"`
	// RedisAddr activa el session store compartido para kioscos; vacío =
	// archivo local.
	RedisAddr     string `yaml:"redis_addr" env:"FITCLUB_REDIS_ADDR"`
	DeviceID      string `yaml:"device_id" env:"FITCLUB_DEVICE_ID"`
	NotifyCommand string `yaml:"notify_command" env:"FITCLUB_NOTIFY_CMD"`
	Dashboard     bool   `yaml:"debug_dashboard" env:"FITCLUB_DEBUG_DASHBOARD"`
	DashboardAddr string `yaml:"dashboard_addr" env:"FITCLUB_DASHBOARD_ADDR" env-default:":8090"`
}

// Load lee la configuración desde el path indicado por -config o
// CONFIG_PATH; sin archivo, solo variables de entorno.
func Load() (*AgentConfig, error) {
	return LoadPath(fetchConfigPath())
}

// LoadPath lee la configuración desde path, o solo del entorno si path
// viene vacío.
func LoadPath(path string) (*AgentConfig, error) {
	var cfg AgentConfig
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cargando configuración: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *AgentConfig) applyDefaults() {
	if len(cfg.BaseURLs) == 0 {
		cfg.BaseURLs = []string{"http://127.0.0.1:8080"}
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = session.DefaultPath()
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
	}
	if cfg.PollInterval < MinPollInterval {
		log.Printf("⚠️ poll_interval %s bajo el mínimo, ajustando a %s", cfg.PollInterval, MinPollInterval)
		cfg.PollInterval = MinPollInterval
	}
}

// SessionKey decodifica la key de cifrado del archivo de sesión (hex de 32
// bytes). Retorna nil sin error cuando no hay key configurada (archivo en
// texto plano).
func (cfg *AgentConfig) SessionKey() ([]byte, error) {
	if cfg.SessionKeyHex == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(cfg.SessionKeyHex)
	if err != nil {
		return nil, fmt.Errorf("session_key no es hex válido: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session_key debe ser de 32 bytes, tiene %d", len(key))
	}
	return key, nil
}

// fetchConfigPath obtiene el path de configuración.
// Prioridad: flag > env > default (vacío).
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path al archivo de configuración")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
