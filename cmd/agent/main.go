package main

import (
	"context"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yourorg/fitclubcl/internal/config"
	"github.com/yourorg/fitclubcl/internal/debug"
	"github.com/yourorg/fitclubcl/internal/notify"
	"github.com/yourorg/fitclubcl/internal/session"
)

// El agente es el proceso en background que reemplaza al scheduler nativo de
// la plataforma móvil: corre el poller de notificaciones a intervalo fijo
// leyendo el token persistido, sin depender de que la app esté abierta.

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	key, err := cfg.SessionKey()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// ============================================================================
	// TOKEN SOURCE - ARCHIVO LOCAL O REDIS (KIOSCOS)
	// ============================================================================
	var tokenFunc func() string
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		store := session.NewRedisStore(rdb, cfg.DeviceID)
		tokenFunc = store.Token
		log.Printf("✅ Sesión compartida vía Redis en %s (device %s)", cfg.RedisAddr, cfg.DeviceID)
	} else {
		path := cfg.SessionFile
		tokenFunc = func() string { return session.ReadTokenFile(path, key) }
		log.Printf("✅ Sesión local en %s", path)
	}

	poller := &notify.Poller{
		BaseURLs:  cfg.BaseURLs,
		TokenFunc: tokenFunc,
		Notifier:  pickNotifier(cfg.NotifyCommand),
	}

	// ============================================================================
	// DEBUG DASHBOARD (OPCIONAL)
	// ============================================================================
	if cfg.Dashboard {
		go serveDashboard(cfg.DashboardAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("🚀 Agente FitClub iniciado, polling cada %s contra %v", cfg.PollInterval, cfg.BaseURLs)
	runPoller(ctx, poller)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runPoller(ctx, poller)
		case <-ctx.Done():
			log.Println("🛑 Señal de terminación recibida, cerrando agente...")
			return
		}
	}
}

// runPoller ejecuta una corrida y reporta el resultado al log y al dashboard.
func runPoller(ctx context.Context, p *notify.Poller) {
	stats, err := p.RunOnce(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		log.Printf("⚠️ Corrida de polling falló: %v", err)
		debug.LogError("corrida de polling falló", map[string]interface{}{"error": err.Error()})
	} else if stats.Pending > 0 {
		log.Printf("✅ Corrida de polling: %d pendientes, %d mostradas, %d fallos", stats.Pending, stats.Delivered, stats.Failures)
	}
	debug.SendPollerStatus(debug.PollerStatus{
		LastRun:   time.Now().Unix(),
		Status:    status,
		Delivered: stats.Delivered,
		Errors:    stats.Failures,
	})
}

// pickNotifier elige cómo mostrar las notificaciones: comando configurado,
// notify-send si existe, o solo log.
func pickNotifier(command string) notify.Notifier {
	if command != "" {
		return &notify.DesktopNotifier{Command: command}
	}
	if _, err := exec.LookPath("notify-send"); err == nil {
		return &notify.DesktopNotifier{}
	}
	log.Println("⚠️ notify-send no disponible, las notificaciones van solo al log")
	return notify.LogNotifier{}
}

// serveDashboard levanta el WebSocket del dashboard de debugging.
func serveDashboard(addr string) {
	app := fiber.New()

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(debug.HandleWebSocketFiber))

	log.Printf("🐛 Dashboard de debugging en ws://%s/ws", addr)
	if err := app.Listen(addr); err != nil {
		log.Printf("⚠️ Dashboard no pudo iniciarse: %v", err)
	}
}
