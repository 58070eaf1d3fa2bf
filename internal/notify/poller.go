package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourorg/fitclubcl/internal/models"
)

// ============================================================================
// BACKGROUND NOTIFICATION POLLER
// ============================================================================
// Tarea periódica independiente del ciclo de vida de la app: lee el token
// persistido directamente del storage local, busca notificaciones pendientes
// en el backend y las muestra como notificaciones locales, confirmando la
// recepción de cada una. Fire-and-forget: el único reintento es la próxima
// corrida programada.
//
// Soporta una lista de base URLs candidatas probadas en orden (en gimnasios
// la dirección alcanzable del backend no siempre se conoce de antemano):
// la primera que responde gana. Fallback secuencial simple, no un circuit
// breaker.

// Poller ejecuta una corrida de polling por invocación.
type Poller struct {
	// BaseURLs son las direcciones candidatas del backend, probadas en orden.
	BaseURLs []string
	// TokenFunc lee el token persistido directamente del storage local,
	// sin pasar por la API del Session Store (el poller corre fuera del
	// contexto normal de la app). "" = sin sesión.
	TokenFunc func() string
	// Notifier muestra cada notificación localmente.
	Notifier Notifier
	// HTTPClient es opcional; default con timeout de 10s.
	HTTPClient *http.Client
}

func (p *Poller) client() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Stats resume una corrida para logging y el dashboard de debugging.
type Stats struct {
	Pending   int // notificaciones retornadas por el backend
	Delivered int // mostradas localmente con éxito
	Failures  int // fallos de display o de ack, aislados por item
}

// RunOnce ejecuta una corrida completa. Retorna error solo si el fetch
// inicial falló en todas las URLs candidatas; los fallos por notificación
// individual se aíslan y no abortan el lote.
func (p *Poller) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats

	token := ""
	if p.TokenFunc != nil {
		token = p.TokenFunc()
	}
	if token == "" {
		// Sin sesión no hay nada que buscar; la corrida es exitosa
		log.Printf("🔕 Poller: sin token persistido, nada que hacer")
		return stats, nil
	}

	base, pending, err := p.fetchPending(ctx, token)
	if err != nil {
		return stats, err
	}
	stats.Pending = len(pending)
	if len(pending) == 0 {
		log.Printf("🔔 Poller: sin notificaciones pendientes")
		return stats, nil
	}
	log.Printf("🔔 Poller: %d notificaciones pendientes", len(pending))

	for _, n := range pending {
		if err := p.Notifier.Notify(ctx, n); err != nil {
			log.Printf("⚠️ Poller: no se pudo mostrar la notificación %s: %v", n.ID, err)
			stats.Failures++
			continue
		}
		stats.Delivered++
		if err := p.ackReceived(ctx, base, token, n.ID); err != nil {
			log.Printf("⚠️ Poller: no se pudo confirmar recepción de %s: %v", n.ID, err)
			stats.Failures++
		}
	}
	return stats, nil
}

// fetchPending prueba las URLs candidatas en orden y retorna la primera que
// responde junto con su lista de pendientes.
func (p *Poller) fetchPending(ctx context.Context, token string) (string, []models.PendingNotification, error) {
	var lastErr error
	for _, raw := range p.BaseURLs {
		base := strings.TrimSuffix(raw, "/")
		pending, err := p.getPending(ctx, base, token)
		if err != nil {
			log.Printf("⚠️ Poller: %s no respondió: %v", base, err)
			lastErr = err
			continue
		}
		return base, pending, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("sin URLs candidatas configuradas")
	}
	return "", nil, fmt.Errorf("ningún backend respondió: %w", lastErr)
}

func (p *Poller) getPending(ctx context.Context, base, token string) ([]models.PendingNotification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/notifications/pending", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var pending []models.PendingNotification
	if err := json.NewDecoder(resp.Body).Decode(&pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func (p *Poller) ackReceived(ctx context.Context, base, token, id string) error {
	u := base + "/notifications/" + url.PathEscape(id) + "/received"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
