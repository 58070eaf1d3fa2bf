package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/yourorg/fitclubcl/internal/models"
)

// recordingNotifier registra lo mostrado y puede fallar por id.
type recordingNotifier struct {
	mu     sync.Mutex
	shown  []string
	failID string
}

func (r *recordingNotifier) Notify(ctx context.Context, n models.PendingNotification) error {
	if n.ID == r.failID {
		return errors.New("display falló")
	}
	r.mu.Lock()
	r.shown = append(r.shown, n.ID)
	r.mu.Unlock()
	return nil
}

// stubBackend sirve /notifications/pending y registra los acks.
type stubBackend struct {
	mu      sync.Mutex
	pending []models.PendingNotification
	acked   []string
	ackFail string // id cuyo ack retorna 500
}

func (b *stubBackend) handler(t *testing.T, wantToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /notifications/pending", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+wantToken {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(b.pending)
	})
	mux.HandleFunc("PUT /notifications/{id}/received", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == b.ackFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		b.mu.Lock()
		b.acked = append(b.acked, id)
		b.mu.Unlock()
		w.Write([]byte(`{"message":"ok"}`))
	})
	return mux
}

func notif(id string) models.PendingNotification {
	return models.PendingNotification{
		ID:      id,
		Title:   "Recordatorio",
		Message: "Tu clase empieza pronto",
		Type:    models.NotificationBookingReminder,
	}
}

func TestPollerDeliversAndAcks(t *testing.T) {
	backend := &stubBackend{pending: []models.PendingNotification{notif("n-1"), notif("n-2")}}
	srv := httptest.NewServer(backend.handler(t, "tok"))
	defer srv.Close()

	shown := &recordingNotifier{}
	p := &Poller{
		BaseURLs:  []string{srv.URL},
		TokenFunc: func() string { return "tok" },
		Notifier:  shown,
	}

	stats, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pending != 2 || stats.Delivered != 2 || stats.Failures != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(shown.shown) != 2 || len(backend.acked) != 2 {
		t.Errorf("shown = %v, acked = %v", shown.shown, backend.acked)
	}
}

func TestPollerWithoutTokenIsNoOp(t *testing.T) {
	// Sin sesión persistida la corrida es exitosa y no toca la red
	p := &Poller{
		BaseURLs:  []string{"http://127.0.0.1:1"},
		TokenFunc: func() string { return "" },
		Notifier:  LogNotifier{},
	}
	stats, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pending != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPollerFallsBackToNextURL(t *testing.T) {
	backend := &stubBackend{pending: []models.PendingNotification{notif("n-1")}}
	srv := httptest.NewServer(backend.handler(t, "tok"))
	defer srv.Close()

	// La primera URL no responde; la segunda es el backend real
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	p := &Poller{
		BaseURLs:  []string{dead.URL, srv.URL + "/"},
		TokenFunc: func() string { return "tok" },
		Notifier:  &recordingNotifier{},
	}
	stats, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Delivered != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPollerAllURLsDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	p := &Poller{
		BaseURLs:  []string{dead.URL},
		TokenFunc: func() string { return "tok" },
		Notifier:  LogNotifier{},
	}
	if _, err := p.RunOnce(context.Background()); err == nil {
		t.Fatal("se esperaba error con todos los backends caídos")
	}
}

func TestPollerIsolatesPerItemFailures(t *testing.T) {
	backend := &stubBackend{
		pending: []models.PendingNotification{notif("n-1"), notif("n-2"), notif("n-3")},
		ackFail: "n-3",
	}
	srv := httptest.NewServer(backend.handler(t, "tok"))
	defer srv.Close()

	// n-2 falla al mostrarse, n-3 falla el ack; n-1 completa igual
	shown := &recordingNotifier{failID: "n-2"}
	p := &Poller{
		BaseURLs:  []string{srv.URL},
		TokenFunc: func() string { return "tok" },
		Notifier:  shown,
	}

	stats, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pending != 3 || stats.Delivered != 2 || stats.Failures != 2 {
		t.Errorf("stats = %+v", stats)
	}
	// La que no se mostró no debe confirmarse como recibida
	for _, id := range backend.acked {
		if id == "n-2" {
			t.Error("n-2 no se mostró, no debería haberse confirmado")
		}
	}
	if len(backend.acked) != 1 || backend.acked[0] != "n-1" {
		t.Errorf("acked = %v, want [n-1]", backend.acked)
	}
}

func TestPollerEmptyList(t *testing.T) {
	backend := &stubBackend{}
	srv := httptest.NewServer(backend.handler(t, "tok"))
	defer srv.Close()

	p := &Poller{
		BaseURLs:  []string{srv.URL},
		TokenFunc: func() string { return "tok" },
		Notifier:  LogNotifier{},
	}
	stats, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pending != 0 || stats.Delivered != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
