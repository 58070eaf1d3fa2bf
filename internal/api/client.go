package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/yourorg/fitclubcl/internal/authstate"
	"github.com/yourorg/fitclubcl/internal/cache"
	"github.com/yourorg/fitclubcl/internal/models"
	"github.com/yourorg/fitclubcl/internal/session"
)

// Client es el cliente HTTP compartido contra el backend de FitClub.
// Un único http.Client con base URL y timeout fijos; el transporte adjunta
// el bearer token por request y fuerza logout global ante 401/403.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	state      *authstate.State
	cache      *cache.Cache
}

const defaultTimeout = 15 * time.Second

// New crea el cliente compartido. El timeout es fijo (no adaptativo) y se
// puede ajustar con FITCLUB_HTTP_TIMEOUT.
func New(baseURL string, store session.Store, state *authstate.State) *Client {
	timeout := defaultTimeout
	if ttl := os.Getenv("FITCLUB_HTTP_TIMEOUT"); ttl != "" {
		dur, err := time.ParseDuration(ttl)
		if err != nil || dur <= 0 {
			log.Printf("FITCLUB_HTTP_TIMEOUT=%q inválido, usando default %s", ttl, timeout)
		} else {
			timeout = dur
		}
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		store:   store,
		state:   state,
		cache:   cache.NewCache(30*time.Second, time.Minute),
	}
	c.httpClient = &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			base:          http.DefaultTransport,
			tokens:        store,
			onAuthFailure: c.handleAuthFailure,
		},
	}
	return c
}

// handleAuthFailure es el logout global: limpia la sesión y baja el flag de
// autenticación. Ambas operaciones son idempotentes, así que dos 401
// concurrentes producen un solo logout observable.
func (c *Client) handleAuthFailure() {
	log.Printf("⚠️ Respuesta 401/403 del backend, cerrando sesión local")
	c.store.Clear()
	c.cache.Clear()
	if c.state != nil {
		c.state.Logout()
	}
}

// ResetCache descarta las respuestas cacheadas (se usa al iniciar sesión
// para no servir datos del usuario anterior).
func (c *Client) ResetCache() {
	c.cache.Clear()
}

// doJSON ejecuta un request JSON y decodifica la respuesta 2xx en out.
// Un status no-2xx se convierte en *Error con el mensaje del servidor.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: serializando request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decodificando respuesta: %w", err)
	}
	return nil
}

// newAPIError extrae el mensaje de error del body del servidor cuando existe,
// o cae al texto genérico del status.
func newAPIError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else if body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

// ============================================================================
// AUTENTICACIÓN
// ============================================================================

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	var out models.RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email, otp string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/verify-email", models.VerifyEmailRequest{Email: email, Otp: otp}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/forgot-password", models.ForgotPasswordRequest{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	req := models.ResetPasswordRequest{Email: email, Otp: otp, NewPassword: newPassword}
	return c.doJSON(ctx, http.MethodPost, "/auth/reset-password", req, nil)
}

// ============================================================================
// PERFIL Y NOTIFICACIONES
// ============================================================================

// Me retorna el perfil del usuario autenticado, cacheado 1 minuto.
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	if v, found := c.cache.Get("me"); found {
		p := v.(models.UserProfile)
		return &p, nil
	}
	var out models.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	c.cache.SetWithTTL("me", out, time.Minute)
	return &out, nil
}

func (c *Client) PendingNotifications(ctx context.Context) ([]models.PendingNotification, error) {
	var out []models.PendingNotification
	if err := c.doJSON(ctx, http.MethodGet, "/notifications/pending", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SentNotifications(ctx context.Context) ([]models.PendingNotification, error) {
	var out []models.PendingNotification
	if err := c.doJSON(ctx, http.MethodGet, "/notifications/sent", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkReceived confirma al backend la recepción de una notificación
// (transición PENDING → RECEIVED).
func (c *Client) MarkReceived(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/received", nil, nil)
}

// MarkRead marca una notificación como leída (transición a ENVIADA).
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// UnreadCount retorna el contador de no leídas, cacheado 30 segundos para
// que el badge de la UI pueda refrescar sin golpear el backend.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	if v, found := c.cache.Get("unread"); found {
		return v.(int), nil
	}
	var out models.UnreadCountResponse
	if err := c.doJSON(ctx, http.MethodGet, "/notifications/unread-count", nil, &out); err != nil {
		return 0, err
	}
	c.cache.Set("unread", out.Count)
	return out.Count, nil
}
