package devserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/fitclubcl/internal/models"
)

func jsonRequest(method, path string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request, out interface{}) *http.Response {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decodificando respuesta: %v", err)
		}
	}
	return resp
}

// registerAndVerify completa el flujo registro → OTP → verificación y
// retorna el token de sesión. El OTP se lee directo del store en memoria
// (en el stub real va al log).
func registerAndVerify(t *testing.T, srv *Server, app *fiber.App, email, password string) string {
	t.Helper()

	var reg models.RegisterResponse
	resp := doJSON(t, app, jsonRequest(http.MethodPost, "/auth/register", models.RegisterRequest{
		Name: "Test", Email: email, Password: password,
	}), &reg)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}

	srv.store.mu.Lock()
	otp := srv.store.otps[email]
	srv.store.mu.Unlock()
	if otp == "" {
		t.Fatal("no se generó OTP para el registro")
	}

	var login models.LoginResponse
	resp = doJSON(t, app, jsonRequest(http.MethodPost, "/auth/verify-email", models.VerifyEmailRequest{
		Email: email, Otp: otp,
	}), &login)
	if resp.StatusCode != http.StatusOK || login.Token == "" {
		t.Fatalf("verify status = %d, token = %q", resp.StatusCode, login.Token)
	}
	return login.Token
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	srv := New()
	app := srv.App()

	token := registerAndVerify(t, srv, app, "ana@fitclub.cl", "secreta123")
	if token == "" {
		t.Fatal("sin token")
	}

	// Login directo ahora que el email está verificado
	var login models.LoginResponse
	resp := doJSON(t, app, jsonRequest(http.MethodPost, "/auth/login", models.LoginRequest{
		Email: "ana@fitclub.cl", Password: "secreta123",
	}), &login)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	if login.Token == "" || login.User == nil || login.User.Email != "ana@fitclub.cl" {
		t.Errorf("login = %+v", login)
	}

	// /me con el token
	req := jsonRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	var profile models.UserProfile
	resp = doJSON(t, app, req, &profile)
	if resp.StatusCode != http.StatusOK || profile.Email != "ana@fitclub.cl" {
		t.Errorf("me status = %d, profile = %+v", resp.StatusCode, profile)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := New()
	app := srv.App()
	registerAndVerify(t, srv, app, "ana@fitclub.cl", "secreta123")

	resp := doJSON(t, app, jsonRequest(http.MethodPost, "/auth/login", models.LoginRequest{
		Email: "ana@fitclub.cl", Password: "equivocada",
	}), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	srv := New()
	app := srv.App()

	doJSON(t, app, jsonRequest(http.MethodPost, "/auth/register", models.RegisterRequest{
		Name: "Sin Verificar", Email: "nuevo@fitclub.cl", Password: "secreta123",
	}), nil)

	resp := doJSON(t, app, jsonRequest(http.MethodPost, "/auth/login", models.LoginRequest{
		Email: "nuevo@fitclub.cl", Password: "secreta123",
	}), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestVerifyEmailRejectsWrongOTP(t *testing.T) {
	srv := New()
	app := srv.App()

	doJSON(t, app, jsonRequest(http.MethodPost, "/auth/register", models.RegisterRequest{
		Name: "Test", Email: "otp@fitclub.cl", Password: "secreta123",
	}), nil)

	resp := doJSON(t, app, jsonRequest(http.MethodPost, "/auth/verify-email", models.VerifyEmailRequest{
		Email: "otp@fitclub.cl", Otp: "000000x",
	}), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	srv := New()
	app := srv.App()
	registerAndVerify(t, srv, app, "ana@fitclub.cl", "vieja12345")

	resp := doJSON(t, app, jsonRequest(http.MethodPost, "/auth/forgot-password", models.ForgotPasswordRequest{
		Email: "ana@fitclub.cl",
	}), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forgot status = %d", resp.StatusCode)
	}

	srv.store.mu.Lock()
	otp := srv.store.otps["ana@fitclub.cl"]
	srv.store.mu.Unlock()

	resp = doJSON(t, app, jsonRequest(http.MethodPost, "/auth/reset-password", models.ResetPasswordRequest{
		Email: "ana@fitclub.cl", Otp: otp, NewPassword: "nueva12345",
	}), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}

	// La contraseña nueva funciona, la vieja no
	resp = doJSON(t, app, jsonRequest(http.MethodPost, "/auth/login", models.LoginRequest{
		Email: "ana@fitclub.cl", Password: "nueva12345",
	}), nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("login con contraseña nueva status = %d", resp.StatusCode)
	}
	resp = doJSON(t, app, jsonRequest(http.MethodPost, "/auth/login", models.LoginRequest{
		Email: "ana@fitclub.cl", Password: "vieja12345",
	}), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("login con contraseña vieja status = %d", resp.StatusCode)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	srv := New()
	app := srv.App()
	token := registerAndVerify(t, srv, app, "ana@fitclub.cl", "secreta123")

	u := srv.store.userByEmail("ana@fitclub.cl")
	srv.store.addNotification(u.ID, models.PendingNotification{
		Title: "Clase", Message: "Spinning a las 18:00", Type: models.NotificationBookingReminder,
	})

	authedGet := func(path string) *http.Request {
		req := jsonRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	var pending []models.PendingNotification
	doJSON(t, app, authedGet("/notifications/pending"), &pending)
	if len(pending) != 1 || pending[0].Status != models.NotificationStatusPending {
		t.Fatalf("pending = %+v", pending)
	}

	// PENDING → RECEIVED
	req := jsonRequest(http.MethodPut, "/notifications/"+pending[0].ID+"/received", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if resp := doJSON(t, app, req, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("received status = %d", resp.StatusCode)
	}

	doJSON(t, app, authedGet("/notifications/pending"), &pending)
	if len(pending) != 0 {
		t.Errorf("tras el ack no deberían quedar pendientes: %+v", pending)
	}

	var unread models.UnreadCountResponse
	doJSON(t, app, authedGet("/notifications/unread-count"), &unread)
	if unread.Count != 1 {
		t.Errorf("unread = %d, want 1 (recibida pero no leída)", unread.Count)
	}

	// RECEIVED → ENVIADA
	u2 := srv.store.notifs[u.ID][0]
	req = jsonRequest(http.MethodPut, "/notifications/"+u2.ID+"/read", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	doJSON(t, app, req, nil)

	doJSON(t, app, authedGet("/notifications/unread-count"), &unread)
	if unread.Count != 0 {
		t.Errorf("unread = %d, want 0", unread.Count)
	}

	var sent []models.PendingNotification
	doJSON(t, app, authedGet("/notifications/sent"), &sent)
	if len(sent) != 1 || sent[0].Status != models.NotificationStatusSent {
		t.Errorf("sent = %+v", sent)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := New()
	app := srv.App()

	resp := doJSON(t, app, jsonRequest(http.MethodGet, "/me", nil), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("sin token status = %d, want 401", resp.StatusCode)
	}

	req := jsonRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer token-falso")
	resp = doJSON(t, app, req, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("token falso status = %d, want 401", resp.StatusCode)
	}
}
