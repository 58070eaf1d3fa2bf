package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourorg/fitclubcl/internal/api"
	"github.com/yourorg/fitclubcl/internal/authstate"
	"github.com/yourorg/fitclubcl/internal/models"
	"github.com/yourorg/fitclubcl/internal/session"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *session.MemStore, *authstate.State) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemStore()
	state := authstate.New(false)
	client := api.New(srv.URL, store, state)
	return NewService(client, store, state), store, state
}

func TestLoginEstablishesSession(t *testing.T) {
	svc, store, state := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-1","userId":"u-1","user":{"id":"u-1","name":"Ana"}}`))
	}))

	resp, err := svc.Login(context.Background(), "ana@fitclub.cl", "secreta")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Token != "tok-1" {
		t.Errorf("token = %q", resp.Token)
	}
	if store.Token() != "tok-1" || store.Email() != "ana@fitclub.cl" || store.UserID() != "u-1" {
		t.Errorf("sesión persistida incompleta: token=%q email=%q userID=%q", store.Token(), store.Email(), store.UserID())
	}
	if p, ok := store.Profile(); !ok || p.Name != "Ana" {
		t.Error("el perfil de la respuesta debería persistirse")
	}
	if !state.Authenticated() {
		t.Error("el estado debería quedar autenticado")
	}
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	svc, store, state := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"credenciales inválidas"}`))
	}))

	if _, err := svc.Login(context.Background(), "ana@fitclub.cl", "mala"); err == nil {
		t.Fatal("se esperaba error")
	}
	if store.Token() != "" || state.Authenticated() {
		t.Error("un login fallido no debe dejar sesión")
	}
}

func TestLoginWithoutTokenDoesNotAuthenticate(t *testing.T) {
	// Respuesta 2xx pero sin token (ej: cuenta pendiente de verificación)
	svc, store, state := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"verifica tu email"}`))
	}))

	resp, err := svc.Login(context.Background(), "ana@fitclub.cl", "secreta")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Token != "" {
		t.Errorf("token = %q", resp.Token)
	}
	if store.Token() != "" || state.Authenticated() {
		t.Error("sin token no debe establecerse sesión")
	}
}

func TestRegisterDoesNotEstablishSession(t *testing.T) {
	svc, store, state := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"userId":"u-9","message":"revisa tu email"}`))
	}))

	req := models.RegisterRequest{Name: "Nuevo", Email: "nuevo@fitclub.cl", Password: "secreta"}
	resp, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.UserID != "u-9" {
		t.Errorf("userID = %q", resp.UserID)
	}
	// El registro queda pendiente de verificación OTP
	if store.Token() != "" || state.Authenticated() {
		t.Error("el registro no debe dejar sesión establecida")
	}
}

func TestVerifyEmailEstablishesSession(t *testing.T) {
	svc, store, state := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/verify-email" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"token":"tok-2","userId":"u-9"}`))
	}))

	if _, err := svc.VerifyEmail(context.Background(), "nuevo@fitclub.cl", "123456"); err != nil {
		t.Fatal(err)
	}
	if store.Token() != "tok-2" || !state.Authenticated() {
		t.Error("verificar el email debería dejar la sesión establecida")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	svc, store, state := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-1","userId":"u-1"}`))
	}))

	if _, err := svc.Login(context.Background(), "ana@fitclub.cl", "secreta"); err != nil {
		t.Fatal(err)
	}
	state.MarkBiometricSatisfied()

	svc.Logout(context.Background())

	if store.Token() != "" || store.IsAuthenticated() {
		t.Error("el logout debe limpiar la sesión persistida")
	}
	if state.Authenticated() || state.BiometricSatisfied() {
		t.Error("el logout debe bajar ambos flags de estado")
	}
}
