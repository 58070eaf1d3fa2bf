package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/fitclubcl/internal/api"
	"github.com/yourorg/fitclubcl/internal/auth"
	"github.com/yourorg/fitclubcl/internal/authstate"
	"github.com/yourorg/fitclubcl/internal/biometric"
	"github.com/yourorg/fitclubcl/internal/models"
	"github.com/yourorg/fitclubcl/internal/notify"
	"github.com/yourorg/fitclubcl/internal/session"
)

// CLI interactivo para operar el cliente de FitClub desde una terminal:
// el equivalente headless de las pantallas de la app móvil.

type cli struct {
	reader  *bufio.Reader
	store   session.Store
	state   *authstate.State
	client  *api.Client
	service *auth.Service
	baseURL string
}

func main() {
	_ = godotenv.Load()

	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:8080"
	}

	path := os.Getenv("FITCLUB_SESSION_FILE")
	if path == "" {
		path = session.DefaultPath()
	}
	var key []byte
	if raw := os.Getenv("FITCLUB_SESSION_KEY"); raw != "" {
		decoded, err := hex.DecodeString(raw)
		if err != nil {
			log.Fatalf("❌ FITCLUB_SESSION_KEY no es hex válido: %v", err)
		}
		key = decoded
	}

	store := session.NewFileStore(path, key)
	state := authstate.New(store.IsAuthenticated())
	client := api.New(base, store, state)

	c := &cli{
		reader:  bufio.NewReader(os.Stdin),
		store:   store,
		state:   state,
		client:  client,
		service: auth.NewService(client, store, state),
		baseURL: base,
	}

	cancel := state.Subscribe(func(authenticated bool) {
		if !authenticated {
			fmt.Println("🔒 Sesión cerrada")
		}
	})
	defer cancel()

	for {
		fmt.Println("==== FitClub CLI ====")
		fmt.Println("1) Iniciar sesión")
		fmt.Println("2) Registrarse")
		fmt.Println("3) Verificar email (OTP)")
		fmt.Println("4) Recuperar contraseña")
		fmt.Println("5) Estado de sesión")
		fmt.Println("6) Notificaciones no leídas")
		fmt.Println("7) Correr poller una vez")
		fmt.Println("8) Probar gate biométrico")
		fmt.Println("9) Cerrar sesión")
		fmt.Println("0) Salir")
		fmt.Print("Selecciona opción: ")
		choice, _ := c.reader.ReadString('\n')
		switch strings.TrimSpace(choice) {
		case "1":
			c.doLogin()
		case "2":
			c.doRegister()
		case "3":
			c.doVerifyEmail()
		case "4":
			c.doPasswordReset()
		case "5":
			c.doStatus()
		case "6":
			c.doUnreadCount()
		case "7":
			c.doPollOnce()
		case "8":
			c.doBiometricGate()
		case "9":
			c.service.Logout(context.Background())
		case "0":
			fmt.Println("Chao")
			return
		default:
			fmt.Println("Opción inválida")
		}
		fmt.Println()
	}
}

func (c *cli) prompt(label string) string {
	fmt.Print(label)
	line, _ := c.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (c *cli) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (c *cli) doLogin() {
	email := c.prompt("Email: ")
	password := c.prompt("Contraseña: ")

	ctx, cancel := c.ctx()
	defer cancel()
	resp, err := c.service.Login(ctx, email, password)
	if err != nil {
		fmt.Println("Login: ERROR:", err)
		return
	}
	fmt.Printf("✅ Sesión iniciada como %s (userID %s)\n", email, resp.UserID)
}

func (c *cli) doRegister() {
	req := models.RegisterRequest{
		Name:     c.prompt("Nombre: "),
		Email:    c.prompt("Email: "),
		Phone:    c.prompt("Teléfono (opcional): "),
		Password: c.prompt("Contraseña: "),
	}

	ctx, cancel := c.ctx()
	defer cancel()
	resp, err := c.service.Register(ctx, req)
	if err != nil {
		fmt.Println("Registro: ERROR:", err)
		return
	}
	fmt.Printf("✅ Cuenta creada (userID %s). %s\n", resp.UserID, resp.Message)
}

func (c *cli) doVerifyEmail() {
	email := c.prompt("Email: ")
	otp := c.prompt("Código OTP: ")

	ctx, cancel := c.ctx()
	defer cancel()
	resp, err := c.service.VerifyEmail(ctx, email, otp)
	if err != nil {
		fmt.Println("Verificación: ERROR:", err)
		return
	}
	fmt.Printf("✅ Email verificado, sesión iniciada (userID %s)\n", resp.UserID)
}

func (c *cli) doPasswordReset() {
	email := c.prompt("Email: ")
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.service.RequestPasswordReset(ctx, email); err != nil {
		fmt.Println("Recuperación: ERROR:", err)
		return
	}
	fmt.Println("📧 Si la cuenta existe, llegará un código por email")

	otp := c.prompt("Código OTP (enter para salir): ")
	if otp == "" {
		return
	}
	newPassword := c.prompt("Nueva contraseña: ")
	ctx2, cancel2 := c.ctx()
	defer cancel2()
	if err := c.service.ResetPassword(ctx2, email, otp, newPassword); err != nil {
		fmt.Println("Reseteo: ERROR:", err)
		return
	}
	fmt.Println("✅ Contraseña actualizada")
}

func (c *cli) doStatus() {
	if !c.store.IsAuthenticated() {
		fmt.Println("Sin sesión activa")
		return
	}
	fmt.Printf("Sesión activa: %s (userID %s)\n", c.store.Email(), c.store.UserID())
	if p, ok := c.store.Profile(); ok {
		fmt.Printf("Perfil: %s, plan %s\n", p.Name, p.Plan)
	}
	fmt.Printf("Biometría satisfecha esta sesión: %v\n", c.state.BiometricSatisfied())
}

func (c *cli) doUnreadCount() {
	ctx, cancel := c.ctx()
	defer cancel()
	count, err := c.client.UnreadCount(ctx)
	if err != nil {
		fmt.Println("Contador: ERROR:", err)
		return
	}
	fmt.Printf("🔔 %d notificaciones no leídas\n", count)
}

func (c *cli) doPollOnce() {
	poller := &notify.Poller{
		BaseURLs:  []string{c.baseURL},
		TokenFunc: c.store.Token,
		Notifier:  notify.LogNotifier{},
	}
	ctx, cancel := c.ctx()
	defer cancel()
	stats, err := poller.RunOnce(ctx)
	if err != nil {
		fmt.Println("Poller: ERROR:", err)
		return
	}
	fmt.Printf("Poller: %d pendientes, %d mostradas, %d fallos\n", stats.Pending, stats.Delivered, stats.Failures)
}

func (c *cli) doBiometricGate() {
	gate := biometric.NewGate(
		biometric.DefaultConfig(),
		biometric.NewFprintdCapability(),
		biometric.NewTerminalPrompter(c.reader, os.Stdout),
		biometric.Callbacks{
			OnSuccess: func() { fmt.Println("✅ Identidad confirmada") },
			OnFailure: func(r biometric.Reason) { fmt.Printf("❌ Gate falló: %s\n", r) },
			OnCancel:  func(r biometric.Reason) { fmt.Printf("🚪 Gate cancelado: %s\n", r) },
		},
		c.state,
	)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	gate.Run(ctx)
}
