package devserver

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/fitclubcl/internal/models"
)

// ============================================================================
// DEV SERVER - STUB LOCAL DEL BACKEND DE FITCLUB
// ============================================================================
// Réplica mínima en memoria del colaborador REST para desarrollar y probar
// el cliente sin backend real: login/registro con verificación OTP (el OTP
// se imprime en el log en vez de enviarse por email), perfil y
// notificaciones con su ciclo PENDING → RECEIVED → ENVIADA.
// NO es el backend de producción.

// Server es el stub configurado.
type Server struct {
	store    *memStore
	secret   []byte
	tokenTTL time.Duration
}

// New crea el stub leyendo DEV_JWT_SECRET y DEV_JWT_TTL del entorno.
func New() *Server {
	secret := os.Getenv("DEV_JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	ttl := 24 * time.Hour
	if raw := os.Getenv("DEV_JWT_TTL"); raw != "" {
		dur, err := time.ParseDuration(raw)
		if err != nil || dur <= 0 {
			log.Printf("DEV_JWT_TTL=%q inválido, usando default %s", raw, ttl)
		} else {
			ttl = dur
		}
	}
	return &Server{store: newMemStore(), secret: []byte(secret), tokenTTL: ttl}
}

type devClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := devClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// App construye la aplicación Fiber con todas las rutas del stub.
func (s *Server) App() *fiber.App {
	app := fiber.New()

	authGroup := app.Group("/auth")
	authGroup.Use(StrictRateLimiter()) // 10 req/min
	authGroup.Post("/login", s.login)
	authGroup.Post("/register", s.register)
	authGroup.Post("/verify-email", s.verifyEmail)
	authGroup.Post("/forgot-password", s.forgotPassword)
	authGroup.Post("/reset-password", s.resetPassword)

	protected := app.Group("/", s.authRequired)
	protected.Get("/me", s.me)
	protected.Get("/notifications/pending", s.pendingNotifications)
	protected.Get("/notifications/sent", s.sentNotifications)
	protected.Get("/notifications/unread-count", s.unreadCount)
	protected.Put("/notifications/:id/received", s.markReceived)
	protected.Put("/notifications/:id/read", s.markRead)

	return app
}

// Seed crea un usuario demo verificado con notificaciones pendientes.
func (s *Server) Seed() {
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	u := &devUser{
		ID:           uuid.NewString(),
		Name:         "Demo",
		Email:        "demo@fitclub.cl",
		PasswordHash: hash,
		Verified:     true,
		JoinedAt:     time.Now(),
		Plan:         "full",
	}
	s.store.mu.Lock()
	s.store.users[u.Email] = u
	s.store.mu.Unlock()

	s.store.addNotification(u.ID, models.PendingNotification{
		Title:            "Recordatorio de clase",
		Message:          "Tu clase de spinning empieza en 1 hora",
		Type:             models.NotificationBookingReminder,
		ScheduledClassID: uuid.NewString(),
		BookingID:        uuid.NewString(),
	})
	s.store.addNotification(u.ID, models.PendingNotification{
		Title:   "Cambio de horario",
		Message: "Yoga del jueves se movió a las 19:00",
		Type:    models.NotificationClassChanged,
	})
	log.Printf("🌱 Usuario demo creado: demo@fitclub.cl / demo1234")
}

// ============================================================================
// AUTENTICACIÓN
// ============================================================================

func (s *Server) login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "email and password required"})
	}

	u := s.store.userByEmail(req.Email)
	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "credenciales inválidas"})
	}
	if !u.Verified {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Error: "email no verificado"})
	}

	token, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}
	c.Set("Cache-Control", "no-store")
	return c.JSON(models.LoginResponse{Token: token, UserID: u.ID, User: profileOf(u)})
}

func (s *Server) register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "email and password required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "invalid email"})
	}
	if s.store.userByEmail(req.Email) != nil {
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: "email already registered"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to secure password"})
	}

	u := &devUser{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		JoinedAt:     time.Now(),
	}
	s.store.mu.Lock()
	s.store.users[u.Email] = u
	s.store.mu.Unlock()

	// En producción el OTP viaja por email; acá va al log
	otp := s.store.newOTP(u.Email)
	log.Printf("📧 OTP de verificación para %s: %s", u.Email, otp)

	return c.Status(fiber.StatusCreated).JSON(models.RegisterResponse{
		UserID:  u.ID,
		Message: "Revisa tu email para verificar la cuenta",
	})
}

func (s *Server) verifyEmail(c *fiber.Ctx) error {
	var req models.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	u := s.store.userByEmail(req.Email)
	if u == nil || !s.store.checkOTP(req.Email, req.Otp) {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "código inválido o expirado"})
	}

	s.store.mu.Lock()
	u.Verified = true
	s.store.mu.Unlock()
	log.Printf("✅ Email verificado: %s", u.Email)

	token, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}
	c.Set("Cache-Control", "no-store")
	return c.JSON(models.LoginResponse{Token: token, UserID: u.ID, User: profileOf(u)})
}

func (s *Server) forgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	// Respuesta uniforme exista o no la cuenta
	if s.store.userByEmail(req.Email) != nil {
		otp := s.store.newOTP(req.Email)
		log.Printf("📧 OTP de recuperación para %s: %s", req.Email, otp)
	}
	return c.JSON(fiber.Map{"message": "Si la cuenta existe, enviamos un código"})
}

func (s *Server) resetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.NewPassword == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "newPassword required"})
	}

	u := s.store.userByEmail(req.Email)
	if u == nil || !s.store.checkOTP(req.Email, req.Otp) {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "código inválido o expirado"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to secure password"})
	}
	s.store.mu.Lock()
	u.PasswordHash = hash
	s.store.mu.Unlock()
	log.Printf("🔑 Contraseña reseteada para %s", u.Email)

	return c.JSON(fiber.Map{"message": "Contraseña actualizada"})
}

// authRequired valida el bearer token y deja el userID en Locals.
func (s *Server) authRequired(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "missing bearer token"})
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims := &devClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid || claims.Subject == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid token"})
	}

	c.Locals("userID", claims.Subject)
	return c.Next()
}

// ============================================================================
// PERFIL Y NOTIFICACIONES
// ============================================================================

func (s *Server) me(c *fiber.Ctx) error {
	u := s.store.userByID(c.Locals("userID").(string))
	if u == nil {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(profileOf(u))
}

func (s *Server) pendingNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	return c.JSON(s.store.notificationsByStatus(userID, models.NotificationStatusPending))
}

func (s *Server) sentNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	return c.JSON(s.store.notificationsByStatus(userID, models.NotificationStatusSent))
}

func (s *Server) unreadCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	return c.JSON(models.UnreadCountResponse{Count: s.store.unreadCount(userID)})
}

func (s *Server) markReceived(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if !s.store.setNotificationStatus(userID, c.Params("id"), models.NotificationStatusReceived) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "notification not found"})
	}
	return c.JSON(fiber.Map{"message": "ok"})
}

func (s *Server) markRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	if !s.store.setNotificationStatus(userID, c.Params("id"), models.NotificationStatusSent) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "notification not found"})
	}
	return c.JSON(fiber.Map{"message": "ok"})
}

func profileOf(u *devUser) *models.UserProfile {
	return &models.UserProfile{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Plan:     u.Plan,
		JoinedAt: u.JoinedAt,
	}
}
