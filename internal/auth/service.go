package auth

import (
	"context"
	"log"

	"github.com/yourorg/fitclubcl/internal/api"
	"github.com/yourorg/fitclubcl/internal/authstate"
	"github.com/yourorg/fitclubcl/internal/models"
	"github.com/yourorg/fitclubcl/internal/session"
)

// ============================================================================
// AUTH SERVICE - CICLO DE VIDA DE LA SESIÓN
// ============================================================================
// Orquesta login, registro, verificación OTP y reseteo de contraseña contra
// el backend, persistiendo la sesión local en los puntos de éxito. Los
// errores del transporte (incluyendo status y mensaje del servidor) se
// propagan sin tocar: acá no hay retries ni validación local.

// Service ejecuta las operaciones de autenticación y mantiene la sesión.
type Service struct {
	api   *api.Client
	store session.Store
	state *authstate.State
}

func NewService(client *api.Client, store session.Store, state *authstate.State) *Service {
	return &Service{api: client, store: store, state: state}
}

// Login autentica con email y contraseña. Con respuesta 2xx que incluya
// token, persiste la sesión y levanta el flag de autenticación.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.establishSession(resp, email)
	return resp, nil
}

// Register crea la cuenta pero NO establece sesión: el usuario debe
// verificar su email con el OTP primero.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	return s.api.Register(ctx, req)
}

// VerifyEmail confirma el OTP de verificación. Es el punto en que un usuario
// recién registrado queda autenticado: persiste sesión igual que Login.
func (s *Service) VerifyEmail(ctx context.Context, email, otp string) (*models.LoginResponse, error) {
	resp, err := s.api.VerifyEmail(ctx, email, otp)
	if err != nil {
		return nil, err
	}
	s.establishSession(resp, email)
	return resp, nil
}

// RequestPasswordReset pide un OTP de recuperación. Sin efectos de sesión.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.api.ForgotPassword(ctx, email)
}

// ResetPassword confirma el reseteo con OTP. Sin efectos de sesión.
func (s *Service) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return s.api.ResetPassword(ctx, email, otp, newPassword)
}

// Logout limpia la sesión local. Best-effort: un error de storage no debe
// bloquear la salida, así que solo se deja registro.
func (s *Service) Logout(ctx context.Context) {
	if ok := s.store.Clear(); !ok {
		log.Printf("⚠️ Logout: no se pudo limpiar el storage local")
	}
	s.api.ResetCache()
	s.state.Logout()
}

// establishSession persiste la sesión cuando la respuesta trae token.
// Un fallo de storage no invalida el login: la sesión vive en memoria vía
// el State y el usuario re-autenticará en el próximo arranque.
func (s *Service) establishSession(resp *models.LoginResponse, email string) {
	if resp == nil || resp.Token == "" {
		return
	}
	if ok := s.store.SaveSession(resp.Token, email, resp.UserID); !ok {
		log.Printf("⚠️ No se pudo persistir la sesión, continúa solo en memoria")
	}
	if resp.User != nil {
		s.store.SaveProfile(*resp.User)
	}
	s.api.ResetCache()
	s.state.SetAuthenticated(true)
}
