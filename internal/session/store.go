package session

import (
	"github.com/yourorg/fitclubcl/internal/models"
)

// ============================================================================
// SESSION STORE - PERSISTENCIA LOCAL DE LA SESIÓN
// ============================================================================
// Guarda {token, userId, email, perfil cacheado} en almacenamiento local del
// dispositivo. Todas las operaciones son best-effort: los errores de storage
// se convierten en false/"" y nunca se propagan al código de negocio (peor
// caso: el usuario vuelve a autenticarse).
//
// Implementaciones:
//   - FileStore:  documento JSON en disco, plano o cifrado (kioscos, agente)
//   - RedisStore: hash en Redis para kioscos de check-in compartidos
//   - MemStore:   en memoria, para tests y fallback

// Store persiste y recupera la sesión local. Todas las operaciones son
// idempotentes y toleran keys ausentes (la ausencia no es un error).
type Store interface {
	// SaveSession persiste token y email. Si userID viene vacío lo deriva
	// del token (claim userId/sub/id) y persiste el valor derivado solo si
	// no es vacío. Retorna false en error de storage; nunca hace panic.
	SaveSession(token, email, userID string) bool

	// Token, UserID y Email retornan el valor persistido, o "" si está
	// ausente o la lectura falla.
	Token() string
	UserID() string
	Email() string

	// SaveProfile cachea el perfil denormalizado del usuario.
	SaveProfile(p models.UserProfile) bool
	// Profile retorna el perfil cacheado, o (zero, false) si no hay.
	Profile() (models.UserProfile, bool)

	// IsAuthenticated es true si hay un token presente. Chequeo puramente
	// local: no valida expiración ni firma.
	IsAuthenticated() bool

	// Clear elimina las cuatro keys como una unidad lógica. Se usa en
	// logout y al detectar un 401/403. Idempotente.
	Clear() bool
}
