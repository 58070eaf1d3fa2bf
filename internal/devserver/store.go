package devserver

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/fitclubcl/internal/models"
)

// memStore es el estado en memoria del stub: usuarios, OTPs vigentes y
// notificaciones. Todo se pierde al reiniciar, que es exactamente lo que
// uno quiere de un backend de desarrollo.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*devUser                      // key: email
	otps   map[string]string                        // key: email
	notifs map[string][]*models.PendingNotification // key: userID
}

type devUser struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
	Verified     bool
	JoinedAt     time.Time
	Plan         string
	ReadIDs      map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*devUser),
		otps:   make(map[string]string),
		notifs: make(map[string][]*models.PendingNotification),
	}
}

// newOTP genera y registra un código de 6 dígitos para email.
func (s *memStore) newOTP(email string) string {
	otp := fmt.Sprintf("%06d", rand.IntN(1000000))
	s.mu.Lock()
	s.otps[email] = otp
	s.mu.Unlock()
	return otp
}

func (s *memStore) checkOTP(email, otp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if otp == "" || s.otps[email] != otp {
		return false
	}
	delete(s.otps, email)
	return true
}

func (s *memStore) userByEmail(email string) *devUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[email]
}

func (s *memStore) userByID(id string) *devUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// addNotification encola una notificación PENDING para el usuario.
func (s *memStore) addNotification(userID string, n models.PendingNotification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Status = models.NotificationStatusPending
	s.mu.Lock()
	s.notifs[userID] = append(s.notifs[userID], &n)
	s.mu.Unlock()
}

func (s *memStore) notificationsByStatus(userID, status string) []models.PendingNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PendingNotification, 0)
	for _, n := range s.notifs[userID] {
		if n.Status == status {
			out = append(out, *n)
		}
	}
	return out
}

// setNotificationStatus transiciona una notificación del usuario y retorna
// false si el id no existe.
func (s *memStore) setNotificationStatus(userID, id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifs[userID] {
		if n.ID == id {
			n.Status = status
			return true
		}
	}
	return false
}

func (s *memStore) unreadCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifs[userID] {
		if n.Status != models.NotificationStatusSent {
			count++
		}
	}
	return count
}
