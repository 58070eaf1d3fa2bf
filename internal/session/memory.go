package session

import (
	"sync"

	"github.com/yourorg/fitclubcl/internal/models"
	"github.com/yourorg/fitclubcl/internal/token"
)

// MemStore guarda la sesión en memoria. Se usa en tests y como fallback
// cuando no hay storage disponible (la sesión dura lo que dure el proceso).
type MemStore struct {
	mu      sync.RWMutex
	token   string
	userID  string
	email   string
	profile *models.UserProfile
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) SaveSession(tok, email, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.email = email
	if userID == "" {
		userID = token.ExtractUserID(tok)
	}
	if userID != "" {
		s.userID = userID
	}
	return true
}

func (s *MemStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *MemStore) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *MemStore) SaveProfile(p models.UserProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	return true
}

func (s *MemStore) Profile() (models.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return models.UserProfile{}, false
	}
	return *s.profile, true
}

func (s *MemStore) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *MemStore) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.userID, s.email, s.profile = "", "", "", nil
	return true
}
