package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourorg/fitclubcl/internal/models"
	"github.com/yourorg/fitclubcl/internal/token"
)

// RedisStore persiste la sesión en un hash de Redis. Pensado para kioscos de
// check-in compartidos donde varios terminales del estudio comparten sesión.
type RedisStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

const redisKeyPrefix = "fitclub:session:"

// NewRedisStore crea un RedisStore para el dispositivo deviceID.
func NewRedisStore(client *redis.Client, deviceID string) *RedisStore {
	return &RedisStore{
		client:  client,
		key:     redisKeyPrefix + deviceID,
		timeout: 3 * time.Second,
	}
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStore) SaveSession(tok, email, userID string) bool {
	if userID == "" {
		userID = token.ExtractUserID(tok)
	}
	fields := map[string]interface{}{
		"token": tok,
		"email": email,
	}
	if userID != "" {
		fields["userId"] = userID
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.HSet(ctx, s.key, fields).Err(); err != nil {
		log.Printf("⚠️ Redis: no se pudo guardar la sesión: %v", err)
		return false
	}
	return true
}

func (s *RedisStore) field(name string) string {
	ctx, cancel := s.ctx()
	defer cancel()
	val, err := s.client.HGet(ctx, s.key, name).Result()
	if err != nil {
		// redis.Nil = key ausente, no es un error
		return ""
	}
	return val
}

func (s *RedisStore) Token() string  { return s.field("token") }
func (s *RedisStore) UserID() string { return s.field("userId") }
func (s *RedisStore) Email() string  { return s.field("email") }

func (s *RedisStore) SaveProfile(p models.UserProfile) bool {
	raw, err := json.Marshal(p)
	if err != nil {
		return false
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.HSet(ctx, s.key, "profile", raw).Err(); err != nil {
		log.Printf("⚠️ Redis: no se pudo guardar el perfil: %v", err)
		return false
	}
	return true
}

func (s *RedisStore) Profile() (models.UserProfile, bool) {
	raw := s.field("profile")
	if raw == "" {
		return models.UserProfile{}, false
	}
	var p models.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.UserProfile{}, false
	}
	return p, true
}

func (s *RedisStore) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *RedisStore) Clear() bool {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		log.Printf("⚠️ Redis: no se pudo limpiar la sesión: %v", err)
		return false
	}
	return true
}
