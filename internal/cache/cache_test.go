package cache

import (
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	cache := NewCache(5*time.Minute, 10*time.Minute)
	defer cache.Stop()

	// Test Set y Get
	cache.Set("unread", 3)

	value, found := cache.Get("unread")
	if !found {
		t.Error("Expected to find unread")
	}
	if value != 3 {
		t.Errorf("Expected 3, got %v", value)
	}

	// Test Get de key inexistente
	_, found = cache.Get("nonexistent")
	if found {
		t.Error("Expected not to find nonexistent key")
	}
}

func TestCacheExpiration(t *testing.T) {
	cache := NewCache(5*time.Minute, 10*time.Minute)
	defer cache.Stop()

	// Configurar item con TTL corto
	cache.SetWithTTL("expiring", "value", 100*time.Millisecond)

	// Debería encontrarse inmediatamente
	_, found := cache.Get("expiring")
	if !found {
		t.Error("Expected to find item before expiration")
	}

	// Esperar a que expire
	time.Sleep(150 * time.Millisecond)

	// No debería encontrarse después de expirar
	_, found = cache.Get("expiring")
	if found {
		t.Error("Expected item to be expired")
	}
}

func TestCacheDelete(t *testing.T) {
	cache := NewCache(5*time.Minute, 10*time.Minute)
	defer cache.Stop()

	cache.Set("me", "profile")
	cache.Delete("me")

	_, found := cache.Get("me")
	if found {
		t.Error("Expected key to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(5*time.Minute, 10*time.Minute)
	defer cache.Stop()

	// Clear es el camino del logout: nada del usuario anterior sobrevive
	cache.Set("me", "profile")
	cache.Set("unread", 7)
	cache.Clear()

	if cache.Count() != 0 {
		t.Errorf("Expected empty cache, got %d items", cache.Count())
	}
}

func TestCacheNoExpiration(t *testing.T) {
	cache := NewCache(5*time.Minute, 10*time.Minute)
	defer cache.Stop()

	// TTL 0 = sin expiración
	cache.SetWithTTL("forever", "value", 0)

	time.Sleep(50 * time.Millisecond)
	_, found := cache.Get("forever")
	if !found {
		t.Error("Expected item without TTL to persist")
	}
}
