package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Keys under which session and snapshot data are persisted.
const (
	KeyToken           = "token"
	KeyAccessToken     = "access_token"
	KeyUserID          = "user_id"
	KeyID              = "id"
	KeyUser            = "user"
	KeyAuthSnapshot    = "auth-storage"
	KeyConcertSnapshot = "concert-storage"
)

// Storage is the persisted key/value backend.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// MemoryStorage is a [Storage] held in memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// StoredToken returns the persisted bearer token, preferring "token" over "access_token".
func StoredToken(s Storage) string {
	for _, key := range []string{KeyToken, KeyAccessToken} {
		if v, ok, err := s.Get(key); err == nil && ok && v != "" {
			return v
		}
	}
	return ""
}

func saveJSON(s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// loadJSON decodes the value under key into v, reporting false when the key is absent.
func loadJSON(s Storage, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok || raw == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
