package memory

import (
	"context"
	"sync"

	"github.com/afterclass/lessons-api/internal/domain"
)

type CredentialStore struct {
	mu     sync.RWMutex
	hashes map[string]string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{hashes: make(map[string]string)}
}

// SetHash stores a precomputed bcrypt hash for username.
func (s *CredentialStore) SetHash(username, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[username] = hash
}

func (s *CredentialStore) PasswordHash(ctx context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hashes[username]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return h, nil
}
