package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
)

// Memory keeps revocations in process. Other replicas never see them and
// they are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> token expiry
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time)}
}

func (m *Memory) Revoke(_ context.Context, t domain.RevokedToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[t.JTI]; !ok {
		m.entries[t.JTI] = t.ExpiresAt
	}
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[jti]
	return ok, nil
}

func (m *Memory) Purge(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for jti, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, jti)
			n++
		}
	}
	return n, nil
}
