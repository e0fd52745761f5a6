package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

var (
	// ErrNoActiveChallenge indicates no code was issued for the key, or
	// a previous code was already consumed or invalidated.
	ErrNoActiveChallenge = errors.New("no active otp challenge")
	// ErrExpired indicates the challenge outlived its window. The
	// challenge is removed as a side effect.
	ErrExpired = errors.New("otp expired")
	// ErrMismatch indicates the submitted code is wrong. The challenge
	// stays active so the subject may retry within the window.
	ErrMismatch = errors.New("otp code mismatch")
)

// DefaultTTL is the challenge validity window.
const DefaultTTL = 300 * time.Second

const codeLength = 6

// Actions the shells gate behind a challenge.
const (
	ActionTransferPoints = "transfer_points"
	ActionUpdateProfile  = "update_profile"
)

type key struct {
	subjectID string
	action    string
}

type challenge struct {
	code      string
	createdAt time.Time
}

// Manager issues and verifies one-time codes keyed by (subject, action).
// State lives in process memory only; nothing is persisted.
type Manager struct {
	mu     sync.Mutex
	active map[key]challenge
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a manager with the given challenge TTL. A zero or
// negative ttl falls back to DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		active: make(map[key]challenge),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate issues a fresh 6-digit code for the key, replacing any prior
// unconsumed challenge. Delivering the code to the subject is the
// caller's job.
func (m *Manager) Generate(subjectID, action string) (string, error) {
	code, err := randomCode(codeLength)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[key{subjectID, action}] = challenge{code: code, createdAt: m.now()}
	return code, nil
}

// Verify checks the submitted code against the active challenge. A
// match does not consume the challenge; callers invalidate explicitly
// once their workflow completes, so a mismatch can be re-prompted
// without losing the window.
func (m *Manager) Verify(subjectID, action, submitted string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{subjectID, action}
	ch, ok := m.active[k]
	if !ok {
		return ErrNoActiveChallenge
	}
	if m.now().Sub(ch.createdAt) > m.ttl {
		delete(m.active, k)
		return ErrExpired
	}
	if ch.code != submitted {
		return ErrMismatch
	}
	return nil
}

// Invalidate removes the challenge for the key. No-op when absent.
func (m *Manager) Invalidate(subjectID, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, key{subjectID, action})
}

func randomCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
