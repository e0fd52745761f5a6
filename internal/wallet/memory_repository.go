package wallet

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet
	order   []string
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, ownerUserID string) (Wallet, error) {
	w := Wallet{ID: uuid.NewString(), OwnerID: ownerUserID, Balance: decimal.Zero}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[w.ID] = w
	r.order = append(r.order, w.ID)
	return w, nil
}

func (r *memoryRepository) GetByID(_ context.Context, walletID string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.storage[walletID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (r *memoryRepository) GetByOwner(_ context.Context, userID string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if w, ok := r.storage[id]; ok && w.OwnerID == userID {
			return w, nil
		}
	}
	return Wallet{}, ErrNotFound
}

func (r *memoryRepository) Save(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[w.ID]; !exists {
		r.order = append(r.order, w.ID)
	}
	r.storage[w.ID] = w
	return nil
}
