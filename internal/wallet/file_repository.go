package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/points-pay/points_pay/internal/storage"
)

const (
	walletDir  = "wallets"
	indexFile  = "wallet_index.txt"
	fileSuffix = ".txt"
)

// FileRepository stores wallets as one text record per file plus an
// append-only id index used for owner lookups.
type FileRepository struct {
	store storage.Store

	// Guards the read-check-append sequence on the index file.
	mu sync.Mutex
}

// NewFileRepository builds a repository on top of the given store.
func NewFileRepository(store storage.Store) *FileRepository {
	return &FileRepository{store: store}
}

// Create allocates a wallet with a fresh id and zero balance and
// persists it.
func (r *FileRepository) Create(ctx context.Context, ownerUserID string) (Wallet, error) {
	w := Wallet{
		ID:      uuid.NewString(),
		OwnerID: ownerUserID,
		Balance: decimal.Zero,
	}
	if err := r.Save(ctx, w); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// GetByID loads a wallet record. Missing or malformed records yield
// ErrNotFound.
func (r *FileRepository) GetByID(_ context.Context, walletID string) (Wallet, error) {
	content, err := r.store.Read(recordName(walletID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	return decodeWallet(content)
}

// GetByOwner scans the wallet index in file order and returns the first
// wallet owned by userID. Duplicate index lines are tolerated.
func (r *FileRepository) GetByOwner(ctx context.Context, userID string) (Wallet, error) {
	ids, err := r.store.ReadAllLines(indexFile)
	if err != nil {
		return Wallet{}, err
	}
	for _, id := range ids {
		w, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return Wallet{}, err
		}
		if w.OwnerID == userID {
			return w, nil
		}
	}
	return Wallet{}, ErrNotFound
}

// Save overwrites the wallet record and ensures its id is present in
// the index exactly once.
func (r *FileRepository) Save(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Write(recordName(w.ID), encodeWallet(w)); err != nil {
		return err
	}
	return r.ensureIndexed(w.ID)
}

func (r *FileRepository) ensureIndexed(walletID string) error {
	ids, err := r.store.ReadAllLines(indexFile)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == walletID {
			return nil
		}
	}
	return r.store.AppendLine(indexFile, walletID)
}

func recordName(walletID string) string {
	return walletDir + "/" + walletID + fileSuffix
}

// encodeWallet renders the line-delimited key:value record format.
// Values must not contain ':' or newlines; ids are opaque tokens and
// balances are fixed 2-decimal numbers, so neither can.
func encodeWallet(w Wallet) string {
	return fmt.Sprintf("walletId:%s\nownerUserId:%s\nbalance:%s",
		w.ID, w.OwnerID, w.Balance.StringFixed(2))
}

func decodeWallet(content string) (Wallet, error) {
	var w Wallet
	w.Balance = decimal.Zero
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "walletId":
			w.ID = value
		case "ownerUserId":
			w.OwnerID = value
		case "balance":
			if b, err := decimal.NewFromString(value); err == nil {
				w.Balance = b
			}
		}
	}
	if w.ID == "" || w.OwnerID == "" {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}
