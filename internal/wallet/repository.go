package wallet

import (
	"context"
	"errors"
)

// ErrNotFound indicates a wallet record is absent or unreadable.
var ErrNotFound = errors.New("wallet not found")

// Repository persists wallet records. It is the sole writer of wallet
// state; balances are mutated only through Save.
type Repository interface {
	Create(ctx context.Context, ownerUserID string) (Wallet, error)
	GetByID(ctx context.Context, walletID string) (Wallet, error)
	GetByOwner(ctx context.Context, userID string) (Wallet, error)
	Save(ctx context.Context, w Wallet) error
}
