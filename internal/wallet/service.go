package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MasterWalletBootstrapBalance is the balance granted to the master
// wallet the first time the system starts.
var MasterWalletBootstrapBalance = decimal.NewFromInt(1_000_000)

// Service exposes wallet operations to the shells around the core.
type Service struct {
	repo Repository
}

// NewService builds a wallet service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create provisions a wallet for the given owner. One wallet per owner
// is a convention enforced here, not a schema constraint.
func (s *Service) Create(ctx context.Context, ownerUserID string) (Wallet, error) {
	if ownerUserID == "" {
		return Wallet{}, fmt.Errorf("owner user id is required")
	}
	if _, err := s.repo.GetByOwner(ctx, ownerUserID); err == nil {
		return Wallet{}, fmt.Errorf("user %s already has a wallet", ownerUserID)
	} else if !errors.Is(err, ErrNotFound) {
		return Wallet{}, err
	}
	return s.repo.Create(ctx, ownerUserID)
}

// Get retrieves a wallet by id.
func (s *Service) Get(ctx context.Context, walletID string) (Wallet, error) {
	return s.repo.GetByID(ctx, walletID)
}

// GetByOwner retrieves the wallet owned by userID.
func (s *Service) GetByOwner(ctx context.Context, userID string) (Wallet, error) {
	return s.repo.GetByOwner(ctx, userID)
}

// EnsureMaster creates the pre-funded master wallet if it does not
// exist yet. A second call finds the existing record and changes
// nothing. Returns the wallet and whether it was created by this call.
func (s *Service) EnsureMaster(ctx context.Context) (Wallet, bool, error) {
	existing, err := s.repo.GetByID(ctx, MasterWalletID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Wallet{}, false, err
	}

	master := Wallet{
		ID:      MasterWalletID,
		OwnerID: SystemOwnerID,
		Balance: MasterWalletBootstrapBalance,
	}
	if err := s.repo.Save(ctx, master); err != nil {
		return Wallet{}, false, err
	}
	return master, true, nil
}
