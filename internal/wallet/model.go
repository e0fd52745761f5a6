package wallet

import "github.com/shopspring/decimal"

const (
	// MasterWalletID is the reserved id of the pre-funded system wallet.
	MasterWalletID = "MASTER_WALLET"
	// SystemOwnerID is the synthetic owner of the master wallet.
	SystemOwnerID = "SYSTEM"
)

// Wallet represents a balance of points owned by exactly one user.
// Instances are plain values; the repository hands out copies, never
// shared state.
type Wallet struct {
	ID      string
	OwnerID string
	Balance decimal.Decimal
}
