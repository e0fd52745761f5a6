package ledger

import "github.com/shopspring/decimal"

const (
	// StatusCompleted marks a transfer whose debit and credit were both
	// durably persisted.
	StatusCompleted = "completed"
	// StatusFailed marks a transfer attempt that was rejected or rolled
	// back after partial persistence.
	StatusFailed = "failed"
)

// Transaction is one immutable audit record of a transfer attempt.
// Insertion order in the log is the only ordering guarantee.
type Transaction struct {
	ID               string
	SenderWalletID   string
	ReceiverWalletID string
	Amount           decimal.Decimal
	Timestamp        int64
	Status           string
	Description      string
}
