package ledger

import "context"

// Ledger is the append-only audit trail of transfer attempts.
type Ledger interface {
	Append(ctx context.Context, tx Transaction) error
	ReadAll(ctx context.Context) ([]Transaction, error)
	ReadForWallet(ctx context.Context, walletID string) ([]Transaction, error)
}
