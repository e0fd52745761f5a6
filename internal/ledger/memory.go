package ledger

import (
	"context"
	"sync"
)

type memoryLedger struct {
	mu  sync.RWMutex
	txs []Transaction
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for
// unit tests.
func NewInMemory() Ledger {
	return &memoryLedger{}
}

func (l *memoryLedger) Append(_ context.Context, tx Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append(l.txs, tx)
	return nil
}

func (l *memoryLedger) ReadAll(_ context.Context) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transaction, len(l.txs))
	copy(out, l.txs)
	return out, nil
}

func (l *memoryLedger) ReadForWallet(_ context.Context, walletID string) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Transaction
	for _, tx := range l.txs {
		if tx.SenderWalletID == walletID || tx.ReceiverWalletID == walletID {
			out = append(out, tx)
		}
	}
	return out, nil
}
