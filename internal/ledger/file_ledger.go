package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/points-pay/points_pay/internal/storage"
)

const logFile = "transactions.log"

// FileLedger appends pipe-delimited transaction lines to a single log
// file. Records are never rewritten or compacted.
type FileLedger struct {
	store storage.Store
}

// NewFileLedger builds a ledger on top of the given store.
func NewFileLedger(store storage.Store) *FileLedger {
	return &FileLedger{store: store}
}

// Append writes one record to the end of the log.
func (l *FileLedger) Append(_ context.Context, tx Transaction) error {
	return l.store.AppendLine(logFile, encodeTransaction(tx))
}

// ReadAll returns every parseable record in log order. Corrupt lines
// are skipped, not fatal.
func (l *FileLedger) ReadAll(_ context.Context) ([]Transaction, error) {
	lines, err := l.store.ReadAllLines(logFile)
	if err != nil {
		return nil, err
	}
	var txs []Transaction
	for _, line := range lines {
		tx, ok := decodeTransaction(line)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// ReadForWallet filters ReadAll down to records where walletID is the
// sender or the receiver, preserving log order.
func (l *FileLedger) ReadForWallet(ctx context.Context, walletID string) ([]Transaction, error) {
	all, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var txs []Transaction
	for _, tx := range all {
		if tx.SenderWalletID == walletID || tx.ReceiverWalletID == walletID {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

// encodeTransaction renders the 7-field pipe-delimited line format.
// The description is the only free-text field; it is sanitized so a
// stored value can never break the line structure.
func encodeTransaction(tx Transaction) string {
	return fmt.Sprintf(
		"transactionId:%s|senderWalletId:%s|receiverWalletId:%s|amount:%s|timestamp:%d|status:%s|description:%s",
		tx.ID, tx.SenderWalletID, tx.ReceiverWalletID,
		tx.Amount.StringFixed(2), tx.Timestamp, tx.Status,
		sanitizeField(tx.Description),
	)
}

func decodeTransaction(line string) (Transaction, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 7 {
		return Transaction{}, false
	}
	var tx Transaction
	tx.Amount = decimal.Zero
	for _, part := range parts {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "transactionId":
			tx.ID = value
		case "senderWalletId":
			tx.SenderWalletID = value
		case "receiverWalletId":
			tx.ReceiverWalletID = value
		case "amount":
			if a, err := decimal.NewFromString(value); err == nil {
				tx.Amount = a
			}
		case "timestamp":
			if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
				tx.Timestamp = ts
			}
		case "status":
			tx.Status = value
		case "description":
			tx.Description = value
		}
	}
	return tx, true
}

func sanitizeField(v string) string {
	v = strings.ReplaceAll(v, "|", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return v
}
