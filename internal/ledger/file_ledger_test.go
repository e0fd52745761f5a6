package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/points-pay/points_pay/internal/storage"
)

func testTransaction(id, sender, receiver string) Transaction {
	return Transaction{
		ID:               id,
		SenderWalletID:   sender,
		ReceiverWalletID: receiver,
		Amount:           decimal.RequireFromString("25.50"),
		Timestamp:        1_700_000_000,
		Status:           StatusCompleted,
		Description:      "points transfer",
	}
}

func TestFileLedgerRoundTrip(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	l := NewFileLedger(store)
	ctx := context.Background()

	want := testTransaction("tx-1", "w1", "w2")
	if err := l.Append(ctx, want); err != nil {
		t.Fatalf("append: %v", err)
	}

	txs, err := l.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(txs))
	}
	got := txs[0]
	if got.ID != want.ID || got.SenderWalletID != want.SenderWalletID ||
		got.ReceiverWalletID != want.ReceiverWalletID ||
		got.Timestamp != want.Timestamp || got.Status != want.Status ||
		got.Description != want.Description {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Amount.Equal(want.Amount) {
		t.Fatalf("amount mismatch: %s != %s", got.Amount, want.Amount)
	}
}

func TestFileLedgerSkipsCorruptLines(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	l := NewFileLedger(store)
	ctx := context.Background()

	if err := l.Append(ctx, testTransaction("tx-1", "w1", "w2")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendLine("transactions.log", "garbage|not|a|record"); err != nil {
		t.Fatalf("seed corrupt line: %v", err)
	}
	if err := l.Append(ctx, testTransaction("tx-2", "w2", "w1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	txs, err := l.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "tx-1" || txs[1].ID != "tx-2" {
		t.Fatalf("expected the two valid records in order, got %+v", txs)
	}
}

func TestFileLedgerReadForWallet(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	l := NewFileLedger(store)
	ctx := context.Background()

	l.Append(ctx, testTransaction("tx-1", "w1", "w2"))
	l.Append(ctx, testTransaction("tx-2", "w3", "w4"))
	l.Append(ctx, testTransaction("tx-3", "w2", "w3"))

	txs, err := l.ReadForWallet(ctx, "w2")
	if err != nil {
		t.Fatalf("read for wallet: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "tx-1" || txs[1].ID != "tx-3" {
		t.Fatalf("unexpected records for w2: %+v", txs)
	}
}

func TestFileLedgerSanitizesDescription(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	l := NewFileLedger(store)
	ctx := context.Background()

	tx := testTransaction("tx-1", "w1", "w2")
	tx.Description = "failed: disk|full\nretry later"
	if err := l.Append(ctx, tx); err != nil {
		t.Fatalf("append: %v", err)
	}

	lines, err := store.ReadAllLines("transactions.log")
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected a single log line, got %d", len(lines))
	}
	if strings.Count(lines[0], "|") != 6 {
		t.Fatalf("description broke the field structure: %q", lines[0])
	}

	txs, err := l.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("sanitized record did not parse: %+v", txs)
	}
}
