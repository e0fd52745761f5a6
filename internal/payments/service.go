package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/points-pay/points_pay/internal/ledger"
	"github.com/points-pay/points_pay/internal/notification"
	"github.com/points-pay/points_pay/internal/wallet"
)

var (
	// ErrSenderWalletNotFound indicates no wallet is owned by the sender.
	ErrSenderWalletNotFound = errors.New("sender wallet not found")
	// ErrReceiverWalletNotFound indicates the receiver wallet id does not resolve.
	ErrReceiverWalletNotFound = errors.New("receiver wallet not found")
	// ErrSelfTransfer indicates sender and receiver are the same wallet.
	ErrSelfTransfer = errors.New("cannot transfer points to your own wallet")
	// ErrAmountNotPositive indicates a zero or negative transfer amount.
	ErrAmountNotPositive = errors.New("amount must be positive")
	// ErrInsufficientBalance indicates the sender cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

const insufficientBalanceDescription = "insufficient balance"

// Service executes atomic point transfers between wallets and records
// every attempt in the ledger.
type Service struct {
	repo     wallet.Repository
	ledger   ledger.Ledger
	notifier notification.Notifier

	// Serializes the load-then-save critical section. The on-disk
	// repository has no cross-process locking, so a single in-process
	// writer is the concurrency model.
	mu sync.Mutex

	now func() time.Time
}

// NewService constructs a transfer engine.
func NewService(repo wallet.Repository, led ledger.Ledger, notifier notification.Notifier) *Service {
	return &Service{repo: repo, ledger: led, notifier: notifier, now: time.Now}
}

// TransferResult describes the outcome of a committed transfer.
type TransferResult struct {
	TransactionID   string
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

// Transfer moves amount points from the wallet owned by senderUserID to
// the wallet with receiverWalletID.
//
// Resolution failures (unknown sender or receiver, self-transfer,
// non-positive amount) are pre-validation and leave no ledger record.
// Insufficient balance and persistence failures do append a failed
// record; this asymmetry mirrors the historical audit format consumers
// already depend on.
func (s *Service) Transfer(ctx context.Context, senderUserID, receiverWalletID string, amount decimal.Decimal) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrAmountNotPositive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.repo.GetByOwner(ctx, senderUserID)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return TransferResult{}, ErrSenderWalletNotFound
		}
		return TransferResult{}, err
	}
	receiver, err := s.repo.GetByID(ctx, receiverWalletID)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return TransferResult{}, ErrReceiverWalletNotFound
		}
		return TransferResult{}, err
	}
	if sender.ID == receiver.ID {
		return TransferResult{}, ErrSelfTransfer
	}

	tx := ledger.Transaction{
		ID:               uuid.NewString(),
		SenderWalletID:   sender.ID,
		ReceiverWalletID: receiver.ID,
		Amount:           amount,
		Timestamp:        s.now().Unix(),
	}

	if sender.Balance.LessThan(amount) {
		tx.Status = ledger.StatusFailed
		tx.Description = insufficientBalanceDescription
		if err := s.ledger.Append(ctx, tx); err != nil {
			return TransferResult{}, fmt.Errorf("append ledger record: %w", err)
		}
		return TransferResult{}, ErrInsufficientBalance
	}

	senderBefore := sender.Balance
	receiverBefore := receiver.Balance
	sender.Balance = sender.Balance.Sub(amount)
	receiver.Balance = receiver.Balance.Add(amount)

	persistErr := s.repo.Save(ctx, sender)
	if persistErr == nil {
		persistErr = s.repo.Save(ctx, receiver)
	}
	if persistErr != nil {
		// Partial persistence: restore both balances and best-effort
		// re-persist the pre-transfer state.
		sender.Balance = senderBefore
		receiver.Balance = receiverBefore
		_ = s.repo.Save(ctx, sender)
		_ = s.repo.Save(ctx, receiver)

		tx.Status = ledger.StatusFailed
		tx.Description = fmt.Sprintf("transfer rolled back, wallet persistence failed, %v", persistErr)
		if err := s.ledger.Append(ctx, tx); err != nil {
			return TransferResult{}, fmt.Errorf("append ledger record: %w", err)
		}
		return TransferResult{}, fmt.Errorf("persist wallets: %w", persistErr)
	}

	tx.Status = ledger.StatusCompleted
	tx.Description = "points transfer"
	if err := s.ledger.Append(ctx, tx); err != nil {
		return TransferResult{}, fmt.Errorf("append ledger record: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPointsTransfer,
			Destination: receiver.OwnerID,
			Body:        fmt.Sprintf("You received %s points from wallet %s", amount.StringFixed(2), sender.ID),
		})
	}

	return TransferResult{
		TransactionID:   tx.ID,
		SenderBalance:   sender.Balance,
		ReceiverBalance: receiver.Balance,
	}, nil
}
