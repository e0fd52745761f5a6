package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/points-pay/points_pay/internal/ledger"
	"github.com/points-pay/points_pay/internal/wallet"
)

type walletResponse struct {
	WalletID string `json:"wallet_id"`
	OwnerID  string `json:"owner_user_id"`
	Balance  string `json:"balance"`
}

func toWalletResponse(w wallet.Wallet) walletResponse {
	return walletResponse{
		WalletID: w.ID,
		OwnerID:  w.OwnerID,
		Balance:  w.Balance.StringFixed(2),
	}
}

type transactionResponse struct {
	TransactionID    string `json:"transaction_id"`
	SenderWalletID   string `json:"sender_wallet_id"`
	ReceiverWalletID string `json:"receiver_wallet_id"`
	Amount           string `json:"amount"`
	Timestamp        int64  `json:"timestamp"`
	Status           string `json:"status"`
	Description      string `json:"description"`
}

func toTransactionResponses(txs []ledger.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			TransactionID:    tx.ID,
			SenderWalletID:   tx.SenderWalletID,
			ReceiverWalletID: tx.ReceiverWalletID,
			Amount:           tx.Amount.StringFixed(2),
			Timestamp:        tx.Timestamp,
			Status:           tx.Status,
			Description:      tx.Description,
		})
	}
	return out
}

// RegisterWalletRoutes wires wallet and audit-trail endpoints.
func RegisterWalletRoutes(r fiber.Router, d Deps) {
	r.Post("/wallets", func(c *fiber.Ctx) error {
		var req struct {
			OwnerUserID string `json:"owner_user_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		w, err := d.Wallets.Create(c.UserContext(), req.OwnerUserID)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.Status(http.StatusCreated).JSON(toWalletResponse(w))
	})

	r.Get("/wallets/:walletId", func(c *fiber.Ctx) error {
		w, err := d.Wallets.Get(c.UserContext(), c.Params("walletId"))
		if err != nil {
			if errors.Is(err, wallet.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "wallet not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(toWalletResponse(w))
	})

	r.Get("/wallets/:walletId/transactions", func(c *fiber.Ctx) error {
		walletID := c.Params("walletId")
		if _, err := d.Wallets.Get(c.UserContext(), walletID); err != nil {
			if errors.Is(err, wallet.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "wallet not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		txs, err := d.Ledger.ReadForWallet(c.UserContext(), walletID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(toTransactionResponses(txs))
	})

	r.Get("/users/:userId/wallet", func(c *fiber.Ctx) error {
		w, err := d.Wallets.GetByOwner(c.UserContext(), c.Params("userId"))
		if err != nil {
			if errors.Is(err, wallet.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "wallet not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(toWalletResponse(w))
	})

	// Full ledger dump, for the admin overview.
	r.Get("/transactions", func(c *fiber.Ctx) error {
		txs, err := d.Ledger.ReadAll(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(toTransactionResponses(txs))
	})
}
