package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/points-pay/points_pay/internal/notification"
	"github.com/points-pay/points_pay/internal/otp"
	"github.com/points-pay/points_pay/internal/payments"
)

// RegisterTransferRoutes wires the OTP-gated transfer flow.
func RegisterTransferRoutes(r fiber.Router, d Deps) {
	// Step one: request a challenge for the sending user.
	r.Post("/transfers/otp", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.UserID == "" {
			return fiber.NewError(http.StatusBadRequest, "user_id is required")
		}
		code, err := d.OTP.Generate(req.UserID, otp.ActionTransferPoints)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if d.Notifier != nil {
			_ = d.Notifier.Send(c.UserContext(), notification.Message{
				Kind:        notification.KindOTPChallenge,
				Destination: req.UserID,
				Body:        fmt.Sprintf("Your transfer confirmation code is %s", code),
			})
		}
		return c.SendStatus(http.StatusAccepted)
	})

	// Step two: confirm the challenge and execute the transfer. The
	// challenge survives a mismatched code so the sender can retry, and
	// is consumed only once the engine has been invoked.
	r.Post("/transfers", func(c *fiber.Ctx) error {
		var req struct {
			SenderUserID     string `json:"sender_user_id"`
			ReceiverWalletID string `json:"receiver_wallet_id"`
			Amount           string `json:"amount"`
			OTPCode          string `json:"otp_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid amount")
		}
		if err := d.OTP.Verify(req.SenderUserID, otp.ActionTransferPoints, req.OTPCode); err != nil {
			return otpError(err)
		}
		d.OTP.Invalidate(req.SenderUserID, otp.ActionTransferPoints)

		res, err := d.Payments.Transfer(c.UserContext(), req.SenderUserID, req.ReceiverWalletID, amount)
		if err != nil {
			switch {
			case errors.Is(err, payments.ErrAmountNotPositive):
				return fiber.NewError(http.StatusBadRequest, err.Error())
			case errors.Is(err, payments.ErrSelfTransfer):
				return fiber.NewError(http.StatusBadRequest, err.Error())
			case errors.Is(err, payments.ErrSenderWalletNotFound),
				errors.Is(err, payments.ErrReceiverWalletNotFound):
				return fiber.NewError(http.StatusNotFound, err.Error())
			case errors.Is(err, payments.ErrInsufficientBalance):
				return fiber.NewError(http.StatusConflict, err.Error())
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}

		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"transaction_id":   res.TransactionID,
			"sender_balance":   res.SenderBalance.StringFixed(2),
			"receiver_balance": res.ReceiverBalance.StringFixed(2),
		})
	})
}
