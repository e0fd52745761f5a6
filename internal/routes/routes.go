package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/points-pay/points_pay/internal/config"
	"github.com/points-pay/points_pay/internal/identity"
	"github.com/points-pay/points_pay/internal/ledger"
	"github.com/points-pay/points_pay/internal/middleware"
	"github.com/points-pay/points_pay/internal/notification"
	"github.com/points-pay/points_pay/internal/otp"
	"github.com/points-pay/points_pay/internal/payments"
	"github.com/points-pay/points_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Cache    *redis.Client
	Logger   *slog.Logger
	Users    *identity.Service
	Wallets  *wallet.Service
	Ledger   ledger.Ledger
	Payments *payments.Service
	OTP      *otp.Manager
	Notifier notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Logger != nil {
		app.Use(middleware.Audit(d.Logger))
	}
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterIdentityRoutes(api, d, rateLimiter)
	RegisterWalletRoutes(api, d)
	RegisterTransferRoutes(api, d)

	return nil
}
