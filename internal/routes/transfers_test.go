package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/points-pay/points_pay/internal/config"
	"github.com/points-pay/points_pay/internal/identity"
	"github.com/points-pay/points_pay/internal/ledger"
	"github.com/points-pay/points_pay/internal/logging"
	"github.com/points-pay/points_pay/internal/otp"
	"github.com/points-pay/points_pay/internal/payments"
	"github.com/points-pay/points_pay/internal/wallet"
)

type testEnv struct {
	app     *fiber.App
	repo    wallet.Repository
	otp     *otp.Manager
	wallets *wallet.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := wallet.NewMemoryRepository()
	walletSvc := wallet.NewService(repo)
	led := ledger.NewInMemory()
	otpManager := otp.NewManager(otp.DefaultTTL)

	deps := Deps{
		Cfg:      config.Config{AppName: "test"},
		Logger:   logging.Discard(),
		Users:    identity.NewService(identity.NewMemoryRepository()),
		Wallets:  walletSvc,
		Ledger:   led,
		Payments: payments.NewService(repo, led, nil),
		OTP:      otpManager,
	}

	app := fiber.New()
	if err := Setup(app, deps); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return &testEnv{app: app, repo: repo, otp: otpManager, wallets: walletSvc}
}

func (e *testEnv) seedWallet(t *testing.T, owner, balance string) wallet.Wallet {
	t.Helper()
	w, err := e.repo.Create(context.Background(), owner)
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	w.Balance = decimal.RequireFromString(balance)
	if err := e.repo.Save(context.Background(), w); err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	return w
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestTransferFlowRequiresOTP(t *testing.T) {
	env := setupTestEnv(t)
	env.seedWallet(t, "alice", "100.00")
	receiver := env.seedWallet(t, "bob", "0.00")

	resp := postJSON(t, env.app, "/api/v1/transfers", fiber.Map{
		"sender_user_id":     "alice",
		"receiver_wallet_id": receiver.ID,
		"amount":             "10.00",
		"otp_code":           "123456",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without challenge, got %d", resp.StatusCode)
	}
}

func TestTransferFlowCompletes(t *testing.T) {
	env := setupTestEnv(t)
	env.seedWallet(t, "alice", "100.00")
	receiver := env.seedWallet(t, "bob", "0.00")

	resp := postJSON(t, env.app, "/api/v1/transfers/otp", fiber.Map{"user_id": "alice"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 for otp request, got %d", resp.StatusCode)
	}

	// The notifier delivers the code out of band; tests short-circuit by
	// regenerating the challenge to learn it.
	code, err := env.otp.Generate("alice", otp.ActionTransferPoints)
	if err != nil {
		t.Fatalf("generate otp: %v", err)
	}

	resp = postJSON(t, env.app, "/api/v1/transfers", fiber.Map{
		"sender_user_id":     "alice",
		"receiver_wallet_id": receiver.ID,
		"amount":             "25.50",
		"otp_code":           code,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body struct {
		TransactionID   string `json:"transaction_id"`
		SenderBalance   string `json:"sender_balance"`
		ReceiverBalance string `json:"receiver_balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.TransactionID == "" || body.SenderBalance != "74.50" || body.ReceiverBalance != "25.50" {
		t.Fatalf("unexpected response: %+v", body)
	}

	// The challenge was consumed; a replay with the same code fails.
	resp = postJSON(t, env.app, "/api/v1/transfers", fiber.Map{
		"sender_user_id":     "alice",
		"receiver_wallet_id": receiver.ID,
		"amount":             "1.00",
		"otp_code":           code,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replay, got %d", resp.StatusCode)
	}
}

func TestTransferFlowInsufficientBalance(t *testing.T) {
	env := setupTestEnv(t)
	env.seedWallet(t, "alice", "5.00")
	receiver := env.seedWallet(t, "bob", "0.00")

	code, err := env.otp.Generate("alice", otp.ActionTransferPoints)
	if err != nil {
		t.Fatalf("generate otp: %v", err)
	}

	resp := postJSON(t, env.app, "/api/v1/transfers", fiber.Map{
		"sender_user_id":     "alice",
		"receiver_wallet_id": receiver.ID,
		"amount":             "50.00",
		"otp_code":           code,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestTransferFlowInvalidAmount(t *testing.T) {
	env := setupTestEnv(t)

	resp := postJSON(t, env.app, "/api/v1/transfers", fiber.Map{
		"sender_user_id":     "alice",
		"receiver_wallet_id": "w1",
		"amount":             "not-a-number",
		"otp_code":           "123456",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWalletEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	w := env.seedWallet(t, "alice", "42.00")

	req := httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/api/v1/wallets/%s", w.ID), nil)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body walletResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.WalletID != w.ID || body.Balance != "42.00" {
		t.Fatalf("unexpected body: %+v", body)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/api/v1/users/alice/wallet", nil)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for owner lookup, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/api/v1/wallets/missing", nil)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing wallet, got %d", resp.StatusCode)
	}
}

func TestRegisterProvisionsWallet(t *testing.T) {
	env := setupTestEnv(t)

	resp := postJSON(t, env.app, "/api/v1/identity/register", fiber.Map{
		"username":  "alice",
		"password":  "hunter22",
		"full_name": "Alice Doe",
		"email":     "alice@example.com",
		"phone":     "0123456789",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var body struct {
		User     userResponse `json:"user"`
		WalletID string       `json:"wallet_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.Username != "alice" || body.WalletID == "" {
		t.Fatalf("unexpected body: %+v", body)
	}

	if _, err := env.wallets.GetByOwner(context.Background(), body.User.UserID); err != nil {
		t.Fatalf("wallet not provisioned: %v", err)
	}
}
