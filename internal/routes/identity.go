package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/points-pay/points_pay/internal/identity"
	"github.com/points-pay/points_pay/internal/notification"
	"github.com/points-pay/points_pay/internal/otp"
)

type userResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}

// RegisterIdentityRoutes wires account endpoints and auto-provisions a
// wallet on registration.
func RegisterIdentityRoutes(r fiber.Router, d Deps, loginRateLimit fiber.Handler) {
	r.Post("/identity/register", func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := d.Users.Register(c.UserContext(), identity.RegisterInput{
			Username: req.Username,
			Password: req.Password,
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
		})
		if err != nil {
			if errors.Is(err, identity.ErrUsernameTaken) {
				return fiber.NewError(http.StatusConflict, err.Error())
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		var walletID string
		if d.Wallets != nil {
			if w, err := d.Wallets.Create(c.UserContext(), user.ID); err == nil {
				walletID = w.ID
			}
		}
		if d.Logger != nil {
			d.Logger.Info("identity.register completed",
				slog.String("user_id", user.ID),
				slog.String("username", user.Username),
				slog.String("wallet_id", walletID),
			)
		}
		resp := fiber.Map{"user": toUserResponse(user), "wallet_id": walletID}
		return c.Status(http.StatusCreated).JSON(resp)
	})

	r.Post("/identity/login", loginRateLimit, func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := d.Users.Authenticate(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
		}
		resp := fiber.Map{"user": toUserResponse(user)}
		// Surface the forced-rotation hint for admin-issued passwords.
		if user.GeneratedPassword {
			resp["password_rotation_required"] = true
		}
		return c.Status(http.StatusOK).JSON(resp)
	})

	// Issues the update_profile challenge. The notifier stands in for a
	// real delivery channel.
	r.Post("/users/:userId/profile/otp", func(c *fiber.Ctx) error {
		userID := c.Params("userId")
		if _, err := d.Users.Get(c.UserContext(), userID); err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		code, err := d.OTP.Generate(userID, otp.ActionUpdateProfile)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if d.Notifier != nil {
			_ = d.Notifier.Send(c.UserContext(), notification.Message{
				Kind:        notification.KindOTPChallenge,
				Destination: userID,
				Body:        fmt.Sprintf("Your profile update code is %s", code),
			})
		}
		return c.SendStatus(http.StatusAccepted)
	})

	r.Put("/users/:userId/profile", func(c *fiber.Ctx) error {
		userID := c.Params("userId")
		var req struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
			OTPCode  string `json:"otp_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := d.OTP.Verify(userID, otp.ActionUpdateProfile, req.OTPCode); err != nil {
			return otpError(err)
		}
		user, err := d.Users.UpdateProfile(c.UserContext(), userID, identity.ProfileUpdate{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
		})
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		d.OTP.Invalidate(userID, otp.ActionUpdateProfile)
		return c.Status(http.StatusOK).JSON(fiber.Map{"user": toUserResponse(user)})
	})

	r.Post("/users/:userId/password", func(c *fiber.Ctx) error {
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		err := d.Users.ChangePassword(c.UserContext(), c.Params("userId"), req.OldPassword, req.NewPassword)
		switch {
		case err == nil:
			return c.SendStatus(http.StatusNoContent)
		case errors.Is(err, identity.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		case errors.Is(err, identity.ErrInvalidCredentials):
			return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	})

	// Admin overview and on-behalf account creation.
	r.Get("/users", func(c *fiber.Ctx) error {
		users, err := d.Users.List(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]userResponse, 0, len(users))
		for _, u := range users {
			out = append(out, toUserResponse(u))
		}
		return c.Status(http.StatusOK).JSON(out)
	})

	r.Post("/users", func(c *fiber.Ctx) error {
		var req struct {
			Username         string `json:"username"`
			Password         string `json:"password"`
			FullName         string `json:"full_name"`
			Email            string `json:"email"`
			Phone            string `json:"phone"`
			Role             string `json:"role"`
			GeneratePassword bool   `json:"generate_password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, generated, err := d.Users.AdminCreate(c.UserContext(), identity.AdminCreateInput{
			RegisterInput: identity.RegisterInput{
				Username: req.Username,
				Password: req.Password,
				FullName: req.FullName,
				Email:    req.Email,
				Phone:    req.Phone,
			},
			Role:             req.Role,
			GeneratePassword: req.GeneratePassword,
		})
		if err != nil {
			if errors.Is(err, identity.ErrUsernameTaken) {
				return fiber.NewError(http.StatusConflict, err.Error())
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		var walletID string
		if d.Wallets != nil {
			if w, err := d.Wallets.Create(c.UserContext(), user.ID); err == nil {
				walletID = w.ID
			}
		}
		resp := fiber.Map{"user": toUserResponse(user), "wallet_id": walletID}
		if generated != "" {
			resp["generated_password"] = generated
		}
		return c.Status(http.StatusCreated).JSON(resp)
	})
}

func otpError(err error) error {
	switch {
	case errors.Is(err, otp.ErrNoActiveChallenge):
		return fiber.NewError(http.StatusUnauthorized, "no active otp challenge")
	case errors.Is(err, otp.ErrExpired):
		return fiber.NewError(http.StatusUnauthorized, "otp expired")
	case errors.Is(err, otp.ErrMismatch):
		return fiber.NewError(http.StatusUnauthorized, "otp code mismatch")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
