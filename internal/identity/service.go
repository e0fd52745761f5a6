package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength       = 6
	generatedPasswordLength = 10
)

var passwordCharset = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()")

// ErrInvalidCredentials indicates a failed username/password check.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages the account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures data required to open an account.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Phone    string
}

// Register creates a normal account with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if input.Username == "" {
		return User{}, fmt.Errorf("username is required")
	}
	if len(input.Password) < minPasswordLength {
		return User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return s.create(ctx, input, RoleNormal, false)
}

// AdminCreateInput captures the admin account-creation form.
type AdminCreateInput struct {
	RegisterInput
	Role             string
	GeneratePassword bool
}

// AdminCreate opens an account on behalf of another user, optionally
// with a generated throwaway password. The plaintext of a generated
// password is returned once so the admin can hand it over; it is never
// stored.
func (s *Service) AdminCreate(ctx context.Context, input AdminCreateInput) (User, string, error) {
	if input.Username == "" {
		return User{}, "", fmt.Errorf("username is required")
	}
	role := input.Role
	if role != RoleAdmin {
		role = RoleNormal
	}

	generated := ""
	if input.GeneratePassword {
		pw, err := randomPassword(generatedPasswordLength)
		if err != nil {
			return User{}, "", err
		}
		input.Password = pw
		generated = pw
	} else if len(input.Password) < minPasswordLength {
		return User{}, "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	user, err := s.create(ctx, input.RegisterInput, role, input.GeneratePassword)
	if err != nil {
		return User{}, "", err
	}
	return user, generated, nil
}

func (s *Service) create(ctx context.Context, input RegisterInput, role string, generated bool) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:                uuid.NewString(),
		Username:          input.Username,
		FullName:          input.FullName,
		Email:             input.Email,
		Phone:             input.Phone,
		PasswordHash:      hash,
		Role:              role,
		GeneratedPassword: generated,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ProfileUpdate carries new contact details. Blank fields keep the
// current value.
type ProfileUpdate struct {
	FullName string
	Email    string
	Phone    string
}

// UpdateProfile applies a profile change to the user with id. The OTP
// gate for this operation lives in the shell, not here.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if update.FullName != "" {
		user.FullName = update.FullName
	}
	if update.Email != "" {
		user.Email = update.Email
	}
	if update.Phone != "" {
		user.Phone = update.Phone
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the old one.
// A successful change clears the generated-password marker.
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.GeneratedPassword = false
	return s.repo.Update(ctx, user)
}

// Get retrieves a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every account, for the admin overview.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func randomPassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
