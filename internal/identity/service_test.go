package identity

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Password: "hunter22",
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Phone:    "0123456789",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Role != RoleNormal {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(ctx, "alice", "hunter22"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "abc"}); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "other-pass"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAdminCreateWithGeneratedPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, generated, err := svc.AdminCreate(ctx, AdminCreateInput{
		RegisterInput:    RegisterInput{Username: "carol"},
		Role:             RoleAdmin,
		GeneratePassword: true,
	})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if user.Role != RoleAdmin || !user.GeneratedPassword {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(generated) != generatedPasswordLength {
		t.Fatalf("expected %d-char generated password, got %q", generatedPasswordLength, generated)
	}

	if _, err := svc.Authenticate(ctx, "carol", generated); err != nil {
		t.Fatalf("authenticate with generated password: %v", err)
	}
}

func TestUpdateProfileKeepsBlankFields(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, _ := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Password: "hunter22",
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Phone:    "0123456789",
	})

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Fatalf("email not updated: %+v", updated)
	}
	if updated.FullName != "Alice Doe" || updated.Phone != "0123456789" {
		t.Fatalf("blank fields must keep current values: %+v", updated)
	}
}

func TestChangePassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, _, err := svc.AdminCreate(ctx, AdminCreateInput{
		RegisterInput:    RegisterInput{Username: "alice"},
		GeneratePassword: true,
	})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "wrong-old", "fresh-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestFileRepositoryUserRoundTrip(t *testing.T) {
	svc := NewService(newFileRepo(t))
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Password: "hunter22",
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Phone:    "0123456789",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	byName, err := svc.repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	byID, err := svc.repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byName.ID != user.ID || byID.Username != "alice" || byID.Email != "alice@example.com" {
		t.Fatalf("round trip mismatch: %+v / %+v", byName, byID)
	}

	if _, err := svc.Authenticate(ctx, "alice", "hunter22"); err != nil {
		t.Fatalf("authenticate against stored hash: %v", err)
	}
}
