package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/campman/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	return nil
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, name, email string) error {
	return nil
}

// --- テスト ---

func TestGetProfile(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Alice", Email: "alice@example.com"}, nil
		},
	}

	svc := NewService(userRepo)

	profile, err := svc.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.Name != "Alice" {
		t.Errorf("Name = %q, want %q", profile.Name, "Alice")
	}
	if profile.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", profile.Email, "alice@example.com")
	}
}

func TestGetProfile_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := NewService(userRepo)

	_, err := svc.GetProfile(context.Background(), "nonexistent-user")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "USER_NOT_FOUND" {
		t.Errorf("code = %q, want %q", apiErr.Code, "USER_NOT_FOUND")
	}
}

func TestGetProfile_RepositoryError(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}

	svc := NewService(userRepo)

	if _, err := svc.GetProfile(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
