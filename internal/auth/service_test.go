package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/campman/internal/model"
)

// --- モック ---

type mockOAuthProvider struct {
	exchangeCodeFn func(ctx context.Context, code string) (*OAuthUserInfo, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	return "https://idp.example/auth?state=" + state
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	return m.exchangeCodeFn(ctx, code)
}

type mockUserRepo struct {
	findByIDFn           func(ctx context.Context, id string) (*model.User, error)
	createWithIdentityFn func(ctx context.Context, user *model.User, identity *model.Identity) error
	updateProfileFn      func(ctx context.Context, id, name, email string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	if m.createWithIdentityFn != nil {
		return m.createWithIdentityFn(ctx, user, identity)
	}
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, name, email string) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, name, email)
	}
	return nil
}

type mockIdentRepo struct {
	findFn func(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

func (m *mockIdentRepo) FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
	return m.findFn(ctx, provider, providerUserID)
}

type mockSessionRepo struct {
	createFn   func(ctx context.Context, session *model.Session) error
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return nil
}

// --- テスト ---

func googleUser(sub, email, name string) *OAuthUserInfo {
	return &OAuthUserInfo{
		ProviderUserID: sub,
		Email:          email,
		Name:           name,
		Provider:       "google",
	}
}

// TestHandleCallback_NewUser は未登録subjectに対してユーザーと
// identityが同時作成されることを検証する。
func TestHandleCallback_NewUser(t *testing.T) {
	var createdUser *model.User
	var createdIdentity *model.Identity

	oauth := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return googleUser("google-sub-1", "alice@example.com", "Alice"), nil
		},
	}
	userRepo := &mockUserRepo{
		createWithIdentityFn: func(ctx context.Context, user *model.User, identity *model.Identity) error {
			createdUser = user
			createdIdentity = identity
			return nil
		},
	}
	identRepo := &mockIdentRepo{
		findFn: func(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
			return nil, nil // 未登録
		},
	}
	sessionRepo := &mockSessionRepo{}

	svc := NewService(oauth, userRepo, identRepo, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	session, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}

	if createdUser == nil || createdIdentity == nil {
		t.Fatal("expected user and identity to be created")
	}
	if createdUser.Name != "Alice" {
		t.Errorf("Name = %q, want %q", createdUser.Name, "Alice")
	}
	if createdIdentity.ProviderUserID != "google-sub-1" {
		t.Errorf("ProviderUserID = %q, want %q", createdIdentity.ProviderUserID, "google-sub-1")
	}
	if session.Subject != "google-sub-1" {
		t.Errorf("session.Subject = %q, want %q", session.Subject, "google-sub-1")
	}
	if session.UserID != createdUser.ID {
		t.Errorf("session.UserID = %q, want %q", session.UserID, createdUser.ID)
	}
}

// TestHandleCallback_ExistingUserSyncsProfile は登録済みsubjectに対して
// name/emailがIdPの最新値で上書きされることを検証する。
func TestHandleCallback_ExistingUserSyncsProfile(t *testing.T) {
	var syncedName, syncedEmail string
	createCalled := false

	oauth := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return googleUser("google-sub-1", "alice-new@example.com", "Alice Renamed"), nil
		},
	}
	userRepo := &mockUserRepo{
		createWithIdentityFn: func(ctx context.Context, user *model.User, identity *model.Identity) error {
			createCalled = true
			return nil
		},
		updateProfileFn: func(ctx context.Context, id, name, email string) error {
			syncedName = name
			syncedEmail = email
			return nil
		},
	}
	identRepo := &mockIdentRepo{
		findFn: func(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
			return &model.Identity{ID: "ident-1", UserID: "user-1", Provider: provider, ProviderUserID: providerUserID}, nil
		},
	}
	sessionRepo := &mockSessionRepo{}

	svc := NewService(oauth, userRepo, identRepo, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	session, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}

	if createCalled {
		t.Error("CreateWithIdentity should not be called for existing user")
	}
	if syncedName != "Alice Renamed" {
		t.Errorf("synced name = %q, want %q", syncedName, "Alice Renamed")
	}
	if syncedEmail != "alice-new@example.com" {
		t.Errorf("synced email = %q, want %q", syncedEmail, "alice-new@example.com")
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want %q", session.UserID, "user-1")
	}
}

// TestHandleCallback_UsernameFallsBackToEmail は表示名が空の場合に
// emailがusernameとして使用されることを検証する。
func TestHandleCallback_UsernameFallsBackToEmail(t *testing.T) {
	var createdUser *model.User

	oauth := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return googleUser("google-sub-2", "noname@example.com", ""), nil
		},
	}
	userRepo := &mockUserRepo{
		createWithIdentityFn: func(ctx context.Context, user *model.User, identity *model.Identity) error {
			createdUser = user
			return nil
		},
	}
	identRepo := &mockIdentRepo{
		findFn: func(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
			return nil, nil
		},
	}

	svc := NewService(oauth, userRepo, identRepo, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600})

	if _, err := svc.HandleCallback(context.Background(), "auth-code"); err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}
	if createdUser.Name != "noname@example.com" {
		t.Errorf("Name = %q, want fallback to email", createdUser.Name)
	}
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return nil, errors.New("idp unreachable")
		},
	}

	svc := NewService(oauth, &mockUserRepo{}, &mockIdentRepo{}, &mockSessionRepo{}, ServiceConfig{})

	if _, err := svc.HandleCallback(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestHandleCallback_SessionExpiry(t *testing.T) {
	oauth := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*OAuthUserInfo, error) {
			return googleUser("google-sub-3", "bob@example.com", "Bob"), nil
		},
	}
	identRepo := &mockIdentRepo{
		findFn: func(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
			return &model.Identity{UserID: "user-3"}, nil
		},
	}

	svc := NewService(oauth, &mockUserRepo{}, identRepo, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 7200})

	before := time.Now()
	session, err := svc.HandleCallback(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}

	want := before.Add(2 * time.Hour)
	if session.ExpiresAt.Before(want.Add(-time.Minute)) || session.ExpiresAt.After(want.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want around %v", session.ExpiresAt, want)
	}
}

func TestLogout(t *testing.T) {
	deleted := ""
	sessionRepo := &mockSessionRepo{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	svc := NewService(&mockOAuthProvider{}, &mockUserRepo{}, &mockIdentRepo{}, sessionRepo, ServiceConfig{})

	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if deleted != "sess-1" {
		t.Errorf("deleted session = %q, want %q", deleted, "sess-1")
	}
}

func TestLogout_EmptySessionID(t *testing.T) {
	svc := NewService(&mockOAuthProvider{}, &mockUserRepo{}, &mockIdentRepo{}, &mockSessionRepo{}, ServiceConfig{})

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

func TestGetCurrentUser(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: "user-1", Subject: "google-sub-1"}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "alice@example.com", Name: "Alice"}, nil
		},
	}

	svc := NewService(&mockOAuthProvider{}, userRepo, &mockIdentRepo{}, sessionRepo, ServiceConfig{})

	user, err := svc.GetCurrentUser(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentUser returned error: %v", err)
	}
	if user.Name != "Alice" {
		t.Errorf("Name = %q, want %q", user.Name, "Alice")
	}
}

func TestGetCurrentUser_ExpiredSession(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, nil // 期限切れはnil
		},
	}

	svc := NewService(&mockOAuthProvider{}, &mockUserRepo{}, &mockIdentRepo{}, sessionRepo, ServiceConfig{})

	if _, err := svc.GetCurrentUser(context.Background(), "stale"); err == nil {
		t.Fatal("expected error for expired session")
	}
}
