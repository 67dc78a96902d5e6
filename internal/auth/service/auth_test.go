package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	autherrors "printhub/internal/auth/errors"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
	"printhub/pkg/validation"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memoryUsers struct {
	byID map[string]*model.User
	seq  int
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	for _, u := range m.byID {
		if u.Email == user.Email {
			return autherrors.ErrEmailTaken
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("64b7f0c2a1b2c3d4e5f6%04d", m.seq)
	stored := *user
	m.byID[user.ID] = &stored
	return nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, autherrors.ErrUserNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, autherrors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUsers) ConfirmEmail(_ context.Context, token string) (*model.User, error) {
	for _, u := range m.byID {
		if u.ConfirmationToken != "" && u.ConfirmationToken == token {
			u.EmailConfirmed = true
			u.ConfirmationToken = ""
			copied := *u
			return &copied, nil
		}
	}
	return nil, autherrors.ErrInvalidConfirmation
}

type memorySessions struct {
	byID      map[string]*model.Session
	revokeErr error
}

func (m *memorySessions) Create(_ context.Context, session *model.Session) error {
	stored := *session
	m.byID[session.ID] = &stored
	return nil
}

func (m *memorySessions) FindActive(_ context.Context, id string, now time.Time) (*model.Session, error) {
	s, ok := m.byID[id]
	if !ok || s.RevokedAt != nil || !s.ExpiresAt.After(now) {
		return nil, autherrors.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memorySessions) Revoke(_ context.Context, id string, at time.Time) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	s, ok := m.byID[id]
	if !ok || s.RevokedAt != nil {
		return autherrors.ErrSessionNotFound
	}
	s.RevokedAt = &at
	return nil
}

type fakeProfiles struct {
	ensured []string
}

func (f *fakeProfiles) Ensure(_ context.Context, user *model.User) (*model.Profile, error) {
	f.ensured = append(f.ensured, user.ID)
	return &model.Profile{UserID: user.ID, FullName: user.FullName, Role: user.Role}, nil
}

type fakeShops struct {
	calls []string
	err   error
}

func (f *fakeShops) EnsureShop(_ context.Context, shopOwnerID, ownerName, _ string) (*model.ShopDetails, error) {
	f.calls = append(f.calls, shopOwnerID+":"+ownerName)
	return &model.ShopDetails{}, f.err
}

type fixture struct {
	svc      *authService
	users    *memoryUsers
	sessions *memorySessions
	profiles *fakeProfiles
	shops    *fakeShops
}

func newFixture(requireConfirmation bool) *fixture {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{Log: log, RequireEmailConfirmation: requireConfirmation}
	f := &fixture{
		users:    &memoryUsers{byID: map[string]*model.User{}},
		sessions: &memorySessions{byID: map[string]*model.Session{}},
		profiles: &fakeProfiles{},
		shops:    &fakeShops{},
	}
	issuer := auth.NewIssuer(testSecret, 15*time.Minute, 24*time.Hour)
	svc := NewAuthService(f.users, f.sessions, issuer, f.profiles, f.shops, validation.New(log), cfg)
	f.svc = svc.(*authService)
	return f
}

func (f *fixture) signUp(t *testing.T, role model.Role) *model.SignUpResult {
	t.Helper()
	result, err := f.svc.SignUp(context.Background(), &model.SignUpRequest{
		Email:    " Ada@Example.com ",
		Password: "secret1",
		FullName: "Ada",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	return result
}

func TestSignUp_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.SignUpRequest
		wantMsg string
	}{
		{"missing name", model.SignUpRequest{Email: "a@b.co", Password: "secret1"}, MsgMissingFields},
		{"missing email", model.SignUpRequest{Password: "secret1", FullName: "Ada"}, MsgMissingFields},
		{"short password", model.SignUpRequest{Email: "a@b.co", Password: "12345", FullName: "Ada"}, MsgPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(false)
			_, err := f.svc.SignUp(context.Background(), &tt.req)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Message != tt.wantMsg {
				t.Fatalf("SignUp() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}

	f := newFixture(false)
	_, err := f.svc.SignUp(context.Background(), &model.SignUpRequest{Email: "not-an-email", Password: "secret1", FullName: "Ada"})
	if err == nil {
		t.Error("SignUp() with malformed email succeeded")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newFixture(false)
	f.signUp(t, model.RoleCustomer)

	_, err := f.svc.SignUp(context.Background(), &model.SignUpRequest{Email: "ada@example.com", Password: "another1", FullName: "Ada"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("SignUp() duplicate error = %v, want conflict", err)
	}
}

func TestSignUp_WithConfirmation(t *testing.T) {
	f := newFixture(true)
	result := f.signUp(t, model.RoleShopOwner)

	if !result.ConfirmationRequired || result.Session != nil {
		t.Fatalf("SignUp() = %+v, want confirmation required without session", result)
	}

	_, err := f.svc.SignIn(context.Background(), &model.SignInRequest{Email: "ada@example.com", Password: "secret1"})
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.Message != MsgEmailNotConfirmed {
		t.Fatalf("SignIn() before confirmation error = %v", err)
	}

	token := f.users.byID[result.User.ID].ConfirmationToken
	session, err := f.svc.ConfirmEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("ConfirmEmail() error = %v", err)
	}
	if session.AccessToken == "" || len(f.shops.calls) != 1 {
		t.Errorf("ConfirmEmail() session = %+v, shop calls = %v", session, f.shops.calls)
	}

	if _, err := f.svc.ConfirmEmail(context.Background(), token); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("ConfirmEmail() reuse error = %v, want invalid input", err)
	}
}

func TestSignIn(t *testing.T) {
	f := newFixture(false)
	signedUp := f.signUp(t, model.RoleShopOwner)
	if signedUp.Session == nil {
		t.Fatal("SignUp() without confirmation should start a session")
	}

	session, err := f.svc.SignIn(context.Background(), &model.SignInRequest{Email: "ADA@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if session.User.Email != "ada@example.com" || session.Profile == nil {
		t.Errorf("SignIn() = %+v", session)
	}
	if !auth.IsTokenValid(session.AccessToken, time.Now()) {
		t.Error("access token should be valid")
	}
	if len(f.sessions.byID) != 2 {
		t.Errorf("sessions = %d, want 2", len(f.sessions.byID))
	}
	want := signedUp.User.ID + ":Ada"
	if len(f.shops.calls) != 2 || f.shops.calls[1] != want {
		t.Errorf("EnsureShop calls = %v, want %q", f.shops.calls, want)
	}
}

func TestSignIn_Rejections(t *testing.T) {
	f := newFixture(false)
	f.signUp(t, model.RoleCustomer)

	tests := []struct {
		name     string
		req      model.SignInRequest
		wantCode string
		wantMsg  string
	}{
		{"wrong password", model.SignInRequest{Email: "ada@example.com", Password: "nope123"}, apperrors.CodeUnauthorized, MsgInvalidCredentials},
		{"unknown email", model.SignInRequest{Email: "bob@example.com", Password: "secret1"}, apperrors.CodeUnauthorized, MsgInvalidCredentials},
		{"missing password", model.SignInRequest{Email: "ada@example.com"}, apperrors.CodeInvalidInput, MsgMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SignIn(context.Background(), &tt.req)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != tt.wantCode || appErr.Message != tt.wantMsg {
				t.Fatalf("SignIn() error = %v, want %s %q", err, tt.wantCode, tt.wantMsg)
			}
		})
	}

	if len(f.shops.calls) != 0 {
		t.Errorf("customers should not get a shop, calls = %v", f.shops.calls)
	}
}

func TestSignIn_ShopProvisioningFailureIsNotFatal(t *testing.T) {
	f := newFixture(false)
	f.shops.err = errors.New("mongo down")

	result := f.signUp(t, model.RoleShopOwner)
	if result.Session == nil || result.Session.AccessToken == "" {
		t.Fatalf("SignUp() = %+v, want a session", result)
	}
}

func TestRefresh_RotatesSession(t *testing.T) {
	f := newFixture(false)
	first := f.signUp(t, model.RoleCustomer).Session

	second, err := f.svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("Refresh() should issue a new refresh token")
	}

	_, err = f.svc.Refresh(context.Background(), first.RefreshToken)
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.Message != MsgSessionExpired {
		t.Errorf("Refresh() with rotated token error = %v", err)
	}

	if _, err := f.svc.Refresh(context.Background(), first.AccessToken); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("Refresh() with access token error = %v, want unauthorized", err)
	}
}

func TestSignOut(t *testing.T) {
	f := newFixture(false)
	session := f.signUp(t, model.RoleCustomer).Session

	f.svc.SignOut(context.Background(), session.RefreshToken)
	if _, err := f.svc.Refresh(context.Background(), session.RefreshToken); err == nil {
		t.Error("Refresh() after SignOut should fail")
	}

	// unusable tokens and storage failures are swallowed
	f.svc.SignOut(context.Background(), "garbage")
	f.sessions.revokeErr = errors.New("write failed")
	f.svc.SignOut(context.Background(), session.RefreshToken)
}
