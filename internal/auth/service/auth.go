package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	autherrors "printhub/internal/auth/errors"
	"printhub/internal/auth/repository"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	mongotx "printhub/pkg/db/mongo"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
	"printhub/pkg/sanitizer"
	"printhub/pkg/validation"
)

const (
	MsgMissingFields      = "Please fill in all required fields"
	MsgMissingCredentials = "Please enter both email and password"
	MsgPasswordTooShort   = "Password must be at least 6 characters long"
	MsgEmailTaken         = "An account with this email already exists"
	MsgInvalidCredentials = "Invalid email or password. Please check your credentials and try again."
	MsgEmailNotConfirmed  = "Please check your email and click the confirmation link before signing in."
	MsgSessionExpired     = "Invalid or expired session. Please sign in again."

	MinPasswordLength = 6
)

// ProfileEnsurer creates the profile that backs a credential record.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, user *model.User) (*model.Profile, error)
}

// ShopProvisioner creates the default shop of a shop owner.
type ShopProvisioner interface {
	EnsureShop(ctx context.Context, shopOwnerID, ownerName, email string) (*model.ShopDetails, error)
}

type AuthService interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.SignUpResult, error)
	SignIn(ctx context.Context, req *model.SignInRequest) (*model.AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (*model.AuthSession, error)
	SignOut(ctx context.Context, refreshToken string)
	ConfirmEmail(ctx context.Context, token string) (*model.AuthSession, error)
}

type authService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	issuer    *auth.Issuer
	profiles  ProfileEnsurer
	shops     ShopProvisioner
	validator *validation.Validator
	cfg       *config.Config
	now       func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	issuer *auth.Issuer,
	profiles ProfileEnsurer,
	shops ShopProvisioner,
	v *validation.Validator,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		issuer:    issuer,
		profiles:  profiles,
		shops:     shops,
		validator: v,
		cfg:       cfg,
		now:       mongotx.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.SignUpResult, error) {
	req.Email = sanitizer.Email(req.Email)
	req.FullName = sanitizer.Text(req.FullName)
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}

	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return nil, apperrors.InvalidInput(MsgMissingFields)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperrors.InvalidInput(MsgPasswordTooShort)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to secure password", err)
	}

	user := &model.User{
		Email:          req.Email,
		PasswordHash:   hash,
		Role:           req.Role,
		FullName:       req.FullName,
		EmailConfirmed: !s.cfg.RequireEmailConfirmation,
	}
	if s.cfg.RequireEmailConfirmation {
		user.ConfirmationToken = uuid.NewString()
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrEmailTaken) {
			return nil, apperrors.Conflict(MsgEmailTaken)
		}
		s.cfg.Log.Error("failed to create user", "email", req.Email, "error", err)
		return nil, apperrors.Internal("failed to create account", err)
	}

	s.cfg.Log.Info("user signed up", "user_id", user.ID, "role", user.Role)

	if !user.EmailConfirmed {
		s.cfg.Log.Debug("confirmation token issued", "user_id", user.ID, "token", user.ConfirmationToken)
		return &model.SignUpResult{User: user, ConfirmationRequired: true}, nil
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.SignUpResult{User: user, Session: session}, nil
}

func (s *authService) SignIn(ctx context.Context, req *model.SignInRequest) (*model.AuthSession, error) {
	email := sanitizer.Email(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.InvalidInput(MsgMissingCredentials)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return nil, apperrors.Unauthorized(MsgInvalidCredentials)
		}
		s.cfg.Log.Error("failed to look up user", "email", email, "error", err)
		return nil, apperrors.Internal("failed to sign in", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.cfg.Log.Warn("sign in rejected", "user_id", user.ID, "reason", "bad password")
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}
	if !user.EmailConfirmed {
		return nil, apperrors.Forbidden(MsgEmailNotConfirmed)
	}

	return s.startSession(ctx, user)
}

// startSession provisions the user's profile (and shop for owners) and
// issues a fresh token pair.
func (s *authService) startSession(ctx context.Context, user *model.User) (*model.AuthSession, error) {
	profile, err := s.profiles.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}

	if user.Role == model.RoleShopOwner {
		if _, err := s.shops.EnsureShop(ctx, user.ID, profile.FullName, user.Email); err != nil {
			s.cfg.Log.Warn("failed to provision default shop", "user_id", user.ID, "error", err)
		}
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	session.Profile = profile

	s.cfg.Log.Info("user signed in", "user_id", user.ID, "role", user.Role)
	return session, nil
}

func (s *authService) issue(ctx context.Context, user *model.User) (*model.AuthSession, error) {
	sessionID := uuid.NewString()

	access, expiresAt, err := s.issuer.IssueAccess(user, sessionID)
	if err != nil {
		return nil, apperrors.Internal("failed to issue session", err)
	}
	refresh, refreshExpiresAt, err := s.issuer.IssueRefresh(user.ID, sessionID)
	if err != nil {
		return nil, apperrors.Internal("failed to issue session", err)
	}

	record := &model.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: refreshExpiresAt,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		s.cfg.Log.Error("failed to store session", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("failed to issue session", err)
	}

	return &model.AuthSession{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

// Refresh rotates the refresh token: the presented session is revoked and
// a new one issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.AuthSession, error) {
	claims, err := s.issuer.Verify(strings.TrimSpace(refreshToken), auth.TokenRefresh)
	if err != nil {
		return nil, apperrors.Unauthorized(MsgSessionExpired)
	}

	if _, err := s.sessions.FindActive(ctx, claims.SessionID, s.now()); err != nil {
		if errors.Is(err, autherrors.ErrSessionNotFound) {
			return nil, apperrors.Unauthorized(MsgSessionExpired)
		}
		return nil, apperrors.Internal("failed to refresh session", err)
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) || errors.Is(err, autherrors.ErrInvalidID) {
			return nil, apperrors.Unauthorized(MsgSessionExpired)
		}
		return nil, apperrors.Internal("failed to refresh session", err)
	}

	if err := s.sessions.Revoke(ctx, claims.SessionID, s.now()); err != nil {
		if errors.Is(err, autherrors.ErrSessionNotFound) {
			// lost a race with a concurrent refresh or sign-out
			return nil, apperrors.Unauthorized(MsgSessionExpired)
		}
		return nil, apperrors.Internal("failed to refresh session", err)
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("session refreshed", "user_id", user.ID)
	return session, nil
}

// SignOut revokes the refresh session. It never fails from the caller's side.
func (s *authService) SignOut(ctx context.Context, refreshToken string) {
	claims, err := s.issuer.Verify(strings.TrimSpace(refreshToken), auth.TokenRefresh)
	if err != nil {
		s.cfg.Log.Warn("sign out with unusable token", "error", err)
		return
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID, s.now()); err != nil && !errors.Is(err, autherrors.ErrSessionNotFound) {
		s.cfg.Log.Error("failed to revoke session", "user_id", claims.Subject, "session_id", claims.SessionID, "error", err)
		return
	}
	s.cfg.Log.Info("user signed out", "user_id", claims.Subject)
}

// ConfirmEmail marks the address confirmed and signs the user in.
func (s *authService) ConfirmEmail(ctx context.Context, token string) (*model.AuthSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.InvalidInput("confirmation token is required")
	}

	user, err := s.users.ConfirmEmail(ctx, token)
	if err != nil {
		if errors.Is(err, autherrors.ErrInvalidConfirmation) {
			return nil, apperrors.InvalidInput("Confirmation link is invalid or has already been used")
		}
		s.cfg.Log.Error("failed to confirm email", "error", err)
		return nil, apperrors.Internal("failed to confirm email", err)
	}

	s.cfg.Log.Info("email confirmed", "user_id", user.ID)
	return s.startSession(ctx, user)
}
