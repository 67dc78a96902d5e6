package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	profileserrors "printhub/internal/profiles/errors"
	"printhub/internal/profiles/repository"
	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/model"
	"printhub/pkg/sanitizer"
	"printhub/pkg/storage"
	"printhub/pkg/validation"
)

var AvatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Ensure(ctx context.Context, user *model.User) (*model.Profile, error)
	Update(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.Profile, error)
	UploadAvatar(ctx context.Context, userID, fileName, contentType string, r io.Reader) (*model.Profile, error)
	AvatarURL(ctx context.Context, userID string) (string, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	store     storage.Store
	signer    storage.URLSigner
	validator *validation.Validator
	cfg       *config.Config
}

func NewProfileService(
	repo repository.ProfileRepository,
	store storage.Store,
	signer storage.URLSigner,
	v *validation.Validator,
	cfg *config.Config,
) ProfileService {
	return &profileService{
		repo:      repo,
		store:     store,
		signer:    signer,
		validator: v,
		cfg:       cfg,
	}
}

func (s *profileService) notFound(userID string, err error) error {
	if errors.Is(err, profileserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Profile", userID)
	}
	s.cfg.Log.Error("failed to load profile", "user_id", userID, "error", err)
	return apperrors.Internal("failed to load profile", err)
}

// withAvatarURL signs the stored avatar path. Signing failures leave the URL empty.
func (s *profileService) withAvatarURL(profile *model.Profile) *model.Profile {
	if profile.AvatarPath == "" {
		return profile
	}
	url, err := s.signer.SignedURL(s.cfg.AvatarBucket, profile.AvatarPath, s.cfg.SignedURLTTL)
	if err != nil {
		s.cfg.Log.Warn("failed to sign avatar url", "user_id", profile.UserID, "error", err)
		return profile
	}
	profile.AvatarURL = url
	return profile
}

func (s *profileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.notFound(userID, err)
	}
	return s.withAvatarURL(profile), nil
}

// Ensure returns the user's profile, creating it from the credential record
// on first sign-in.
func (s *profileService) Ensure(ctx context.Context, user *model.User) (*model.Profile, error) {
	profile := &model.Profile{
		UserID:   user.ID,
		FullName: sanitizer.Text(user.FullName),
		Role:     user.Role,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		s.cfg.Log.Error("failed to ensure profile", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("failed to create profile", err)
	}
	return s.withAvatarURL(profile), nil
}

func (s *profileService) Update(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.Profile, error) {
	if update.FullName != nil {
		name := sanitizer.Text(*update.FullName)
		if name == "" {
			return nil, apperrors.InvalidInput("full_name cannot be empty")
		}
		update.FullName = &name
	}
	if update.Phone != nil {
		raw := strings.TrimSpace(*update.Phone)
		phone := sanitizer.Phone(raw, s.cfg.PhoneRegion)
		if raw != "" && phone == "" {
			return nil, apperrors.InvalidInput("phone number is not valid")
		}
		update.Phone = &phone
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, validation.ToAppError(err)
	}
	if update.FullName == nil && update.Phone == nil {
		return nil, apperrors.InvalidInput("nothing to update")
	}

	profile, err := s.repo.Update(ctx, userID, update)
	if err != nil {
		return nil, s.notFound(userID, err)
	}

	s.cfg.Log.Info("profile updated", "user_id", userID)
	return s.withAvatarURL(profile), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID, fileName, contentType string, r io.Reader) (*model.Profile, error) {
	ext := strings.ToLower(filepath.Ext(sanitizer.FileName(fileName)))
	if !AvatarExtensions[ext] {
		return nil, apperrors.InvalidInput("Avatar must be an image (.jpg, .jpeg, .png, .gif, .webp)")
	}

	current, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.notFound(userID, err)
	}

	objectPath := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)
	if _, err := s.store.Upload(ctx, s.cfg.AvatarBucket, objectPath, r, contentType); err != nil {
		s.cfg.Log.Error("failed to upload avatar", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to upload avatar", err)
	}

	profile, err := s.repo.SetAvatarPath(ctx, userID, objectPath)
	if err != nil {
		if delErr := s.store.Delete(ctx, s.cfg.AvatarBucket, objectPath); delErr != nil {
			s.cfg.Log.Warn("failed to remove orphaned avatar", "path", objectPath, "error", delErr)
		}
		return nil, s.notFound(userID, err)
	}

	if current.AvatarPath != "" && current.AvatarPath != objectPath {
		if err := s.store.Delete(ctx, s.cfg.AvatarBucket, current.AvatarPath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.cfg.Log.Warn("failed to remove previous avatar", "path", current.AvatarPath, "error", err)
		}
	}

	s.cfg.Log.Info("avatar uploaded", "user_id", userID, "path", objectPath)
	return s.withAvatarURL(profile), nil
}

func (s *profileService) AvatarURL(ctx context.Context, userID string) (string, error) {
	profile, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return "", s.notFound(userID, err)
	}
	if profile.AvatarPath == "" {
		return "", apperrors.NotFound("Avatar")
	}

	url, err := s.signer.SignedURL(s.cfg.AvatarBucket, profile.AvatarPath, s.cfg.SignedURLTTL)
	if err != nil {
		return "", apperrors.Internal("failed to sign avatar url", err)
	}
	return url, nil
}
