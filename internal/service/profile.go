package service

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/storage"
	"github.com/tip2talk/server/internal/validation"
)

type ProfileService struct {
	profileRepository repository.ProfileRepository
	storage           storage.Storage
}

func NewProfileService(profileRepository repository.ProfileRepository, fileStorage storage.Storage) *ProfileService {
	return &ProfileService{
		profileRepository: profileRepository,
		storage:           fileStorage,
	}
}

func (s *ProfileService) ByID(id string) (*model.Profile, error) {
	return s.profileRepository.ByID(id)
}

func (s *ProfileService) ByUsername(username string) (*model.Profile, error) {
	return s.profileRepository.ByUsername(strings.ToLower(username))
}

type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	TipGoal     *int    `json:"tip_goal"`
}

// Update applies the onboarding/settings mutation to the caller's own
// profile. Nil fields are left unchanged.
func (s *ProfileService) Update(profileID string, update ProfileUpdate) (*model.Profile, error) {
	profile, err := s.profileRepository.ByID(profileID)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		err = validation.ValidateDisplayName(*update.DisplayName)
		if err != nil {
			return nil, err
		}
		profile.DisplayName = strings.TrimSpace(*update.DisplayName)
	}
	if update.Bio != nil {
		profile.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.TipGoal != nil {
		if *update.TipGoal < 0 {
			return nil, fmt.Errorf("tip goal cannot be negative")
		}
		profile.TipGoal = *update.TipGoal
	}

	err = s.profileRepository.Update(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// SetAvatar validates and stores an avatar image, then points the profile at
// its public URL.
func (s *ProfileService) SetAvatar(profileID string, file multipart.File, header *multipart.FileHeader) (*model.Profile, error) {
	profile, err := s.profileRepository.ByID(profileID)
	if err != nil {
		return nil, err
	}

	err = validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(header.Filename)
	path := fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)

	err = s.storage.Save(path, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	profile.AvatarURL = s.avatarURL(path)
	err = s.profileRepository.Update(profile)
	if err != nil {
		delErr := s.storage.Delete(path)
		if delErr != nil {
			slog.Error("failed to delete avatar during cleanup", "error", delErr, "path", path)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

func (s *ProfileService) avatarURL(path string) string {
	s3Storage, ok := s.storage.(*storage.S3Storage)
	if ok {
		return s3Storage.PublicURL(path)
	}
	return s.storage.URL(path)
}
