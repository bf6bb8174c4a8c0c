package service

import (
	"context"

	"focusflow/internal/model"
	"focusflow/internal/repository"
)

// ProfileService exposes the user-visible account record
type ProfileService struct {
	userRepo repository.UserRepo
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo repository.UserRepo) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// Get returns the user's profile
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// Update changes the user's display name
func (s *ProfileService) Update(ctx context.Context, userID, username string) (*model.Profile, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, username)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}
