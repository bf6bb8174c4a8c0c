package service

import (
	"context"
	"errors"
	"strings"

	"focusflow/internal/model"
	"focusflow/internal/repository"
)

var ErrTitleRequired = errors.New("title is required")

// ContextService handles context CRUD
type ContextService struct {
	contextRepo repository.ContextRepo
	sessionRepo repository.SessionRepo
}

// NewContextService creates a new context service
func NewContextService(contextRepo repository.ContextRepo, sessionRepo repository.SessionRepo) *ContextService {
	return &ContextService{
		contextRepo: contextRepo,
		sessionRepo: sessionRepo,
	}
}

// Create stores a new context for the user
func (s *ContextService) Create(ctx context.Context, userID, title, description string) (*model.Context, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	c := &model.Context{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
	}
	id, err := s.contextRepo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Get fetches a context owned by the user
func (s *ContextService) Get(ctx context.Context, id, userID string) (*model.Context, error) {
	return s.contextRepo.GetByID(ctx, id, userID)
}

// List returns all of the user's contexts, most recently updated first
func (s *ContextService) List(ctx context.Context, userID string) ([]*model.Context, error) {
	return s.contextRepo.ListByUser(ctx, userID)
}

// Update changes a context's title and description
func (s *ContextService) Update(ctx context.Context, id, userID, title, description string) (*model.Context, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	return s.contextRepo.Update(ctx, id, userID, title, strings.TrimSpace(description))
}

// Sessions lists the context's most recent sessions
func (s *ContextService) Sessions(ctx context.Context, contextID, userID string, limit int) ([]*model.Session, error) {
	if _, err := s.contextRepo.GetByID(ctx, contextID, userID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.sessionRepo.ListRecentByContext(ctx, contextID, userID, limit)
}

// SessionCount returns how many sessions the context has
func (s *ContextService) SessionCount(ctx context.Context, contextID, userID string) (int64, error) {
	if _, err := s.contextRepo.GetByID(ctx, contextID, userID); err != nil {
		return 0, err
	}
	return s.sessionRepo.CountByContext(ctx, contextID, userID)
}
