package service

import (
	"context"
	"errors"
	"log"
	"time"

	"focusflow/internal/cache"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

var ErrSessionCompleted = errors.New("session is already completed")

// DurationPublisher receives checkpointed duration updates for live feeds
type DurationPublisher interface {
	PublishDuration(sessionID string, duration int)
}

// SessionService handles the session lifecycle: create, checkpoint
// writes from the timer, and the finalize flow.
type SessionService struct {
	sessionRepo    repository.SessionRepo
	reflectionRepo repository.ReflectionRepo
	contextRepo    repository.ContextRepo
	sessionCache   cache.SessionCache
	publisher      DurationPublisher
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	reflectionRepo repository.ReflectionRepo,
	contextRepo repository.ContextRepo,
	sessionCache cache.SessionCache,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		reflectionRepo: reflectionRepo,
		contextRepo:    contextRepo,
		sessionCache:   sessionCache,
	}
}

// SetPublisher wires a live-feed publisher for duration checkpoints
func (s *SessionService) SetPublisher(p DurationPublisher) {
	s.publisher = p
}

// Create starts a new session in a context with duration 0
func (s *SessionService) Create(ctx context.Context, userID, contextID, intention string) (*model.Session, error) {
	if _, err := s.contextRepo.GetByID(ctx, contextID, userID); err != nil {
		return nil, err
	}

	session := &model.Session{
		UserID:    userID,
		ContextID: contextID,
		Intention: intention,
		Duration:  0,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id

	if err := s.contextRepo.Touch(ctx, contextID, userID); err != nil {
		log.Printf("context touch failed for %s: %v", contextID, err)
	}
	return session, nil
}

// Get fetches a session, read-through via the cache
func (s *SessionService) Get(ctx context.Context, id, userID string) (*model.Session, error) {
	if cached, err := s.sessionCache.Get(ctx, id); err == nil && cached != nil {
		// Ownership still checked against the cached record
		if cached.UserID != userID {
			return nil, repository.ErrNotFound
		}
		return cached, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("session cache set failed for %s: %v", id, err)
	}
	return session, nil
}

// SaveNotes persists the notes text and bumps the session's updated timestamp
func (s *SessionService) SaveNotes(ctx context.Context, id, userID, notes string) (*model.Session, error) {
	session, err := s.sessionRepo.UpdateNotes(ctx, id, userID, notes)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return session, nil
}

// SaveDuration persists a checkpointed elapsed value. The stored value is
// whatever arrived last; no monotonicity guard (last write wins).
func (s *SessionService) SaveDuration(ctx context.Context, id, userID string, duration int) (*model.Session, error) {
	if duration < 0 {
		duration = 0
	}

	session, err := s.sessionRepo.UpdateDuration(ctx, id, userID, duration)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	// The owning context's activity timestamp follows the session's
	if err := s.contextRepo.Touch(ctx, session.ContextID, userID); err != nil {
		log.Printf("context touch failed for %s: %v", session.ContextID, err)
	}

	if s.publisher != nil {
		s.publisher.PublishDuration(id, session.Duration)
	}
	return session, nil
}

// Complete finalizes a session. The reflection must be stored first; the
// session is never finalized without an attached reflection. A reflection
// left orphaned by a failed finalize patch is accepted.
func (s *SessionService) Complete(ctx context.Context, id, userID string, payload model.ReflectionPayload, notes string, duration int) (*model.SessionSummary, error) {
	session, err := s.sessionRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, ErrSessionCompleted
	}
	if duration < 0 {
		duration = 0
	}

	reflection := &model.Reflection{
		UserID:     userID,
		SessionID:  id,
		Reflection: payload,
	}
	reflectionID, err := s.reflectionRepo.Create(ctx, reflection)
	if err != nil {
		return nil, err
	}
	reflection.ID = reflectionID

	finalized, err := s.sessionRepo.Finalize(ctx, id, userID, notes, duration, time.Now(), reflectionID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	if err := s.contextRepo.Touch(ctx, session.ContextID, userID); err != nil {
		log.Printf("context touch failed for %s: %v", session.ContextID, err)
	}

	return &model.SessionSummary{Session: finalized, Reflection: reflection}, nil
}

// Summary returns a session together with its reflection, if completed
func (s *SessionService) Summary(ctx context.Context, id, userID string) (*model.SessionSummary, error) {
	session, err := s.sessionRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	summary := &model.SessionSummary{Session: session}
	if session.ReflectionID != "" {
		reflection, err := s.reflectionRepo.GetByID(ctx, session.ReflectionID, userID)
		if err == nil {
			summary.Reflection = reflection
		}
	}
	return summary, nil
}

func (s *SessionService) invalidate(ctx context.Context, id string) {
	if err := s.sessionCache.Delete(ctx, id); err != nil {
		log.Printf("session cache delete failed for %s: %v", id, err)
	}
}
