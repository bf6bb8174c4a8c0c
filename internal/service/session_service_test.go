package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"focusflow/internal/model"
	"focusflow/internal/repository"
)

type mockSessionRepo struct {
	CreateFunc              func(ctx context.Context, session *model.Session) (string, error)
	GetByIDFunc             func(ctx context.Context, id, userID string) (*model.Session, error)
	UpdateNotesFunc         func(ctx context.Context, id, userID, notes string) (*model.Session, error)
	UpdateDurationFunc      func(ctx context.Context, id, userID string, duration int) (*model.Session, error)
	FinalizeFunc            func(ctx context.Context, id, userID, notes string, duration int, finishedAt time.Time, reflectionID string) (*model.Session, error)
	ListRecentByContextFunc func(ctx context.Context, contextID, userID string, limit int) ([]*model.Session, error)
	CountByContextFunc      func(ctx context.Context, contextID, userID string) (int64, error)

	finalizeCalls int
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return "s1", nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id, userID string) (*model.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return &model.Session{ID: id, UserID: userID, ContextID: "c1"}, nil
}

func (m *mockSessionRepo) UpdateNotes(ctx context.Context, id, userID, notes string) (*model.Session, error) {
	if m.UpdateNotesFunc != nil {
		return m.UpdateNotesFunc(ctx, id, userID, notes)
	}
	return &model.Session{ID: id, UserID: userID, ContextID: "c1", Notes: notes}, nil
}

func (m *mockSessionRepo) UpdateDuration(ctx context.Context, id, userID string, duration int) (*model.Session, error) {
	if m.UpdateDurationFunc != nil {
		return m.UpdateDurationFunc(ctx, id, userID, duration)
	}
	return &model.Session{ID: id, UserID: userID, ContextID: "c1", Duration: duration}, nil
}

func (m *mockSessionRepo) Finalize(ctx context.Context, id, userID, notes string, duration int, finishedAt time.Time, reflectionID string) (*model.Session, error) {
	m.finalizeCalls++
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx, id, userID, notes, duration, finishedAt, reflectionID)
	}
	return &model.Session{
		ID: id, UserID: userID, ContextID: "c1",
		Notes: notes, Duration: duration,
		FinishedAt: &finishedAt, ReflectionID: reflectionID,
	}, nil
}

func (m *mockSessionRepo) ListRecentByContext(ctx context.Context, contextID, userID string, limit int) ([]*model.Session, error) {
	if m.ListRecentByContextFunc != nil {
		return m.ListRecentByContextFunc(ctx, contextID, userID, limit)
	}
	return nil, nil
}

func (m *mockSessionRepo) CountByContext(ctx context.Context, contextID, userID string) (int64, error) {
	if m.CountByContextFunc != nil {
		return m.CountByContextFunc(ctx, contextID, userID)
	}
	return 0, nil
}

type mockReflectionRepo struct {
	CreateFunc func(ctx context.Context, reflection *model.Reflection) (string, error)

	createCalls int
}

func (m *mockReflectionRepo) Create(ctx context.Context, reflection *model.Reflection) (string, error) {
	m.createCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reflection)
	}
	return "r1", nil
}

func (m *mockReflectionRepo) GetByID(ctx context.Context, id, userID string) (*model.Reflection, error) {
	return &model.Reflection{ID: id, UserID: userID}, nil
}

type mockContextRepo struct {
	GetByIDFunc func(ctx context.Context, id, userID string) (*model.Context, error)

	touches int
}

func (m *mockContextRepo) Create(ctx context.Context, c *model.Context) (string, error) {
	return "c1", nil
}

func (m *mockContextRepo) GetByID(ctx context.Context, id, userID string) (*model.Context, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return &model.Context{ID: id, UserID: userID, Title: "deep work"}, nil
}

func (m *mockContextRepo) ListByUser(ctx context.Context, userID string) ([]*model.Context, error) {
	return nil, nil
}

func (m *mockContextRepo) Update(ctx context.Context, id, userID, title, description string) (*model.Context, error) {
	return nil, nil
}

func (m *mockContextRepo) Touch(ctx context.Context, id, userID string) error {
	m.touches++
	return nil
}

// noopCache always misses; writes are accepted and dropped
type noopCache struct{}

func (noopCache) Set(ctx context.Context, session *model.Session) error { return nil }
func (noopCache) Get(ctx context.Context, id string) (*model.Session, error) {
	return nil, errors.New("cache miss")
}
func (noopCache) Delete(ctx context.Context, id string) error { return nil }

func newTestSessionService(sessions *mockSessionRepo, reflections *mockReflectionRepo, contexts *mockContextRepo) *SessionService {
	return NewSessionService(sessions, reflections, contexts, noopCache{})
}

func TestCompleteNeverFinalizesWithoutReflection(t *testing.T) {
	sessions := &mockSessionRepo{}
	reflections := &mockReflectionRepo{
		CreateFunc: func(ctx context.Context, reflection *model.Reflection) (string, error) {
			return "", errors.New("reflection store down")
		},
	}
	svc := newTestSessionService(sessions, reflections, &mockContextRepo{})

	_, err := svc.Complete(context.Background(), "s1", "u1", model.ReflectionPayload{}, "notes", 47)
	if err == nil {
		t.Fatal("Complete should fail when the reflection create fails")
	}
	if sessions.finalizeCalls != 0 {
		t.Fatalf("session finalize attempted %d times, want 0", sessions.finalizeCalls)
	}
}

func TestCompleteFinalizeFailureLeavesRetryPossible(t *testing.T) {
	finalizeErr := errors.New("session store down")
	sessions := &mockSessionRepo{
		FinalizeFunc: func(ctx context.Context, id, userID, notes string, duration int, finishedAt time.Time, reflectionID string) (*model.Session, error) {
			return nil, finalizeErr
		},
	}
	reflections := &mockReflectionRepo{}
	svc := newTestSessionService(sessions, reflections, &mockContextRepo{})

	_, err := svc.Complete(context.Background(), "s1", "u1", model.ReflectionPayload{}, "notes", 47)
	if !errors.Is(err, finalizeErr) {
		t.Fatalf("err = %v, want %v", err, finalizeErr)
	}
	if reflections.createCalls != 1 {
		t.Fatalf("reflection creates = %d, want 1", reflections.createCalls)
	}

	// The orphaned reflection is accepted; the same action can be retried
	sessions.FinalizeFunc = nil
	summary, err := svc.Complete(context.Background(), "s1", "u1", model.ReflectionPayload{}, "notes", 47)
	if err != nil {
		t.Fatalf("Complete retry: %v", err)
	}
	if summary.Session.ReflectionID == "" || summary.Session.FinishedAt == nil {
		t.Fatal("finalized session missing reflection reference or finish timestamp")
	}
}

func TestCompleteRejectsFinishedSession(t *testing.T) {
	finished := time.Now()
	sessions := &mockSessionRepo{
		GetByIDFunc: func(ctx context.Context, id, userID string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: userID, FinishedAt: &finished, ReflectionID: "r1"}, nil
		},
	}
	svc := newTestSessionService(sessions, &mockReflectionRepo{}, &mockContextRepo{})

	_, err := svc.Complete(context.Background(), "s1", "u1", model.ReflectionPayload{}, "", 10)
	if err != ErrSessionCompleted {
		t.Fatalf("err = %v, want %v", err, ErrSessionCompleted)
	}
}

func TestSaveDurationClampsAndTouchesContext(t *testing.T) {
	var stored int
	sessions := &mockSessionRepo{
		UpdateDurationFunc: func(ctx context.Context, id, userID string, duration int) (*model.Session, error) {
			stored = duration
			return &model.Session{ID: id, UserID: userID, ContextID: "c1", Duration: duration}, nil
		},
	}
	contexts := &mockContextRepo{}
	svc := newTestSessionService(sessions, &mockReflectionRepo{}, contexts)

	if _, err := svc.SaveDuration(context.Background(), "s1", "u1", -5); err != nil {
		t.Fatalf("SaveDuration: %v", err)
	}
	if stored != 0 {
		t.Fatalf("stored = %d, want 0", stored)
	}
	if contexts.touches != 1 {
		t.Fatalf("context touches = %d, want 1", contexts.touches)
	}
}

func TestSaveDurationScopedToOwner(t *testing.T) {
	sessions := &mockSessionRepo{
		UpdateDurationFunc: func(ctx context.Context, id, userID string, duration int) (*model.Session, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := newTestSessionService(sessions, &mockReflectionRepo{}, &mockContextRepo{})

	_, err := svc.SaveDuration(context.Background(), "s1", "someone-else", 30)
	if err != repository.ErrNotFound {
		t.Fatalf("err = %v, want %v", err, repository.ErrNotFound)
	}
}
