package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"focusflow/internal/model"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped bool
}

func newFakeTicker(d time.Duration) Ticker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped = true }

type fakeStore struct {
	mu sync.Mutex

	session  *model.Session
	fetchErr error

	durations       []int
	saveDurationErr error

	notes []string

	finalizeErr   error
	finalizeCalls int
}

func (s *fakeStore) Fetch(ctx context.Context) (*model.Session, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.session, nil
}

func (s *fakeStore) SaveDuration(ctx context.Context, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations = append(s.durations, seconds)
	return s.saveDurationErr
}

func (s *fakeStore) SaveNotes(ctx context.Context, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, notes)
	return nil
}

func (s *fakeStore) Finalize(ctx context.Context, reflection model.ReflectionPayload, notes string, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizeCalls++
	return s.finalizeErr
}

func (s *fakeStore) savedDurations() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.durations))
	copy(out, s.durations)
	return out
}

type fakeFlusher struct {
	mu   sync.Mutex
	sent []int
}

func (f *fakeFlusher) SendDuration(seconds int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, seconds)
}

func (f *fakeFlusher) sentDurations() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestController(t *testing.T, store *fakeStore, flusher *fakeFlusher) *Controller {
	t.Helper()
	if store.session == nil && store.fetchErr == nil {
		store.session = &model.Session{ID: "s1", UserID: "u1", Duration: 0}
	}
	c := New(store, flusher, WithTicker(newFakeTicker), WithSyncWrites())
	if store.fetchErr == nil {
		if err := c.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	return c
}

func tickN(c *Controller, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

func TestLoadHydratesElapsedFromStore(t *testing.T) {
	store := &fakeStore{session: &model.Session{ID: "s1", UserID: "u1", Duration: 120, Notes: "carry"}}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	if got := c.State(); got != StateRunning {
		t.Fatalf("state = %s, want %s", got, StateRunning)
	}
	if got := c.Elapsed(); got != 120 {
		t.Fatalf("elapsed = %d, want 120", got)
	}
}

func TestLoadFailureIsTerminal(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("boom")}
	c := New(store, &fakeFlusher{}, WithTicker(newFakeTicker), WithSyncWrites())

	if err := c.Load(context.Background()); err == nil {
		t.Fatal("Load should fail")
	}
	if got := c.State(); got != StateErrored {
		t.Fatalf("state = %s, want %s", got, StateErrored)
	}

	c.Tick()
	if got := c.Elapsed(); got != 0 {
		t.Fatalf("elapsed after tick in errored state = %d, want 0", got)
	}
}

func TestPausedTicksDoNotCount(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	tickN(c, 5)
	c.Pause()
	tickN(c, 7)
	c.Resume()
	tickN(c, 3)

	if got := c.Elapsed(); got != 8 {
		t.Fatalf("elapsed = %d, want 8", got)
	}
}

func TestCheckpointOncePerBoundary(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	// Past 30 and 60 with pause/resume noise in between
	tickN(c, 30)
	c.Pause()
	tickN(c, 10)
	c.Resume()
	tickN(c, 30)
	tickN(c, 35) // past 90, now at 95

	want := []int{30, 60, 90}
	got := store.savedDurations()
	if len(got) != len(want) {
		t.Fatalf("checkpoints = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("checkpoints = %v, want %v", got, want)
		}
	}
}

func TestHydratedBoundaryNotRecheckpointed(t *testing.T) {
	store := &fakeStore{session: &model.Session{ID: "s1", UserID: "u1", Duration: 30}}
	flusher := &fakeFlusher{}
	c := newTestController(t, store, flusher)
	defer c.Close()

	// The hydrated value counts as already checkpointed
	c.Flush()
	if got := flusher.sentDurations(); len(got) != 0 {
		t.Fatalf("flush after hydrate sent %v, want none", got)
	}

	tickN(c, 30) // to 60
	got := store.savedDurations()
	if len(got) != 1 || got[0] != 60 {
		t.Fatalf("checkpoints = %v, want [60]", got)
	}
}

func TestExitFlushWriteIfChanged(t *testing.T) {
	store := &fakeStore{}
	flusher := &fakeFlusher{}
	c := newTestController(t, store, flusher)
	defer c.Close()

	// Stop between boundaries: flush carries the exact value once
	tickN(c, 47)
	c.Flush()
	c.Flush() // hide-then-unload firing redundantly

	got := flusher.sentDurations()
	if len(got) != 1 || got[0] != 47 {
		t.Fatalf("flushed %v, want [47]", got)
	}
}

func TestExitFlushSkippedWhenCheckpointCoveredValue(t *testing.T) {
	store := &fakeStore{}
	flusher := &fakeFlusher{}
	c := newTestController(t, store, flusher)
	defer c.Close()

	tickN(c, 60)
	c.Flush()

	if got := flusher.sentDurations(); len(got) != 0 {
		t.Fatalf("flushed %v, want none", got)
	}
}

func TestFailedCheckpointIsCoveredByExitFlush(t *testing.T) {
	store := &fakeStore{saveDurationErr: errors.New("network down")}
	flusher := &fakeFlusher{}
	c := newTestController(t, store, flusher)
	defer c.Close()

	tickN(c, 30) // checkpoint attempted and dropped
	if got := store.savedDurations(); len(got) != 1 {
		t.Fatalf("checkpoint attempts = %v, want one", got)
	}

	tickN(c, 17)
	c.Flush()
	if got := flusher.sentDurations(); len(got) != 1 || got[0] != 47 {
		t.Fatalf("flushed %v, want [47]", got)
	}
}

func TestEndSessionFreezesTimer(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	tickN(c, 10)
	c.EndSession()
	if got := c.State(); got != StateReflecting {
		t.Fatalf("state = %s, want %s", got, StateReflecting)
	}

	tickN(c, 5)
	if got := c.Elapsed(); got != 10 {
		t.Fatalf("elapsed = %d, want 10", got)
	}

	// Continue re-enters Running, never Paused
	c.ContinueSession()
	if got := c.State(); got != StateRunning {
		t.Fatalf("state = %s, want %s", got, StateRunning)
	}
	tickN(c, 2)
	if got := c.Elapsed(); got != 12 {
		t.Fatalf("elapsed = %d, want 12", got)
	}
}

func TestContinueAfterPauseThenEndReEntersRunning(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	tickN(c, 3)
	c.Pause()
	c.EndSession()
	c.ContinueSession()

	if got := c.State(); got != StateRunning {
		t.Fatalf("state = %s, want %s", got, StateRunning)
	}
}

func TestFinalizeRetryAfterFailure(t *testing.T) {
	store := &fakeStore{finalizeErr: errors.New("store down")}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	tickN(c, 12)
	c.EndSession()

	if err := c.Finalize(context.Background(), model.ReflectionPayload{WhatWentWell: "focus"}); err == nil {
		t.Fatal("Finalize should fail")
	}
	if got := c.State(); got != StateReflecting {
		t.Fatalf("state after failed finalize = %s, want %s", got, StateReflecting)
	}

	store.finalizeErr = nil
	if err := c.Finalize(context.Background(), model.ReflectionPayload{WhatWentWell: "focus"}); err != nil {
		t.Fatalf("Finalize retry: %v", err)
	}
	if got := c.State(); got != StateCompleted {
		t.Fatalf("state = %s, want %s", got, StateCompleted)
	}
	if store.finalizeCalls != 2 {
		t.Fatalf("finalize calls = %d, want 2", store.finalizeCalls)
	}
}

func TestFinalizeIgnoredOutsideReflecting(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	if err := c.Finalize(context.Background(), model.ReflectionPayload{}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if store.finalizeCalls != 0 {
		t.Fatalf("finalize calls = %d, want 0", store.finalizeCalls)
	}
}

func TestNotesFlushWriteIfChanged(t *testing.T) {
	store := &fakeStore{session: &model.Session{ID: "s1", UserID: "u1", Notes: "initial"}}
	c := newTestController(t, store, &fakeFlusher{})
	defer c.Close()

	// Unchanged notes are not written on blur
	if err := c.FlushNotes(context.Background()); err != nil {
		t.Fatalf("FlushNotes: %v", err)
	}
	if len(store.notes) != 0 {
		t.Fatalf("notes writes = %v, want none", store.notes)
	}

	c.SetNotes("did the thing")
	if err := c.FlushNotes(context.Background()); err != nil {
		t.Fatalf("FlushNotes: %v", err)
	}
	if err := c.FlushNotes(context.Background()); err != nil {
		t.Fatalf("FlushNotes: %v", err)
	}
	if len(store.notes) != 1 || store.notes[0] != "did the thing" {
		t.Fatalf("notes writes = %v, want one", store.notes)
	}
}

func TestCloseStopsTicksAndWrites(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store, &fakeFlusher{})

	tickN(c, 29)
	c.Close()

	// The tick source may still fire after teardown; it must be a no-op
	tickN(c, 10)
	if got := c.Elapsed(); got != 29 {
		t.Fatalf("elapsed after close = %d, want 29", got)
	}
	if got := store.savedDurations(); len(got) != 0 {
		t.Fatalf("checkpoints after close = %v, want none", got)
	}
}
