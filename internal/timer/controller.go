package timer

import (
	"context"
	"log"
	"sync"
	"time"

	"focusflow/internal/model"
)

// State is the controller's lifecycle state
type State string

const (
	StateLoading    State = "loading"
	StateRunning    State = "running"
	StatePaused     State = "paused"
	StateReflecting State = "reflecting"
	StateCompleted  State = "completed"
	StateErrored    State = "errored"
)

// checkpointInterval is the cadence, in elapsed seconds, of periodic
// duration checkpoints.
const checkpointInterval = 30

// Store is the durable record store behind the controller. Every call is
// scoped to the session and user the controller was built for.
type Store interface {
	Fetch(ctx context.Context) (*model.Session, error)
	SaveDuration(ctx context.Context, seconds int) error
	SaveNotes(ctx context.Context, notes string) error
	Finalize(ctx context.Context, reflection model.ReflectionPayload, notes string, seconds int) error
}

// Flusher is the best-effort send path used on exit. Delivery is not
// acknowledged and never retried by the controller.
type Flusher interface {
	SendDuration(seconds int)
}

// Controller tracks wall-clock elapsed time for one active session,
// checkpoints it on a fixed cadence and flushes the latest value when the
// owning view goes away. The session store is the source of truth; the
// controller holds an in-memory mirror so the per-second display does not
// turn into per-second network writes.
type Controller struct {
	store   Store
	flusher Flusher

	mu                sync.Mutex
	state             State
	elapsed           int
	notes             string
	lastSavedDuration int
	lastSavedNotes    string
	loadErr           error
	session           *model.Session

	newTicker NewTickerFunc
	ticker    Ticker
	done      chan struct{}
	closeOnce sync.Once

	// spawn runs checkpoint writes off the tick path; tests swap it for a
	// synchronous runner
	spawn func(func())
}

// Option configures a Controller
type Option func(*Controller)

// WithTicker overrides the tick source
func WithTicker(f NewTickerFunc) Option {
	return func(c *Controller) { c.newTicker = f }
}

// WithSyncWrites makes checkpoint writes synchronous (used by tests)
func WithSyncWrites() Option {
	return func(c *Controller) { c.spawn = func(fn func()) { fn() } }
}

// New creates a controller in the Loading state
func New(store Store, flusher Flusher, opts ...Option) *Controller {
	c := &Controller{
		store:             store,
		flusher:           flusher,
		state:             StateLoading,
		lastSavedDuration: -1,
		newTicker:         NewRealTicker,
		done:              make(chan struct{}),
		spawn:             func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the session record and, on success, hydrates the elapsed
// counter and starts ticking. A fetch failure is terminal for this instance.
func (c *Controller) Load(ctx context.Context) error {
	session, err := c.store.Fetch(ctx)

	c.mu.Lock()
	if c.state != StateLoading {
		c.mu.Unlock()
		return c.loadErr
	}
	if err != nil {
		c.state = StateErrored
		c.loadErr = err
		c.mu.Unlock()
		return err
	}

	c.session = session
	c.elapsed = session.Duration
	c.notes = session.Notes
	c.lastSavedDuration = session.Duration
	c.lastSavedNotes = session.Notes
	c.state = StateRunning

	c.ticker = c.newTicker(time.Second)
	c.mu.Unlock()

	go c.run()
	return nil
}

func (c *Controller) run() {
	for {
		select {
		case <-c.ticker.C():
			c.Tick()
		case <-c.done:
			return
		}
	}
}

// Tick advances the elapsed counter by one second while Running and issues
// a checkpoint at every 30-second boundary not already covered. The write
// happens off the tick path; ticking never waits on store latency.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.elapsed++
	v := c.elapsed

	if v > 0 && v%checkpointInterval == 0 && c.lastSavedDuration != v {
		c.lastSavedDuration = v
		c.mu.Unlock()
		c.spawn(func() {
			if err := c.store.SaveDuration(context.Background(), v); err != nil {
				// Dropped; the next boundary or the exit flush carries a newer value
				log.Printf("duration checkpoint failed at %ds: %v", v, err)
			}
		})
		return
	}
	c.mu.Unlock()
}

// Pause freezes the counter
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.state = StatePaused
	}
}

// Resume restarts the counter
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePaused {
		c.state = StateRunning
	}
}

// EndSession freezes the timer and enters the reflection step
func (c *Controller) EndSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning || c.state == StatePaused {
		c.state = StateReflecting
	}
}

// ContinueSession abandons the reflection step. Re-enters Running
// unconditionally, even if the session was paused before ending.
func (c *Controller) ContinueSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReflecting {
		c.state = StateRunning
	}
}

// SetNotes updates the in-memory notes mirror
func (c *Controller) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = notes
}

// FlushNotes writes the notes text if it differs from the last value
// successfully checkpointed. Called on loss of input focus.
func (c *Controller) FlushNotes(ctx context.Context) error {
	c.mu.Lock()
	notes := c.notes
	if c.lastSavedNotes == notes {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.store.SaveNotes(ctx, notes); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastSavedNotes = notes
	c.mu.Unlock()
	return nil
}

// Flush sends the latest elapsed value through the best-effort path.
// Triggered on view hide and on teardown; both may fire for the same value,
// so repeated flushes are no-ops against the last checkpointed value.
func (c *Controller) Flush() {
	c.mu.Lock()
	v := c.elapsed
	if c.lastSavedDuration == v {
		c.mu.Unlock()
		return
	}
	c.lastSavedDuration = v
	c.mu.Unlock()

	c.flusher.SendDuration(v)
}

// Finalize completes the session from the Reflecting state. On store
// failure the state stays Reflecting so the same action can be retried.
func (c *Controller) Finalize(ctx context.Context, reflection model.ReflectionPayload) error {
	c.mu.Lock()
	if c.state != StateReflecting {
		c.mu.Unlock()
		return nil
	}
	notes := c.notes
	elapsed := c.elapsed
	c.mu.Unlock()

	if err := c.store.Finalize(ctx, reflection, notes, elapsed); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = StateCompleted
	c.mu.Unlock()
	c.Close()
	return nil
}

// Close deregisters the tick source. No increments or writes happen after
// Close returns, even if the underlying ticker fires again.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.ticker != nil {
			c.ticker.Stop()
		}
		if c.state == StateRunning || c.state == StatePaused || c.state == StateReflecting {
			c.state = StateCompleted
		}
		c.mu.Unlock()
	})
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Elapsed returns the in-memory elapsed seconds
func (c *Controller) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Session returns the hydrated session record, nil until Load succeeds
func (c *Controller) Session() *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Err returns the load error, if the controller is Errored
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}
