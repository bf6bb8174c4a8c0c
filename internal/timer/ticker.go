package timer

import "time"

// Ticker is the tick source driving a Controller. Injectable so tests can
// advance virtual time instead of waiting on the wall clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc constructs a Ticker with the given period
type NewTickerFunc func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

// NewRealTicker returns a wall-clock ticker
func NewRealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r *realTicker) Stop() {
	r.t.Stop()
}
