package emgtrain

const (
	DefaultStopThreshold = 1e-3
	DefaultStopPatience  = 3
)

// An EarlyStopper ends training once the loss stalls.
//
// An epoch stalls when its loss is not more than
// Threshold below the previous epoch's loss; a NaN loss
// always stalls.
// Training stops after Patience consecutive stalls.
// A Patience of 0 never stops.
type EarlyStopper struct {
	Threshold float64
	Patience  int

	prev    float64
	started bool
	stalled int
}

// NewEarlyStopper creates an EarlyStopper with the
// default threshold and patience.
func NewEarlyStopper() *EarlyStopper {
	return &EarlyStopper{
		Threshold: DefaultStopThreshold,
		Patience:  DefaultStopPatience,
	}
}

// Observe records an epoch's loss and reports whether
// training should stop.
func (e *EarlyStopper) Observe(loss float64) bool {
	if e.started && !(e.prev-loss > e.Threshold) {
		e.stalled++
	} else {
		e.stalled = 0
	}
	e.prev = loss
	e.started = true
	return e.Patience > 0 && e.stalled >= e.Patience
}

// Reset forgets every observed loss.
func (e *EarlyStopper) Reset() {
	e.prev = 0
	e.started = false
	e.stalled = 0
}
