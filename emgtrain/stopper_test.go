package emgtrain

import (
	"math"
	"testing"
)

func stopIndex(e *EarlyStopper, losses []float64) int {
	for i, loss := range losses {
		if e.Observe(loss) {
			return i
		}
	}
	return -1
}

func TestEarlyStopperStalls(t *testing.T) {
	losses := []float64{10, 9, 8.9995, 8.9994, 8.9993, 5}
	if idx := stopIndex(NewEarlyStopper(), losses); idx != 4 {
		t.Errorf("expected stop at index 4 but got %d", idx)
	}
}

func TestEarlyStopperResetsOnImprovement(t *testing.T) {
	losses := []float64{10, 10, 10, 9, 9, 9, 9}
	if idx := stopIndex(NewEarlyStopper(), losses); idx != 6 {
		t.Errorf("expected stop at index 6 but got %d", idx)
	}
}

func TestEarlyStopperIncreasingLoss(t *testing.T) {
	losses := []float64{1, 2, 3, 4}
	if idx := stopIndex(NewEarlyStopper(), losses); idx != 3 {
		t.Errorf("expected stop at index 3 but got %d", idx)
	}
}

func TestEarlyStopperNaN(t *testing.T) {
	losses := []float64{1, math.NaN(), math.NaN(), math.NaN()}
	if idx := stopIndex(NewEarlyStopper(), losses); idx != 3 {
		t.Errorf("expected stop at index 3 but got %d", idx)
	}
}

func TestEarlyStopperImproving(t *testing.T) {
	losses := []float64{10, 9, 8, 7, 6, 5, 4, 3}
	if idx := stopIndex(NewEarlyStopper(), losses); idx != -1 {
		t.Errorf("unexpected stop at index %d", idx)
	}
}

func TestEarlyStopperDisabled(t *testing.T) {
	e := &EarlyStopper{Threshold: 1}
	if idx := stopIndex(e, []float64{1, 1, 1, 1, 1, 1}); idx != -1 {
		t.Errorf("unexpected stop at index %d", idx)
	}
}

func TestEarlyStopperReset(t *testing.T) {
	e := NewEarlyStopper()
	stopIndex(e, []float64{1, 1, 1})
	e.Reset()
	if idx := stopIndex(e, []float64{1, 1, 1}); idx != -1 {
		t.Errorf("stall count survived Reset (stopped at %d)", idx)
	}
}
