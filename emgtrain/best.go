package emgtrain

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/emgnet"
)

// Best records the lowest loss seen during training and
// a copy of the weights that produced it.
type Best struct {
	Loss     float64
	Accuracy float64
	Epoch    int

	// Weights is owned by the Best and never aliases the
	// live parameters.
	Weights *emgnet.Snapshot
}

// NewBest creates a Best with an infinite loss, holding a
// copy of the initial parameters.
func NewBest(params []*anydiff.Var) *Best {
	return &Best{
		Loss:    math.Inf(1),
		Weights: emgnet.TakeSnapshot(params),
	}
}

// Consider replaces the record if loss is strictly lower
// than the current best.
// It reports whether the record was replaced.
func (b *Best) Consider(loss, accuracy float64, epoch int, params []*anydiff.Var) bool {
	if !(loss < b.Loss) {
		return false
	}
	b.Loss = loss
	b.Accuracy = accuracy
	b.Epoch = epoch
	b.Weights = emgnet.TakeSnapshot(params)
	return true
}
