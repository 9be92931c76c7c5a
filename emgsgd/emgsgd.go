// Package emgsgd implements gradient descent updates,
// learning rate schedules, and sample list utilities.
package emgsgd

import "github.com/unixpickle/anydiff"

// A Transformer transforms gradients before they are
// applied, e.g. to add momentum.
//
// A Transformer may modify and return its input.
// It must not keep a reference to the input after
// Transform returns, and it expects every gradient to
// contain the same variables.
type Transformer interface {
	Transform(g anydiff.Grad) anydiff.Grad
}

// A Rater determines the learning rate for an epoch.
type Rater interface {
	Rate(epoch float64) float64
}

// A Scheduler advances a learning rate schedule by one
// epoch.
type Scheduler interface {
	Advance()
}

// Optimizer applies gradient descent steps to the
// variables in a gradient.
type Optimizer struct {
	// Rater determines the step size.
	// It must be non-nil.
	Rater Rater

	// Transformer, if non-nil, transforms each gradient
	// before it is applied.
	Transformer Transformer

	// Epoch is the schedule position passed to Rater.
	// It only changes through Advance.
	Epoch int
}

// Step moves every variable in g against its gradient.
//
// The gradient is consumed: its vectors are scaled and
// may be transformed in place.
func (o *Optimizer) Step(g anydiff.Grad) {
	if len(g) == 0 {
		return
	}
	if o.Transformer != nil {
		g = o.Transformer.Transform(g)
	}
	scaleGrad(g, -o.Rate())
	g.AddToVars()
}

// Rate returns the learning rate for the current epoch.
func (o *Optimizer) Rate() float64 {
	return o.Rater.Rate(float64(o.Epoch))
}

// Advance moves the schedule to the next epoch.
func (o *Optimizer) Advance() {
	o.Epoch++
}
