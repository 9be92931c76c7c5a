package emgsgd

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

const (
	rmspropDefaultDecayRate = 0.9
	rmspropDefaultDamping   = 1e-8
)

// RMSProp divides each gradient component by a running
// root mean square of its recent values.
//
// Zero fields use a decay rate of 0.9 and a damping term
// of 1e-8.
type RMSProp struct {
	DecayRate float64
	Damping   float64

	meanSquare anydiff.Grad
}

// Transform replaces g with the normalized gradient.
//
// This is not thread-safe.
func (r *RMSProp) Transform(g anydiff.Grad) anydiff.Grad {
	decay := valueOrDefault(r.DecayRate, rmspropDefaultDecayRate)
	damping := valueOrDefault(r.Damping, rmspropDefaultDamping)

	first := r.meanSquare == nil
	if first {
		r.meanSquare = zeroGrad(g)
	}
	for v, vec := range g {
		sq := vec.Copy()
		anyvec.Pow(sq, sq.Creator().MakeNumeric(2))
		ms := r.meanSquare[v]
		if first {
			ms.Set(sq)
		} else {
			ms.Scale(ms.Creator().MakeNumeric(decay))
			sq.Scale(sq.Creator().MakeNumeric(1 - decay))
			ms.Add(sq)
		}

		divisor := ms.Copy()
		divisor.AddScalar(divisor.Creator().MakeNumeric(damping))
		anyvec.Pow(divisor, divisor.Creator().MakeNumeric(0.5))
		vec.Div(divisor)
	}
	return g
}
