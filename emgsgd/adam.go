package emgsgd

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

const (
	adamDefaultDecayRate1 = 0.9
	adamDefaultDecayRate2 = 0.999
	adamDefaultDamping    = 1e-8
)

// Adam implements adaptive moment estimation, see
// https://arxiv.org/abs/1412.6980.
//
// Zero fields use the defaults from the paper.
type Adam struct {
	DecayRate1 float64
	DecayRate2 float64
	Damping    float64

	first  anydiff.Grad
	second anydiff.Grad
	steps  float64
}

// Transform replaces g with the bias-corrected moment
// ratio.
//
// This is not thread-safe.
func (a *Adam) Transform(g anydiff.Grad) anydiff.Grad {
	d1 := valueOrDefault(a.DecayRate1, adamDefaultDecayRate1)
	d2 := valueOrDefault(a.DecayRate2, adamDefaultDecayRate2)
	damping := valueOrDefault(a.Damping, adamDefaultDamping)

	if a.first == nil {
		a.first = zeroGrad(g)
		a.second = zeroGrad(g)
	}
	for v, vec := range g {
		first := a.first[v]
		first.Scale(first.Creator().MakeNumeric(d1))
		scaled := vec.Copy()
		scaled.Scale(vec.Creator().MakeNumeric(1 - d1))
		first.Add(scaled)

		second := a.second[v]
		second.Scale(second.Creator().MakeNumeric(d2))
		sq := vec.Copy()
		anyvec.Pow(sq, sq.Creator().MakeNumeric(2))
		sq.Scale(sq.Creator().MakeNumeric(1 - d2))
		second.Add(sq)
	}

	a.steps++
	correction := math.Sqrt(1-math.Pow(d2, a.steps)) / (1 - math.Pow(d1, a.steps))
	for v, vec := range g {
		vec.Set(a.first[v])
		vec.Scale(vec.Creator().MakeNumeric(correction))
		divisor := a.second[v].Copy()
		anyvec.Pow(divisor, divisor.Creator().MakeNumeric(0.5))
		divisor.AddScalar(divisor.Creator().MakeNumeric(damping))
		vec.Div(divisor)
	}
	return g
}
