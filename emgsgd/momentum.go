package emgsgd

import "github.com/unixpickle/anydiff"

// Momentum accumulates a velocity across steps:
//
//     v := Momentum*v + grad
//
// The velocity is what gets applied.
type Momentum struct {
	Momentum float64

	velocity anydiff.Grad
}

// Transform replaces g with the updated velocity.
//
// This is not thread-safe.
func (m *Momentum) Transform(g anydiff.Grad) anydiff.Grad {
	if m.velocity == nil {
		m.velocity = copyGrad(g)
		return g
	}
	decay := m.Momentum
	for v, vel := range m.velocity {
		vel.Scale(vel.Creator().MakeNumeric(decay))
		vel.Add(g[v])
		g[v].Set(vel)
	}
	return g
}
