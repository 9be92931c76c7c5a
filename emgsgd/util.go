package emgsgd

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
)

// A SampleList is an ordered, swappable list of samples.
type SampleList interface {
	Len() int
	Swap(i, j int)

	// Slice returns a shallow copy of a sub-range.
	Slice(i, j int) SampleList
}

// Shuffle shuffles a list of samples.
// If gen is nil, the global source is used.
func Shuffle(gen *rand.Rand, s SampleList) {
	intn := rand.Intn
	if gen != nil {
		intn = gen.Intn
	}
	for i := 0; i < s.Len(); i++ {
		j := i + intn(s.Len()-i)
		s.Swap(i, j)
	}
}

func copyGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for v, vec := range g {
		res[v] = vec.Copy()
	}
	return res
}

func zeroGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for v, vec := range g {
		res[v] = vec.Creator().MakeVector(vec.Len())
	}
	return res
}

func scaleGrad(g anydiff.Grad, s float64) {
	for _, vec := range g {
		g.Scale(vec.Creator().MakeNumeric(s))
		return
	}
}

func valueOrDefault(value, def float64) float64 {
	if value == 0 {
		return def
	}
	return value
}
