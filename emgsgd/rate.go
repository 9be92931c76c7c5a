package emgsgd

import "math"

// A ConstRater always returns the same learning rate.
type ConstRater float64

// Rate returns float64(c).
func (c ConstRater) Rate(epoch float64) float64 {
	return float64(c)
}

// StepRater decays a learning rate by Gamma every
// StepSize whole epochs.
//
// For StepSize 10 and Gamma 0.1, epochs 0 through 9 use
// Initial, epochs 10 through 19 use Initial/10, and so on.
type StepRater struct {
	Initial  float64
	StepSize int
	Gamma    float64
}

// Rate returns the decayed learning rate.
func (s *StepRater) Rate(epoch float64) float64 {
	if s.StepSize <= 0 {
		return s.Initial
	}
	steps := math.Floor(epoch / float64(s.StepSize))
	return s.Initial * math.Pow(s.Gamma, steps)
}
