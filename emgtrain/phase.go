// Package emgtrain runs training and evaluation epochs
// for sEMG classifiers and keeps the best weights seen.
package emgtrain

import "fmt"

// A Phase is a pass over a split of the data.
type Phase int

const (
	// Train updates the parameters after every sample.
	Train Phase = iota

	// Eval only measures; parameters are left untouched.
	Eval
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case Train:
		return "Train"
	case Eval:
		return "Eval"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
