package emgnet

import "github.com/unixpickle/anydiff"

// A Cost scores a batch of network outputs against the
// desired outputs.
// The result has one component per sample.
type Cost interface {
	Cost(desired, actual anydiff.Res, batch int) anydiff.Res
}

// MSE is the mean squared error between the desired and
// actual components of each sample.
//
// Against one-hot targets this treats classification as
// regression onto the label vector.
type MSE struct{}

// Cost computes the per-sample mean squared error.
func (MSE) Cost(desired, actual anydiff.Res, batch int) anydiff.Res {
	c := actual.Output().Creator()
	diff := anydiff.Sub(desired, actual)
	cols := diff.Output().Len() / batch
	sums := anydiff.SumCols(&anydiff.Matrix{
		Data: anydiff.Square(diff),
		Rows: batch,
		Cols: cols,
	})
	return anydiff.Scale(sums, c.MakeNumeric(1/float64(cols)))
}

// DotCost is the negated dot product of the desired and
// actual outputs.
// Paired with a LogSoftmax output it is the cross-entropy.
type DotCost struct{}

// Cost computes the per-sample negative dot product.
func (DotCost) Cost(desired, actual anydiff.Res, batch int) anydiff.Res {
	prod := anydiff.Mul(desired, actual)
	dots := anydiff.SumCols(&anydiff.Matrix{
		Data: prod,
		Rows: batch,
		Cols: prod.Output().Len() / batch,
	})
	return anydiff.Scale(dots, dots.Output().Creator().MakeNumeric(-1))
}
