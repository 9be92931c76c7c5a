package emgdata

import (
	"context"
	"fmt"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
)

// An Example is a Sample converted into network tensors.
type Example struct {
	// Input is a tensor of height Channels, width Width,
	// and depth 1.
	Input anyvec.Vector

	// Target is the one-hot encoding of Label.
	Target anyvec.Vector

	Label int
}

// Examples is an ordered list of vectorized samples.
type Examples []*Example

// Vectorize converts both splits into Examples using the
// creator c, which decides the numeric type and backend
// of every tensor.
//
// If norm is non-nil, the readings are standardized.
// The splits are converted concurrently; the first error
// cancels the other conversion.
func (d *Dataset) Vectorize(ctx context.Context, c anyvec.Creator,
	norm *Normalization) (train, eval Examples, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		train, err = vectorizeSplit(ctx, c, d.Train, d.NumClasses, norm)
		return essentials.AddCtx("vectorize train split", err)
	})
	g.Go(func() error {
		var err error
		eval, err = vectorizeSplit(ctx, c, d.Eval, d.NumClasses, norm)
		return essentials.AddCtx("vectorize eval split", err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return train, eval, nil
}

func vectorizeSplit(ctx context.Context, c anyvec.Creator, s Split, numClasses int,
	norm *Normalization) (Examples, error) {
	res := make(Examples, len(s))
	for i, sample := range s {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ex, err := vectorizeSample(c, sample, numClasses, norm)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %s", i, err)
		}
		res[i] = ex
	}
	return res, nil
}

func vectorizeSample(c anyvec.Creator, s *Sample, numClasses int,
	norm *Normalization) (*Example, error) {
	if err := s.checkSize(); err != nil {
		return nil, err
	}
	if s.Label < 0 || s.Label >= numClasses {
		return nil, fmt.Errorf("label %d out of range [0, %d)", s.Label, numClasses)
	}
	data := s.Data
	if norm != nil {
		var err error
		if data, err = norm.Apply(s); err != nil {
			return nil, err
		}
	}
	oneHot := make([]float64, numClasses)
	oneHot[s.Label] = 1
	return &Example{
		Input:  c.MakeVectorData(c.MakeNumericList(data)),
		Target: c.MakeVectorData(c.MakeNumericList(oneHot)),
		Label:  s.Label,
	}, nil
}
