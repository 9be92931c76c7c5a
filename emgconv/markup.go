package emgconv

import (
	"fmt"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/convmarkup"
	"github.com/unixpickle/emgnet"
	"github.com/unixpickle/essentials"
)

// FromMarkup creates a network from a convmarkup
// description, such as the one produced by Markup.
//
// See https://github.com/unixpickle/convmarkup for the
// format.
// Supported blocks are Input, Conv, MaxPool, FC, ReLU,
// Tanh, Sigmoid, Softmax, Dropout, and Repeat.
func FromMarkup(c anyvec.Creator, code string) (emgnet.Net, error) {
	parsed, err := convmarkup.Parse(code)
	if err != nil {
		return nil, essentials.AddCtx("parse markup", err)
	}
	block, err := parsed.Block(convmarkup.Dims{}, convmarkup.DefaultCreators())
	if err != nil {
		return nil, essentials.AddCtx("make markup block", err)
	}
	chain := convmarkup.RealizerChain{convmarkup.MetaRealizer{}, Realizer(c)}
	instance, _, err := chain.Realize(convmarkup.Dims{}, block)
	if err != nil {
		return nil, essentials.AddCtx("realize markup block", err)
	}
	net, ok := instance.(emgnet.Net)
	if !ok {
		return nil, fmt.Errorf("realize markup block: not an emgnet.Net: %T", instance)
	}
	return net, nil
}

// Realizer creates a convmarkup.Realizer that produces
// emgnet layers.
// It is meant to follow a convmarkup.MetaRealizer in a
// convmarkup.RealizerChain.
func Realizer(c anyvec.Creator) convmarkup.Realizer {
	return &realizer{creator: c}
}

type realizer struct {
	creator anyvec.Creator
}

func (r *realizer) Realize(chain convmarkup.RealizerChain, inDims convmarkup.Dims,
	b convmarkup.Block) (interface{}, error) {
	switch b := b.(type) {
	case *convmarkup.Root:
		return r.net(chain, inDims, b.Children)
	case *convmarkup.Conv:
		return r.conv(inDims, b), nil
	case *convmarkup.Pool:
		return r.pool(inDims, b)
	case *convmarkup.FC:
		return emgnet.NewFC(r.creator, inDims.Volume(), b.OutCount), nil
	case *convmarkup.Activation:
		return r.activation(b)
	case *convmarkup.Dropout:
		return &emgnet.Dropout{KeepProb: b.Prob}, nil
	default:
		return nil, convmarkup.ErrUnsupportedBlock
	}
}

func (r *realizer) net(chain convmarkup.RealizerChain, inDims convmarkup.Dims,
	children []convmarkup.Block) (emgnet.Net, error) {
	var res emgnet.Net
	for _, b := range children {
		// Repeats are flattened so SetTraining and
		// Parameters see one level of layers.
		if rep, ok := b.(*convmarkup.Repeat); ok {
			for i := 0; i < rep.N; i++ {
				sub, err := r.net(chain, inDims, rep.Children)
				if err != nil {
					return nil, err
				}
				res = append(res, sub...)
			}
			inDims = b.OutDims()
			continue
		}
		obj, _, err := chain.Realize(inDims, b)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			layer, ok := obj.(emgnet.Layer)
			if !ok {
				return nil, fmt.Errorf("not an emgnet.Layer: %T", obj)
			}
			res = append(res, layer)
		}
		inDims = b.OutDims()
	}
	return res, nil
}

func (r *realizer) conv(d convmarkup.Dims, b *convmarkup.Conv) *Conv {
	res := &Conv{
		FilterCount:  b.FilterCount,
		FilterWidth:  b.FilterWidth,
		FilterHeight: b.FilterHeight,
		StrideX:      b.StrideX,
		StrideY:      b.StrideY,
		InputWidth:   d.Width,
		InputHeight:  d.Height,
		InputDepth:   d.Depth,
	}
	res.InitRand(r.creator)
	return res
}

func (r *realizer) pool(d convmarkup.Dims, b *convmarkup.Pool) (emgnet.Layer, error) {
	if b.Name != "MaxPool" {
		return nil, fmt.Errorf("unsupported pooling: %s", b.Name)
	}
	return &MaxPool{
		SpanX:       b.Width,
		SpanY:       b.Height,
		StrideX:     b.StrideX,
		StrideY:     b.StrideY,
		InputWidth:  d.Width,
		InputHeight: d.Height,
		InputDepth:  d.Depth,
	}, nil
}

func (r *realizer) activation(b *convmarkup.Activation) (emgnet.Layer, error) {
	for _, a := range []emgnet.Activation{emgnet.ReLU, emgnet.Tanh, emgnet.Sigmoid,
		emgnet.LogSoftmax} {
		if a.String() == b.Name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown activation: %s", b.Name)
}
