// Package emgnet provides the layers, costs, and parameter
// snapshots used to train sEMG gesture classifiers.
//
// Computation is expressed with anydiff, so every layer
// gets backpropagation for free.
// Sub-packages provide convolutional layers (emgconv),
// optimizers (emgsgd), datasets (emgdata), and the
// training loop (emgtrain).
package emgnet

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var n Net
	serializer.RegisterTypedDeserializer(n.SerializerType(), DeserializeNet)
}

// A Parameterizer is anything with learnable variables.
//
// Parameters must come back in the same order on every
// call, since snapshots are restored positionally.
type Parameterizer interface {
	Parameters() []*anydiff.Var
}

// A Layer is one stage of a classifier.
//
// Apply is batched: the input packs batch equally-sized
// tensors one after another.
type Layer interface {
	Apply(in anydiff.Res, batch int) anydiff.Res
}

// A Net applies its layers in order.
type Net []Layer

// DeserializeNet deserializes a Net.
func DeserializeNet(d []byte) (Net, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Net", err)
	}
	res := make(Net, len(slice))
	for i, x := range slice {
		layer, ok := x.(Layer)
		if !ok {
			return nil, fmt.Errorf("deserialize Net: layer %d is %T", i, x)
		}
		res[i] = layer
	}
	return res, nil
}

// Apply feeds the batch through every layer.
// An empty Net is the identity.
func (n Net) Apply(in anydiff.Res, batch int) anydiff.Res {
	for _, l := range n {
		in = l.Apply(in, batch)
	}
	return in
}

// Parameters collects the parameters of every layer that
// implements Parameterizer, first layer first.
func (n Net) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, l := range n {
		if p, ok := l.(Parameterizer); ok {
			res = append(res, p.Parameters()...)
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Net with the serializer package.
func (n Net) SerializerType() string {
	return "github.com/unixpickle/emgnet.Net"
}

// Serialize serializes the layers.
// It fails if any layer is not a serializer.Serializer.
func (n Net) Serialize() ([]byte, error) {
	slice := make([]serializer.Serializer, len(n))
	for i, l := range n {
		s, ok := l.(serializer.Serializer)
		if !ok {
			return nil, fmt.Errorf("serialize Net: layer %d (%T) is not a Serializer", i, l)
		}
		slice[i] = s
	}
	return serializer.SerializeSlice(slice)
}

// Parameters returns the parameters of l, or nil if l
// has none.
func Parameters(l Layer) []*anydiff.Var {
	if p, ok := l.(Parameterizer); ok {
		return p.Parameters()
	}
	return nil
}
