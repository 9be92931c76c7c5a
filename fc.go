package emgnet

import (
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var f FC
	serializer.RegisterTypedDeserializer(f.SerializerType(), DeserializeFC)
}

// FC is a fully-connected layer.
//
// Weights form an OutCount x InCount row-major matrix.
type FC struct {
	InCount  int
	OutCount int
	Weights  *anydiff.Var
	Biases   *anydiff.Var
}

// NewFC creates an FC with normally distributed weights
// scaled by 1/sqrt(in) and zero biases.
func NewFC(c anyvec.Creator, in, out int) *FC {
	res := &FC{
		InCount:  in,
		OutCount: out,
		Weights:  anydiff.NewVar(c.MakeVector(in * out)),
		Biases:   anydiff.NewVar(c.MakeVector(out)),
	}
	anyvec.Rand(res.Weights.Vector, anyvec.Normal, nil)
	res.Weights.Vector.Scale(c.MakeNumeric(1 / math.Sqrt(float64(in))))
	return res
}

// DeserializeFC deserializes an FC.
func DeserializeFC(d []byte) (*FC, error) {
	var in, out serializer.Int
	var weights, biases *anyvecsave.S
	if err := serializer.DeserializeAny(d, &in, &out, &weights, &biases); err != nil {
		return nil, essentials.AddCtx("deserialize FC", err)
	}
	if weights.Vector.Len() != int(in*out) || biases.Vector.Len() != int(out) {
		return nil, fmt.Errorf("deserialize FC: bad parameter sizes for %dx%d", out, in)
	}
	return &FC{
		InCount:  int(in),
		OutCount: int(out),
		Weights:  anydiff.NewVar(weights.Vector),
		Biases:   anydiff.NewVar(biases.Vector),
	}, nil
}

// Apply computes W*x+b for every input in the batch.
func (f *FC) Apply(in anydiff.Res, batch int) anydiff.Res {
	if in.Output().Len() != batch*f.InCount {
		panic(fmt.Sprintf("FC input should have length %d but has %d",
			batch*f.InCount, in.Output().Len()))
	}
	product := anydiff.MatMul(false, true,
		&anydiff.Matrix{Data: in, Rows: batch, Cols: f.InCount},
		&anydiff.Matrix{Data: f.Weights, Rows: f.OutCount, Cols: f.InCount})
	return anydiff.AddRepeated(product.Data, f.Biases)
}

// Parameters returns the weights followed by the biases.
func (f *FC) Parameters() []*anydiff.Var {
	return []*anydiff.Var{f.Weights, f.Biases}
}

// SerializerType returns the unique ID used to serialize
// an FC with the serializer package.
func (f *FC) SerializerType() string {
	return "github.com/unixpickle/emgnet.FC"
}

// Serialize serializes the layer.
func (f *FC) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(f.InCount),
		serializer.Int(f.OutCount),
		&anyvecsave.S{Vector: f.Weights.Vector},
		&anyvecsave.S{Vector: f.Biases.Vector},
	)
}
