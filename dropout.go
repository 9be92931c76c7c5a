package emgnet

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var d Dropout
	serializer.RegisterTypedDeserializer(d.SerializerType(), DeserializeDropout)
}

// Dropout zeroes random inputs while training.
// In evaluation mode it scales its input by KeepProb,
// which is the expected output of the training mask.
type Dropout struct {
	KeepProb float64
	Training bool
}

// DeserializeDropout deserializes a Dropout.
// The layer comes back in evaluation mode.
func DeserializeDropout(d []byte) (*Dropout, error) {
	var keep serializer.Float64
	if err := serializer.DeserializeAny(d, &keep); err != nil {
		return nil, essentials.AddCtx("deserialize Dropout", err)
	}
	return &Dropout{KeepProb: float64(keep)}, nil
}

// Apply applies the layer.
func (d *Dropout) Apply(in anydiff.Res, batch int) anydiff.Res {
	c := in.Output().Creator()
	if !d.Training {
		return anydiff.Scale(in, c.MakeNumeric(d.KeepProb))
	}
	mask := c.MakeVector(in.Output().Len())
	anyvec.Rand(mask, anyvec.Uniform, nil)
	anyvec.LessThan(mask, c.MakeNumeric(d.KeepProb))
	return anydiff.Mul(in, anydiff.NewConst(mask))
}

// SetTraining switches between the training mask and the
// evaluation scaling.
func (d *Dropout) SetTraining(t bool) {
	d.Training = t
}

// SerializerType returns the unique ID used to serialize
// a Dropout with the serializer package.
func (d *Dropout) SerializerType() string {
	return "github.com/unixpickle/emgnet.Dropout"
}

// Serialize serializes the layer.
// The training flag is not saved.
func (d *Dropout) Serialize() ([]byte, error) {
	return serializer.SerializeAny(serializer.Float64(d.KeepProb))
}
