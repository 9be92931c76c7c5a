package emgnet

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/serializer"
)

func init() {
	var a Activation
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeActivation)
}

// An Activation is an element-wise (or, for LogSoftmax,
// per-sample) non-linearity.
type Activation int

const (
	ReLU Activation = iota
	Tanh
	Sigmoid
	LogSoftmax
)

// DeserializeActivation deserializes an Activation.
func DeserializeActivation(d []byte) (Activation, error) {
	if len(d) != 1 {
		return 0, fmt.Errorf("deserialize Activation: expected 1 byte but got %d", len(d))
	}
	a := Activation(d[0])
	if a > LogSoftmax {
		return 0, fmt.Errorf("deserialize Activation: unknown ID %d", d[0])
	}
	return a, nil
}

// Apply applies the activation.
func (a Activation) Apply(in anydiff.Res, batch int) anydiff.Res {
	switch a {
	case ReLU:
		return anydiff.ClipPos(in)
	case Tanh:
		return anydiff.Tanh(in)
	case Sigmoid:
		return anydiff.Sigmoid(in)
	case LogSoftmax:
		n := in.Output().Len()
		if n%batch != 0 {
			panic("batch size must divide input length")
		}
		return anydiff.LogSoftmax(in, n/batch)
	default:
		panic(fmt.Sprintf("unknown activation: %d", a))
	}
}

// String returns the activation's markup name.
func (a Activation) String() string {
	switch a {
	case ReLU:
		return "ReLU"
	case Tanh:
		return "Tanh"
	case Sigmoid:
		return "Sigmoid"
	case LogSoftmax:
		return "Softmax"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// SerializerType returns the unique ID used to serialize
// an Activation with the serializer package.
func (a Activation) SerializerType() string {
	return "github.com/unixpickle/emgnet.Activation"
}

// Serialize serializes the activation.
func (a Activation) Serialize() ([]byte, error) {
	return []byte{byte(a)}, nil
}
