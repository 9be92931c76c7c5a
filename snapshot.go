package emgnet

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var s Snapshot
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeSnapshot)
}

// A Snapshot is a deep copy of a list of parameters.
//
// The vectors in a Snapshot are never shared with the
// parameters they were copied from.
type Snapshot struct {
	Vectors []anyvec.Vector
}

// TakeSnapshot copies the current parameter values.
func TakeSnapshot(params []*anydiff.Var) *Snapshot {
	res := &Snapshot{Vectors: make([]anyvec.Vector, len(params))}
	for i, p := range params {
		res.Vectors[i] = p.Vector.Copy()
	}
	return res
}

// DeserializeSnapshot deserializes a Snapshot.
func DeserializeSnapshot(d []byte) (*Snapshot, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Snapshot", err)
	}
	res := &Snapshot{Vectors: make([]anyvec.Vector, len(slice))}
	for i, x := range slice {
		s, ok := x.(*anyvecsave.S)
		if !ok {
			return nil, fmt.Errorf("deserialize Snapshot: entry %d is %T", i, x)
		}
		res.Vectors[i] = s.Vector
	}
	return res, nil
}

// Restore copies the snapshot into params.
//
// The parameters must be listed in the order they were
// captured in.
func (s *Snapshot) Restore(params []*anydiff.Var) error {
	if len(params) != len(s.Vectors) {
		return fmt.Errorf("restore snapshot: have %d vectors but %d parameters",
			len(s.Vectors), len(params))
	}
	for i, p := range params {
		if p.Vector.Len() != s.Vectors[i].Len() {
			return fmt.Errorf("restore snapshot: parameter %d has length %d, snapshot has %d",
				i, p.Vector.Len(), s.Vectors[i].Len())
		}
	}
	for i, p := range params {
		p.Vector.Set(s.Vectors[i])
	}
	return nil
}

// Matches reports whether params hold exactly the values
// in the snapshot.
func (s *Snapshot) Matches(params []*anydiff.Var) bool {
	if len(params) != len(s.Vectors) {
		return false
	}
	for i, p := range params {
		a := FloatData(p.Vector)
		b := FloatData(s.Vectors[i])
		if len(a) != len(b) {
			return false
		}
		for j, x := range a {
			if x != b[j] {
				return false
			}
		}
	}
	return true
}

// SerializerType returns the unique ID used to serialize
// a Snapshot with the serializer package.
func (s *Snapshot) SerializerType() string {
	return "github.com/unixpickle/emgnet.Snapshot"
}

// Serialize serializes the snapshot.
func (s *Snapshot) Serialize() ([]byte, error) {
	slice := make([]serializer.Serializer, len(s.Vectors))
	for i, v := range s.Vectors {
		slice[i] = &anyvecsave.S{Vector: v}
	}
	return serializer.SerializeSlice(slice)
}
