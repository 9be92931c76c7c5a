package emgdata

import (
	"fmt"

	"github.com/unixpickle/emgnet/emgsgd"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var s Split
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeSplit)
}

// A Split is an ordered list of samples, such as the
// training or evaluation portion of a Dataset.
type Split []*Sample

// DeserializeSplit deserializes a Split.
func DeserializeSplit(d []byte) (Split, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Split", err)
	}
	res := make(Split, len(slice))
	for i, x := range slice {
		s, ok := x.(*Sample)
		if !ok {
			return nil, fmt.Errorf("deserialize Split: entry %d is %T", i, x)
		}
		res[i] = s
	}
	return res, nil
}

// Len returns the number of samples.
func (s Split) Len() int {
	return len(s)
}

// Swap swaps two samples.
func (s Split) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Slice copies a sub-range of the split.
func (s Split) Slice(i, j int) emgsgd.SampleList {
	return append(Split{}, s[i:j]...)
}

// Hash hashes the sample at index i.
func (s Split) Hash(i int) []byte {
	return s[i].Hash()
}

// LabelCounts counts the samples of each class.
func (s Split) LabelCounts(numClasses int) []int {
	res := make([]int, numClasses)
	for _, sample := range s {
		if sample.Label >= 0 && sample.Label < numClasses {
			res[sample.Label]++
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Split with the serializer package.
func (s Split) SerializerType() string {
	return "github.com/unixpickle/emgnet/emgdata.Split"
}

// Serialize serializes the samples.
func (s Split) Serialize() ([]byte, error) {
	slice := make([]serializer.Serializer, len(s))
	for i, sample := range s {
		slice[i] = sample
	}
	return serializer.SerializeSlice(slice)
}
