// Package emgdata loads, stores, and prepares windowed
// sEMG datasets for training.
package emgdata

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/emgnet"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var s Sample
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeSample)
}

// A Sample is one window of sEMG readings with the
// gesture being performed.
//
// Data is Channels x Width, row-major, so each channel's
// time series is contiguous.
// Samples are treated as immutable.
type Sample struct {
	Channels int
	Width    int
	Data     []float64
	Label    int
}

// DeserializeSample deserializes a Sample.
func DeserializeSample(d []byte) (*Sample, error) {
	var channels, width, label serializer.Int
	var data *anyvecsave.S
	if err := serializer.DeserializeAny(d, &channels, &width, &label, &data); err != nil {
		return nil, essentials.AddCtx("deserialize Sample", err)
	}
	res := &Sample{
		Channels: int(channels),
		Width:    int(width),
		Data:     emgnet.FloatData(data.Vector),
		Label:    int(label),
	}
	if err := res.checkSize(); err != nil {
		return nil, essentials.AddCtx("deserialize Sample", err)
	}
	return res, nil
}

// At returns the reading of a channel at a time step.
func (s *Sample) At(channel, t int) float64 {
	return s.Data[channel*s.Width+t]
}

// Hash hashes the readings and the label.
func (s *Sample) Hash() []byte {
	h := sha256.New()
	var buf [8]byte
	for _, x := range []int{s.Channels, s.Width, s.Label} {
		binary.BigEndian.PutUint64(buf[:], uint64(x))
		h.Write(buf[:])
	}
	for _, x := range s.Data {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return h.Sum(nil)
}

// SerializerType returns the unique ID used to serialize
// a Sample with the serializer package.
func (s *Sample) SerializerType() string {
	return "github.com/unixpickle/emgnet/emgdata.Sample"
}

// Serialize serializes the sample.
func (s *Sample) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(s.Channels),
		serializer.Int(s.Width),
		serializer.Int(s.Label),
		&anyvecsave.S{Vector: anyvec64.MakeVectorData(s.Data)},
	)
}

func (s *Sample) checkSize() error {
	if s.Channels <= 0 || s.Width <= 0 {
		return fmt.Errorf("invalid window size %dx%d", s.Channels, s.Width)
	}
	if len(s.Data) != s.Channels*s.Width {
		return fmt.Errorf("window is %dx%d but has %d readings", s.Channels, s.Width,
			len(s.Data))
	}
	return nil
}
