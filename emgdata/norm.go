package emgdata

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Normalization standardizes each channel to zero mean
// and unit variance.
type Normalization struct {
	Mean []float64
	Std  []float64
}

// ComputeNormalization measures per-channel statistics
// over every reading in the split.
// Channels with no variance get a unit Std.
func ComputeNormalization(s Split) (*Normalization, error) {
	if len(s) == 0 {
		return nil, errors.New("compute normalization: empty split")
	}
	channels, width := s[0].Channels, s[0].Width
	res := &Normalization{
		Mean: make([]float64, channels),
		Std:  make([]float64, channels),
	}
	readings := make([]float64, 0, len(s)*width)
	for ch := 0; ch < channels; ch++ {
		readings = readings[:0]
		for _, sample := range s {
			readings = append(readings, sample.Data[ch*width:(ch+1)*width]...)
		}
		mean, std := stat.MeanStdDev(readings, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		res.Mean[ch], res.Std[ch] = mean, std
	}
	return res, nil
}

// Apply returns standardized copies of the readings of s.
func (n *Normalization) Apply(s *Sample) ([]float64, error) {
	if len(n.Mean) != s.Channels {
		return nil, errors.New("normalize sample: channel count mismatch")
	}
	res := make([]float64, len(s.Data))
	for ch := 0; ch < s.Channels; ch++ {
		for t := 0; t < s.Width; t++ {
			idx := ch*s.Width + t
			res[idx] = (s.Data[idx] - n.Mean[ch]) / n.Std[ch]
		}
	}
	return res, nil
}
