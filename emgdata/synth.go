package emgdata

import (
	"math"
	"math/rand"
)

// Synthesize generates count windows of fake sEMG.
//
// Each gesture drives a different pair of channels with a
// class-specific burst frequency, on top of Gaussian
// noise, so a small network can learn to tell classes
// apart.
// Labels cycle through the classes in order.
func Synthesize(gen *rand.Rand, count, channels, width, classes int) Split {
	res := make(Split, count)
	for i := range res {
		label := i % classes
		data := make([]float64, channels*width)
		freq := 0.05 + 0.4*float64(label)/float64(classes)
		phase := gen.Float64() * 2 * math.Pi
		for ch := 0; ch < channels; ch++ {
			amp := 0.2
			if ch%classes == label || (ch+1)%classes == label {
				amp = 1
			}
			for t := 0; t < width; t++ {
				signal := amp * math.Sin(2*math.Pi*freq*float64(t)+phase)
				data[ch*width+t] = signal + 0.1*gen.NormFloat64()
			}
		}
		res[i] = &Sample{
			Channels: channels,
			Width:    width,
			Data:     data,
			Label:    label,
		}
	}
	return res
}
