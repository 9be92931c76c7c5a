// Command emgsynth writes a synthetic sEMG dataset file
// that emgtrain can read.
package main

import (
	"flag"
	"log"
	"math/rand"

	"github.com/unixpickle/emgnet/emgdata"
	"github.com/unixpickle/essentials"
)

func main() {
	var count, channels, width, classes int
	var evalRatio float64
	var seed int64
	var outPath string
	flag.IntVar(&count, "count", 600, "number of windows")
	flag.IntVar(&channels, "channels", 8, "electrodes per window")
	flag.IntVar(&width, "width", 52, "time steps per window")
	flag.IntVar(&classes, "classes", 6, "number of gestures")
	flag.Float64Var(&evalRatio, "eval", 0.2, "fraction of windows held out")
	flag.Int64Var(&seed, "seed", 1, "random seed")
	flag.StringVar(&outPath, "out", "synth.emg", "output file")
	flag.Parse()

	if count <= 0 || channels <= 0 || width <= 0 || classes <= 0 {
		essentials.Die("count, channels, width, and classes must be positive")
	}

	samples := emgdata.Synthesize(rand.New(rand.NewSource(seed)), count, channels,
		width, classes)
	dataset := emgdata.Partition(samples, classes, evalRatio)
	if err := dataset.Validate(); err != nil {
		essentials.Die(err)
	}
	if err := emgdata.Save(outPath, dataset); err != nil {
		essentials.Die(err)
	}
	log.Printf("Wrote %d train and %d eval windows to %s", len(dataset.Train),
		len(dataset.Eval), outPath)
}
