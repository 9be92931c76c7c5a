// Command emgtrain trains an sEMG gesture classifier on a
// pre-split dataset file and reports the best weights.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/emgnet"
	"github.com/unixpickle/emgnet/emgconv"
	"github.com/unixpickle/emgnet/emgdata"
	"github.com/unixpickle/emgnet/emgsgd"
	"github.com/unixpickle/emgnet/emgtrain"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/rip"
	"github.com/unixpickle/serializer"
)

type Flags struct {
	DataPath   string
	MarkupPath string
	OutPath    string

	Epochs    int
	Rate      float64
	StepSize  int
	Gamma     float64
	Schedule  bool
	Optimizer string

	Float64   bool
	Enhanced  bool
	Normalize bool
	Shuffle   bool
	ValTrain  bool
	Seed      int64
}

func main() {
	var f Flags
	flag.StringVar(&f.DataPath, "data", "nina_data/all_6C_data_1.emg", "dataset file")
	flag.StringVar(&f.MarkupPath, "markup", "", "optional convmarkup architecture file")
	flag.StringVar(&f.OutPath, "out", "", "optional path for the best network")
	flag.IntVar(&f.Epochs, "epochs", 10, "maximum number of epochs")
	flag.Float64Var(&f.Rate, "lr", 0.002, "learning rate")
	flag.IntVar(&f.StepSize, "step", 10, "epochs between learning rate decays")
	flag.Float64Var(&f.Gamma, "gamma", 0.1, "learning rate decay factor")
	flag.BoolVar(&f.Schedule, "schedule", true, "decay the learning rate")
	flag.StringVar(&f.Optimizer, "optimizer", "sgd", "optimizer: sgd, momentum, adam, or rmsprop")
	flag.BoolVar(&f.Float64, "float64", false, "use 64-bit floats")
	flag.BoolVar(&f.Enhanced, "enhanced", true, "use the enhanced architecture")
	flag.BoolVar(&f.Normalize, "normalize", false, "standardize each channel")
	flag.BoolVar(&f.Shuffle, "shuffle", false, "shuffle the training split once")
	flag.BoolVar(&f.ValTrain, "val", true, "pick the best weights with the eval split")
	flag.Int64Var(&f.Seed, "seed", 0, "random seed (0 uses the clock)")
	flag.Parse()

	seed := f.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rand.Seed(seed)

	var creator anyvec.Creator
	if f.Float64 {
		creator = anyvec64.CurrentCreator()
	} else {
		creator = anyvec32.CurrentCreator()
	}

	log.Println("Loading data...")
	dataset, err := emgdata.Load(f.DataPath)
	if err != nil {
		essentials.Die(err)
	}
	if err := dataset.Validate(); err != nil {
		essentials.Die(err)
	}
	if f.Shuffle {
		emgsgd.Shuffle(rand.New(rand.NewSource(seed)), dataset.Train)
	}
	channels, width := dataset.Dims()
	log.Printf("Train: %d samples, eval: %d samples, %dx%d windows, %d classes",
		len(dataset.Train), len(dataset.Eval), channels, width, dataset.NumClasses)
	log.Printf("Train label counts: %v", dataset.Train.LabelCounts(dataset.NumClasses))

	var norm *emgdata.Normalization
	if f.Normalize {
		norm, err = emgdata.ComputeNormalization(dataset.Train)
		if err != nil {
			essentials.Die(err)
		}
	}
	trainSet, evalSet, err := dataset.Vectorize(context.Background(), creator, norm)
	if err != nil {
		essentials.Die(err)
	}

	network, err := createNetwork(creator, &f, emgconv.Shape{
		Channels: channels,
		Width:    width,
		Classes:  dataset.NumClasses,
	})
	if err != nil {
		essentials.Die(err)
	}

	opt := createOptimizer(&f)
	trainer := emgtrain.NewTrainer(network, emgnet.MSE{}, opt, trainSet, evalSet, f.Epochs)
	if f.Schedule {
		trainer.Scheduler = opt
	}

	log.Println("Press ctrl+c once to stop...")
	trainer.Stop = rip.NewRIP().Chan()
	trainer.Train(f.ValTrain)
	trainer.Test(true, 1)

	if f.OutPath != "" {
		log.Println("Saving network...")
		if err := saveNetwork(f.OutPath, network); err != nil {
			essentials.Die(err)
		}
	}
}

func createNetwork(c anyvec.Creator, f *Flags, shape emgconv.Shape) (emgnet.Net, error) {
	if f.MarkupPath == "" {
		log.Printf("Architecture:\n%s", emgconv.Markup(shape, f.Enhanced))
		return emgconv.NewNetwork(c, shape, f.Enhanced), nil
	}
	code, err := os.ReadFile(f.MarkupPath)
	if err != nil {
		return nil, essentials.AddCtx("read markup", err)
	}
	return emgconv.FromMarkup(c, string(code))
}

func createOptimizer(f *Flags) *emgsgd.Optimizer {
	opt := &emgsgd.Optimizer{Rater: emgsgd.ConstRater(f.Rate)}
	if f.Schedule {
		opt.Rater = &emgsgd.StepRater{
			Initial:  f.Rate,
			StepSize: f.StepSize,
			Gamma:    f.Gamma,
		}
	}
	switch f.Optimizer {
	case "sgd":
	case "momentum":
		opt.Transformer = &emgsgd.Momentum{Momentum: 0.9}
	case "adam":
		opt.Transformer = &emgsgd.Adam{}
	case "rmsprop":
		opt.Transformer = &emgsgd.RMSProp{}
	default:
		essentials.Die("unknown optimizer: " + f.Optimizer)
	}
	return opt
}

func saveNetwork(path string, net emgnet.Net) error {
	data, err := serializer.SerializeAny(net)
	if err != nil {
		return essentials.AddCtx("save network", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save network", err)
	}
	return nil
}
