package emgdata

import (
	"errors"
	"fmt"
	"os"

	"github.com/unixpickle/emgnet/emgsgd"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var d Dataset
	serializer.RegisterTypedDeserializer(d.SerializerType(), DeserializeDataset)
}

// A Dataset is a pre-split set of labeled windows.
type Dataset struct {
	NumClasses int
	Train      Split
	Eval       Split
}

// Load reads a dataset file written by Save.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load dataset", err)
	}
	var res *Dataset
	if err := serializer.DeserializeAny(data, &res); err != nil {
		return nil, essentials.AddCtx("load dataset "+path, err)
	}
	return res, nil
}

// Save writes a dataset file.
func Save(path string, d *Dataset) error {
	data, err := serializer.SerializeAny(d)
	if err != nil {
		return essentials.AddCtx("save dataset", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save dataset", err)
	}
	return nil
}

// DeserializeDataset deserializes a Dataset.
func DeserializeDataset(d []byte) (*Dataset, error) {
	var classes serializer.Int
	var train, eval Split
	if err := serializer.DeserializeAny(d, &classes, &train, &eval); err != nil {
		return nil, essentials.AddCtx("deserialize Dataset", err)
	}
	return &Dataset{NumClasses: int(classes), Train: train, Eval: eval}, nil
}

// Partition splits samples into a Dataset, sending about
// evalRatio of them to the evaluation split.
// Samples are assigned by content hash, so the result
// does not depend on the order of samples.
// The samples slice is reordered.
func Partition(samples Split, numClasses int, evalRatio float64) *Dataset {
	eval, train := emgsgd.HashSplit(samples, evalRatio)
	return &Dataset{
		NumClasses: numClasses,
		Train:      train.(Split),
		Eval:       eval.(Split),
	}
}

// Dims returns the channel count and window width shared
// by all samples.
// It returns zeros for a dataset without samples.
func (d *Dataset) Dims() (channels, width int) {
	for _, split := range []Split{d.Train, d.Eval} {
		if len(split) > 0 {
			return split[0].Channels, split[0].Width
		}
	}
	return 0, 0
}

// Validate checks that every sample has the same window
// size and a label in [0, NumClasses).
func (d *Dataset) Validate() error {
	if d.NumClasses <= 0 {
		return fmt.Errorf("validate dataset: invalid class count %d", d.NumClasses)
	}
	if len(d.Train) == 0 {
		return errors.New("validate dataset: empty train split")
	}
	channels, width := d.Dims()
	for _, part := range []struct {
		name  string
		split Split
	}{{"train", d.Train}, {"eval", d.Eval}} {
		for i, s := range part.split {
			if err := s.checkSize(); err != nil {
				return fmt.Errorf("validate dataset: %s sample %d: %s", part.name, i, err)
			}
			if s.Channels != channels || s.Width != width {
				return fmt.Errorf("validate dataset: %s sample %d is %dx%d, expected %dx%d",
					part.name, i, s.Channels, s.Width, channels, width)
			}
			if s.Label < 0 || s.Label >= d.NumClasses {
				return fmt.Errorf("validate dataset: %s sample %d has label %d (classes: %d)",
					part.name, i, s.Label, d.NumClasses)
			}
		}
	}
	return nil
}

// SerializerType returns the unique ID used to serialize
// a Dataset with the serializer package.
func (d *Dataset) SerializerType() string {
	return "github.com/unixpickle/emgnet/emgdata.Dataset"
}

// Serialize serializes the dataset.
func (d *Dataset) Serialize() ([]byte, error) {
	return serializer.SerializeAny(serializer.Int(d.NumClasses), d.Train, d.Eval)
}
