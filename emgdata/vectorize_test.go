package emgdata

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/emgnet"
)

func TestVectorize(t *testing.T) {
	d := testDataset()
	train, eval, err := d.Vectorize(context.Background(), anyvec64.DefaultCreator{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(train) != len(d.Train) || len(eval) != len(d.Eval) {
		t.Fatal("split sizes changed")
	}
	for i, ex := range train {
		s := d.Train[i]
		if ex.Label != s.Label {
			t.Fatalf("example %d: label %d, expected %d", i, ex.Label, s.Label)
		}
		if !reflect.DeepEqual(emgnet.FloatData(ex.Input), s.Data) {
			t.Fatalf("example %d: input differs from readings", i)
		}
		target := emgnet.FloatData(ex.Target)
		for j, x := range target {
			if (j == s.Label) != (x == 1) || (x != 0 && x != 1) {
				t.Fatalf("example %d: bad one-hot %v for label %d", i, target, s.Label)
			}
		}
	}
}

func TestVectorizeFloat32(t *testing.T) {
	d := testDataset()
	train, _, err := d.Vectorize(context.Background(), anyvec32.DefaultCreator{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := train[0].Input.Data().([]float32); !ok {
		t.Errorf("expected float32 data but got %T", train[0].Input.Data())
	}
}

func TestVectorizeBadLabel(t *testing.T) {
	d := testDataset()
	d.Eval = append(Split{}, d.Eval...)
	d.Eval[len(d.Eval)-1] = &Sample{Channels: 4, Width: 16, Data: make([]float64, 64), Label: -1}
	if _, _, err := d.Vectorize(context.Background(), anyvec64.DefaultCreator{}, nil); err == nil {
		t.Error("expected error for negative label")
	}
}

func TestNormalization(t *testing.T) {
	d := testDataset()
	norm, err := ComputeNormalization(d.Train)
	if err != nil {
		t.Fatal(err)
	}
	train, _, err := d.Vectorize(context.Background(), anyvec64.DefaultCreator{}, norm)
	if err != nil {
		t.Fatal(err)
	}
	channels, width := d.Dims()
	for ch := 0; ch < channels; ch++ {
		var sum, sqSum float64
		var n int
		for _, ex := range train {
			data := emgnet.FloatData(ex.Input)
			for _, x := range data[ch*width : (ch+1)*width] {
				sum += x
				sqSum += x * x
				n++
			}
		}
		mean := sum / float64(n)
		variance := sqSum/float64(n) - mean*mean
		if math.Abs(mean) > 1e-9 {
			t.Errorf("channel %d: mean %f", ch, mean)
		}
		if math.Abs(variance-1) > 0.01 {
			t.Errorf("channel %d: variance %f", ch, variance)
		}
	}

	// The stored samples are left alone.
	if reflect.DeepEqual(emgnet.FloatData(train[0].Input), d.Train[0].Data) {
		t.Error("normalized input equals raw readings")
	}
}
