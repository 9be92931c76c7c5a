package emgconv

import (
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/emgnet"
	"github.com/unixpickle/serializer"
)

func testConv() *Conv {
	layer := &Conv{
		FilterCount:  3,
		FilterWidth:  4,
		FilterHeight: 2,
		StrideX:      2,
		StrideY:      1,
		InputWidth:   11,
		InputHeight:  5,
		InputDepth:   2,
	}
	layer.InitRand(anyvec64.DefaultCreator{})
	anyvec.Rand(layer.Biases.Vector, anyvec.Normal, nil)
	return layer
}

func TestConvOutputSize(t *testing.T) {
	layer := testConv()
	if w := layer.OutputWidth(); w != 4 {
		t.Errorf("expected width 4 but got %d", w)
	}
	if h := layer.OutputHeight(); h != 4 {
		t.Errorf("expected height 4 but got %d", h)
	}
	if d := layer.OutputDepth(); d != 3 {
		t.Errorf("expected depth 3 but got %d", d)
	}
}

func TestConvOutput(t *testing.T) {
	layer := testConv()
	inSize := 11 * 5 * 2
	img := anyvec64.MakeVector(inSize * 2)
	anyvec.Rand(img, anyvec.Normal, nil)
	data := img.Data().([]float64)

	expected := naiveConvolution(layer, data[:inSize])
	expected = append(expected, naiveConvolution(layer, data[inSize:])...)
	actual := emgnet.FloatData(layer.Apply(anydiff.NewConst(img), 2).Output())

	if len(actual) != len(expected) {
		t.Fatalf("expected length %d but got %d", len(expected), len(actual))
	}
	for i, x := range expected {
		if math.Abs(x-actual[i]) > 1e-6 {
			t.Fatalf("output %d: should be %f but got %f", i, x, actual[i])
		}
	}
}

func TestConvProp(t *testing.T) {
	layer := testConv()
	img := anyvec64.MakeVector(11 * 5 * 2 * 2)
	anyvec.Rand(img, anyvec.Normal, nil)
	inVar := anydiff.NewVar(img)

	checker := anydifftest.ResChecker{
		F: func() anydiff.Res {
			return layer.Apply(inVar, 2)
		},
		V: []*anydiff.Var{inVar, layer.Filters, layer.Biases},
	}
	checker.FullCheck(t)
}

func TestConvSerialize(t *testing.T) {
	layer := testConv()
	data, err := serializer.SerializeAny(layer)
	if err != nil {
		t.Fatal(err)
	}
	var newLayer *Conv
	if err := serializer.DeserializeAny(data, &newLayer); err != nil {
		t.Fatal(err)
	}
	if newLayer.FilterCount != layer.FilterCount ||
		newLayer.FilterWidth != layer.FilterWidth ||
		newLayer.FilterHeight != layer.FilterHeight ||
		newLayer.StrideX != layer.StrideX || newLayer.StrideY != layer.StrideY ||
		newLayer.InputWidth != layer.InputWidth ||
		newLayer.InputHeight != layer.InputHeight ||
		newLayer.InputDepth != layer.InputDepth {
		t.Fatalf("bad dimensions: %+v", newLayer)
	}
	if !emgnet.TakeSnapshot(layer.Parameters()).Matches(newLayer.Parameters()) {
		t.Fatal("parameters differ")
	}
}

func naiveConvolution(c *Conv, img []float64) []float64 {
	filters := c.Filters.Vector.Data().([]float64)
	biases := c.Biases.Vector.Data().([]float64)
	size := c.FilterWidth * c.FilterHeight * c.InputDepth

	var res []float64
	for y := 0; y+c.FilterHeight <= c.InputHeight; y += c.StrideY {
		for x := 0; x+c.FilterWidth <= c.InputWidth; x += c.StrideX {
			for f := 0; f < c.FilterCount; f++ {
				filter := filters[size*f : size*(f+1)]
				sum := biases[f]
				for subY := 0; subY < c.FilterHeight; subY++ {
					for subX := 0; subX < c.FilterWidth; subX++ {
						for z := 0; z < c.InputDepth; z++ {
							idx := ((subY+y)*c.InputWidth+subX+x)*c.InputDepth + z
							fIdx := (subY*c.FilterWidth+subX)*c.InputDepth + z
							sum += filter[fIdx] * img[idx]
						}
					}
				}
				res = append(res, sum)
			}
		}
	}
	return res
}
