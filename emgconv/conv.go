// Package emgconv provides convolutional layers and the
// default network architectures for sEMG windows.
//
// Tensors are row-major depth-minor.
// An sEMG window is a tensor whose height is the number
// of electrode channels, whose width is the number of time
// steps, and whose depth is 1.
package emgconv

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var c Conv
	serializer.RegisterTypedDeserializer(c.SerializerType(), DeserializeConv)
}

// Conv is a convolutional layer.
//
// Filters are stored one after another, each as a
// row-major depth-minor FilterHeight x FilterWidth x
// InputDepth tensor.
type Conv struct {
	FilterCount  int
	FilterWidth  int
	FilterHeight int

	StrideX int
	StrideY int

	InputWidth  int
	InputHeight int
	InputDepth  int

	Filters *anydiff.Var
	Biases  *anydiff.Var

	windowsLock sync.Mutex
	windows     anyvec.Mapper
}

// DeserializeConv deserializes a Conv.
func DeserializeConv(d []byte) (*Conv, error) {
	var inW, inH, inD, fW, fH, sX, sY serializer.Int
	var f, b *anyvecsave.S
	err := serializer.DeserializeAny(d, &inW, &inH, &inD, &fW, &fH, &sX, &sY, &f, &b)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Conv", err)
	}
	filterSize := int(fW * fH * inD)
	if filterSize == 0 || f.Vector.Len()%filterSize != 0 ||
		f.Vector.Len()/filterSize != b.Vector.Len() {
		return nil, errors.New("deserialize Conv: inconsistent filter dimensions")
	}
	return &Conv{
		FilterCount:  b.Vector.Len(),
		FilterWidth:  int(fW),
		FilterHeight: int(fH),
		StrideX:      int(sX),
		StrideY:      int(sY),
		InputWidth:   int(inW),
		InputHeight:  int(inH),
		InputDepth:   int(inD),
		Filters:      anydiff.NewVar(f.Vector),
		Biases:       anydiff.NewVar(b.Vector),
	}, nil
}

// InitRand initializes the filters with normal values
// scaled by the filter fan-in and zeroes the biases.
func (c *Conv) InitRand(cr anyvec.Creator) {
	size := c.filterSize()
	c.Filters = anydiff.NewVar(cr.MakeVector(size * c.FilterCount))
	c.Biases = anydiff.NewVar(cr.MakeVector(c.FilterCount))
	anyvec.Rand(c.Filters.Vector, anyvec.Normal, nil)
	c.Filters.Vector.Scale(cr.MakeNumeric(1 / math.Sqrt(float64(size))))
}

// OutputWidth returns the width of the output tensor.
func (c *Conv) OutputWidth() int {
	return slideCount(c.InputWidth, c.FilterWidth, c.StrideX)
}

// OutputHeight returns the height of the output tensor.
func (c *Conv) OutputHeight() int {
	return slideCount(c.InputHeight, c.FilterHeight, c.StrideY)
}

// OutputDepth returns the depth of the output tensor.
func (c *Conv) OutputDepth() int {
	return c.FilterCount
}

// Apply convolves every tensor in the batch.
func (c *Conv) Apply(in anydiff.Res, batch int) anydiff.Res {
	inSize := c.InputWidth * c.InputHeight * c.InputDepth
	if in.Output().Len() != batch*inSize {
		panic(fmt.Sprintf("Conv input should have length %d but has %d",
			batch*inSize, in.Output().Len()))
	}
	cr := in.Output().Creator()
	positions := c.OutputWidth() * c.OutputHeight()
	if positions == 0 {
		return anydiff.NewConst(cr.MakeVector(0))
	}

	windows := c.windowMapper(cr)
	filters := c.filterMatrix()
	one, zero := cr.MakeNumeric(1), cr.MakeNumeric(0)

	outs := make([]anyvec.Vector, batch)
	for i := range outs {
		rows := c.rowMatrix(cr)
		windows.Map(in.Output().Slice(inSize*i, inSize*(i+1)), rows.Data)
		prod := &anyvec.Matrix{
			Data: cr.MakeVector(positions * c.FilterCount),
			Rows: positions,
			Cols: c.FilterCount,
		}
		prod.Product(false, true, one, rows, filters, zero)
		outs[i] = prod.Data
	}
	out := cr.Concat(outs...)
	anyvec.AddRepeated(out, c.Biases.Vector)

	ours := anydiff.VarSet{}
	ours.Add(c.Filters)
	ours.Add(c.Biases)
	return &convRes{
		Layer:  c,
		N:      batch,
		In:     in,
		OutVec: out,
		V:      anydiff.MergeVarSets(in.Vars(), ours),
	}
}

// Parameters returns the filters and then the biases.
func (c *Conv) Parameters() []*anydiff.Var {
	return []*anydiff.Var{c.Filters, c.Biases}
}

// SerializerType returns the unique ID used to serialize
// a Conv with the serializer package.
func (c *Conv) SerializerType() string {
	return "github.com/unixpickle/emgnet/emgconv.Conv"
}

// Serialize serializes the layer.
func (c *Conv) Serialize() ([]byte, error) {
	if c.Filters == nil || c.Biases == nil {
		return nil, errors.New("serialize Conv: layer is not initialized")
	}
	return serializer.SerializeAny(
		serializer.Int(c.InputWidth),
		serializer.Int(c.InputHeight),
		serializer.Int(c.InputDepth),
		serializer.Int(c.FilterWidth),
		serializer.Int(c.FilterHeight),
		serializer.Int(c.StrideX),
		serializer.Int(c.StrideY),
		&anyvecsave.S{Vector: c.Filters.Vector},
		&anyvecsave.S{Vector: c.Biases.Vector},
	)
}

func (c *Conv) filterSize() int {
	return c.FilterWidth * c.FilterHeight * c.InputDepth
}

func (c *Conv) filterMatrix() *anyvec.Matrix {
	return &anyvec.Matrix{
		Data: c.Filters.Vector,
		Rows: c.FilterCount,
		Cols: c.filterSize(),
	}
}

// rowMatrix allocates a matrix with one row per filter
// position.
func (c *Conv) rowMatrix(cr anyvec.Creator) *anyvec.Matrix {
	rows := c.OutputWidth() * c.OutputHeight()
	return &anyvec.Matrix{
		Data: cr.MakeVector(rows * c.filterSize()),
		Rows: rows,
		Cols: c.filterSize(),
	}
}

// windowMapper maps an input tensor to a matrix whose
// rows are the receptive fields of each output position.
func (c *Conv) windowMapper(cr anyvec.Creator) anyvec.Mapper {
	c.windowsLock.Lock()
	defer c.windowsLock.Unlock()
	if c.windows != nil && c.windows.Creator() == cr {
		return c.windows
	}
	var mapping []int
	rowStride := c.InputWidth * c.InputDepth
	for y := 0; y+c.FilterHeight <= c.InputHeight; y += c.StrideY {
		for x := 0; x+c.FilterWidth <= c.InputWidth; x += c.StrideX {
			for subY := 0; subY < c.FilterHeight; subY++ {
				for subX := 0; subX < c.FilterWidth; subX++ {
					start := (y+subY)*rowStride + (x+subX)*c.InputDepth
					for z := 0; z < c.InputDepth; z++ {
						mapping = append(mapping, start+z)
					}
				}
			}
		}
	}
	c.windows = cr.MakeMapper(c.InputWidth*c.InputHeight*c.InputDepth, mapping)
	return c.windows
}

type convRes struct {
	Layer  *Conv
	N      int
	In     anydiff.Res
	OutVec anyvec.Vector
	V      anydiff.VarSet
}

func (c *convRes) Output() anyvec.Vector {
	return c.OutVec
}

func (c *convRes) Vars() anydiff.VarSet {
	return c.V
}

func (c *convRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	layer := c.Layer
	cr := u.Creator()
	one, zero := cr.MakeNumeric(1), cr.MakeNumeric(0)

	if biasGrad, ok := g[layer.Biases]; ok {
		biasGrad.Add(anyvec.SumRows(u, layer.FilterCount))
	}

	filterGrad, doFilters := g[layer.Filters]
	doIn := g.Intersects(c.In.Vars())
	if !doFilters && !doIn {
		return
	}

	windows := layer.windowMapper(cr)
	filters := layer.filterMatrix()
	outSize := u.Len() / c.N
	inSize := c.In.Output().Len() / c.N
	positions := layer.OutputWidth() * layer.OutputHeight()

	var inUps []anyvec.Vector
	for i := 0; i < c.N; i++ {
		uMat := &anyvec.Matrix{
			Data: u.Slice(outSize*i, outSize*(i+1)),
			Rows: positions,
			Cols: layer.FilterCount,
		}
		rows := layer.rowMatrix(cr)
		if doFilters {
			windows.Map(c.In.Output().Slice(inSize*i, inSize*(i+1)), rows.Data)
			grad := &anyvec.Matrix{
				Data: cr.MakeVector(filterGrad.Len()),
				Rows: layer.FilterCount,
				Cols: layer.filterSize(),
			}
			grad.Product(true, false, one, uMat, rows, zero)
			filterGrad.Add(grad.Data)
		}
		if doIn {
			rows.Product(false, false, one, uMat, filters, zero)
			inUp := cr.MakeVector(inSize)
			windows.MapTranspose(rows.Data, inUp)
			inUps = append(inUps, inUp)
		}
	}

	if doIn {
		c.In.Propagate(cr.Concat(inUps...), g)
	}
}

func slideCount(in, window, stride int) int {
	if window > in || stride <= 0 {
		return 0
	}
	return 1 + (in-window)/stride
}
