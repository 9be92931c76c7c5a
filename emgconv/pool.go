package emgconv

import (
	"fmt"
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var m MaxPool
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeMaxPool)
}

// MaxPool is a max-pooling layer.
//
// A zero stride defaults to the span along that axis,
// giving non-overlapping pools.
// Input values that do not fit in a complete pool are
// ignored.
type MaxPool struct {
	SpanX   int
	SpanY   int
	StrideX int
	StrideY int

	InputWidth  int
	InputHeight int
	InputDepth  int

	gatherLock sync.Mutex
	gather     anyvec.Mapper
}

// DeserializeMaxPool deserializes a MaxPool.
func DeserializeMaxPool(d []byte) (*MaxPool, error) {
	var spanX, spanY, strideX, strideY, inW, inH, inD serializer.Int
	err := serializer.DeserializeAny(d, &spanX, &spanY, &strideX, &strideY,
		&inW, &inH, &inD)
	if err != nil {
		return nil, essentials.AddCtx("deserialize MaxPool", err)
	}
	return &MaxPool{
		SpanX:       int(spanX),
		SpanY:       int(spanY),
		StrideX:     int(strideX),
		StrideY:     int(strideY),
		InputWidth:  int(inW),
		InputHeight: int(inH),
		InputDepth:  int(inD),
	}, nil
}

// OutputWidth returns the width of the output tensor.
func (m *MaxPool) OutputWidth() int {
	return slideCount(m.InputWidth, m.SpanX, m.strideX())
}

// OutputHeight returns the height of the output tensor.
func (m *MaxPool) OutputHeight() int {
	return slideCount(m.InputHeight, m.SpanY, m.strideY())
}

// OutputDepth returns the depth of the output tensor.
func (m *MaxPool) OutputDepth() int {
	return m.InputDepth
}

// Apply pools every tensor in the batch.
func (m *MaxPool) Apply(in anydiff.Res, batch int) anydiff.Res {
	inSize := m.InputWidth * m.InputHeight * m.InputDepth
	if in.Output().Len() != batch*inSize {
		panic(fmt.Sprintf("MaxPool input should have length %d but has %d",
			batch*inSize, in.Output().Len()))
	}
	cr := in.Output().Creator()
	gather := m.gatherMapper(cr)
	pools := cr.MakeVector(gather.OutSize())

	res := &maxPoolRes{Gather: gather, In: in}
	outs := make([]anyvec.Vector, batch)
	for i := range outs {
		gather.Map(in.Output().Slice(inSize*i, inSize*(i+1)), pools)
		picker := anyvec.MapMax(pools, m.SpanX*m.SpanY)
		outs[i] = cr.MakeVector(picker.OutSize())
		picker.Map(pools, outs[i])
		res.Pickers = append(res.Pickers, picker)
	}
	res.OutVec = cr.Concat(outs...)
	return res
}

// SerializerType returns the unique ID used to serialize
// a MaxPool with the serializer package.
func (m *MaxPool) SerializerType() string {
	return "github.com/unixpickle/emgnet/emgconv.MaxPool"
}

// Serialize serializes the layer.
func (m *MaxPool) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(m.SpanX),
		serializer.Int(m.SpanY),
		serializer.Int(m.StrideX),
		serializer.Int(m.StrideY),
		serializer.Int(m.InputWidth),
		serializer.Int(m.InputHeight),
		serializer.Int(m.InputDepth),
	)
}

func (m *MaxPool) strideX() int {
	if m.StrideX == 0 {
		return m.SpanX
	}
	return m.StrideX
}

func (m *MaxPool) strideY() int {
	if m.StrideY == 0 {
		return m.SpanY
	}
	return m.StrideY
}

// gatherMapper lays every pool out as a contiguous run of
// SpanX*SpanY values, ordered by output position and then
// by depth.
func (m *MaxPool) gatherMapper(cr anyvec.Creator) anyvec.Mapper {
	m.gatherLock.Lock()
	defer m.gatherLock.Unlock()
	if m.gather != nil && m.gather.Creator() == cr {
		return m.gather
	}
	var mapping []int
	rowStride := m.InputWidth * m.InputDepth
	for y := 0; y+m.SpanY <= m.InputHeight; y += m.strideY() {
		for x := 0; x+m.SpanX <= m.InputWidth; x += m.strideX() {
			for z := 0; z < m.InputDepth; z++ {
				for subY := 0; subY < m.SpanY; subY++ {
					for subX := 0; subX < m.SpanX; subX++ {
						mapping = append(mapping, (y+subY)*rowStride+(x+subX)*m.InputDepth+z)
					}
				}
			}
		}
	}
	m.gather = cr.MakeMapper(m.InputWidth*m.InputHeight*m.InputDepth, mapping)
	return m.gather
}

type maxPoolRes struct {
	Gather  anyvec.Mapper
	Pickers []anyvec.Mapper
	In      anydiff.Res
	OutVec  anyvec.Vector
}

func (m *maxPoolRes) Output() anyvec.Vector {
	return m.OutVec
}

func (m *maxPoolRes) Vars() anydiff.VarSet {
	return m.In.Vars()
}

func (m *maxPoolRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	cr := u.Creator()
	outSize := u.Len() / len(m.Pickers)
	ups := make([]anyvec.Vector, len(m.Pickers))
	for i, picker := range m.Pickers {
		pools := cr.MakeVector(picker.InSize())
		picker.MapTranspose(u.Slice(outSize*i, outSize*(i+1)), pools)
		ups[i] = cr.MakeVector(m.Gather.InSize())
		m.Gather.MapTranspose(pools, ups[i])
	}
	m.In.Propagate(cr.Concat(ups...), g)
}
