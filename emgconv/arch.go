package emgconv

import (
	"fmt"
	"strings"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/emgnet"
)

// Shape describes the windows a network classifies.
type Shape struct {
	// Channels is the number of electrodes, which becomes
	// the tensor height.
	Channels int

	// Width is the number of time steps per window.
	Width int

	// Classes is the number of gestures.
	Classes int
}

// NewNetwork builds the default sEMG classifier.
//
// The basic network is one convolution and pooling stage
// followed by a linear read-out.
// The enhanced network adds a second convolution stage, a
// hidden fully-connected layer, and dropout.
//
// Filter and pool sizes shrink as needed to fit small
// windows.
func NewNetwork(c anyvec.Creator, s Shape, enhanced bool) emgnet.Net {
	return buildArch(c, s, enhanced).net
}

// Markup returns the convmarkup description of the
// network that NewNetwork builds for the same arguments.
func Markup(s Shape, enhanced bool) string {
	return strings.Join(buildArch(nil, s, enhanced).markup, "\n") + "\n"
}

func buildArch(c anyvec.Creator, s Shape, enhanced bool) *archBuilder {
	if s.Channels <= 0 || s.Width <= 0 || s.Classes <= 0 {
		panic(fmt.Sprintf("invalid network shape: %+v", s))
	}
	b := &archBuilder{creator: c, width: s.Width, height: s.Channels, depth: 1}
	b.markup = append(b.markup, fmt.Sprintf("Input(w=%d, h=%d, d=1)", s.Width, s.Channels))
	if enhanced {
		b.conv(32, 5, 3)
		b.relu()
		b.maxPool(2, 1)
		b.conv(64, 3, 3)
		b.relu()
		b.maxPool(2, 1)
		b.dropout(0.5)
		b.fc(128)
		b.relu()
		b.dropout(0.5)
	} else {
		b.conv(16, 5, 3)
		b.relu()
		b.maxPool(2, 1)
	}
	b.fc(s.Classes)
	return b
}

// archBuilder tracks tensor dimensions while it appends
// layers and their markup.
// With a nil creator only markup is produced.
type archBuilder struct {
	creator anyvec.Creator

	width, height, depth int

	net    emgnet.Net
	markup []string
}

func (a *archBuilder) conv(filters, w, h int) {
	w, h = minInt(w, a.width), minInt(h, a.height)
	a.markup = append(a.markup, fmt.Sprintf("Conv(w=%d, h=%d, n=%d)", w, h, filters))
	layer := &Conv{
		FilterCount:  filters,
		FilterWidth:  w,
		FilterHeight: h,
		StrideX:      1,
		StrideY:      1,
		InputWidth:   a.width,
		InputHeight:  a.height,
		InputDepth:   a.depth,
	}
	if a.creator != nil {
		layer.InitRand(a.creator)
		a.net = append(a.net, layer)
	}
	a.width, a.height, a.depth = layer.OutputWidth(), layer.OutputHeight(), filters
}

func (a *archBuilder) maxPool(w, h int) {
	if a.width < w || a.height < h {
		return
	}
	a.markup = append(a.markup, fmt.Sprintf("MaxPool(w=%d, h=%d)", w, h))
	layer := &MaxPool{
		SpanX:       w,
		SpanY:       h,
		InputWidth:  a.width,
		InputHeight: a.height,
		InputDepth:  a.depth,
	}
	if a.creator != nil {
		a.net = append(a.net, layer)
	}
	a.width, a.height = layer.OutputWidth(), layer.OutputHeight()
}

func (a *archBuilder) relu() {
	a.markup = append(a.markup, emgnet.ReLU.String())
	if a.creator != nil {
		a.net = append(a.net, emgnet.ReLU)
	}
}

func (a *archBuilder) dropout(keep float64) {
	a.markup = append(a.markup, fmt.Sprintf("Dropout(prob=%g)", keep))
	if a.creator != nil {
		a.net = append(a.net, &emgnet.Dropout{KeepProb: keep})
	}
}

func (a *archBuilder) fc(out int) {
	in := a.width * a.height * a.depth
	a.markup = append(a.markup, fmt.Sprintf("FC(out=%d)", out))
	if a.creator != nil {
		a.net = append(a.net, emgnet.NewFC(a.creator, in, out))
	}
	a.width, a.height, a.depth = 1, 1, out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
