package emgnet

import (
	"fmt"

	"github.com/unixpickle/anyvec"
)

// Float converts an anyvec.Numeric from the float32 or
// float64 backends to a float64.
func Float(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", n))
	}
}

// FloatData returns a float64 copy of the vector's data.
// The vector must come from a float32 or float64 backend.
func FloatData(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	case []float64:
		return data
	default:
		panic(fmt.Sprintf("unsupported numeric list: %T", data))
	}
}
