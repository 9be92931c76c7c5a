package emgsgd

// A Hasher is a SampleList that can hash its samples.
// Equal samples must hash equally.
type Hasher interface {
	SampleList
	Hash(i int) []byte
}

// HashSplit partitions h by sample hash.
// The partition depends only on sample contents, so a
// sample lands on the same side no matter how the list
// is ordered or grown.
//
// The leftRatio argument is the expected fraction of
// samples in the left partition.
// The Hasher is reordered in place.
func HashSplit(h Hasher, leftRatio float64) (left, right SampleList) {
	if leftRatio <= 0 {
		return h.Slice(0, 0), h
	} else if leftRatio >= 1 {
		return h, h.Slice(0, 0)
	}
	cutoff := hashCutoff(leftRatio)
	split := 0
	for i := 0; i < h.Len(); i++ {
		if compareHashes(h.Hash(i), cutoff) < 0 {
			h.Swap(split, i)
			split++
		}
	}
	return h.Slice(0, split), h.Slice(split, h.Len())
}

// hashCutoff expresses ratio as a big-endian fraction of
// the hash space.
func hashCutoff(ratio float64) []byte {
	res := make([]byte, 8)
	for i := range res {
		ratio *= 256
		value := int(ratio)
		ratio -= float64(value)
		if value > 255 {
			value = 255
		}
		res[i] = byte(value)
	}
	return res
}

func compareHashes(h1, h2 []byte) int {
	n := len(h1)
	if len(h2) > n {
		n = len(h2)
	}
	for i := 0; i < n; i++ {
		var b1, b2 byte
		if i < len(h1) {
			b1 = h1[i]
		}
		if i < len(h2) {
			b2 = h2[i]
		}
		if b1 < b2 {
			return -1
		} else if b1 > b2 {
			return 1
		}
	}
	return 0
}
