package model

// toCHW reorders an interleaved height×width×channel buffer into planar
// channel-first order, the way the FER preprocessing laid out its input.
func toCHW(dst, src []float32, size, channels int) {
	plane := size * size
	for p := 0; p < plane; p++ {
		for c := 0; c < channels; c++ {
			dst[c*plane+p] = src[p*channels+c]
		}
	}
}

func fromCHW(dst, src []float32, size, channels int) {
	plane := size * size
	for p := 0; p < plane; p++ {
		for c := 0; c < channels; c++ {
			dst[p*channels+c] = src[c*plane+p]
		}
	}
}
