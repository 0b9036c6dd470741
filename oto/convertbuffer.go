package oto

import "math"

// floatBufferTo16BitLE converts a []float32 buffer to 16-bit
// little-endian samples, clamping to [-1,1], appending to ret.
func floatBufferTo16BitLE(buffer []float32, ret []byte) []byte {
	for _, v := range buffer {
		var uv int16
		if v < -1.0 {
			uv = -math.MaxInt16
		} else if v > 1.0 {
			uv = math.MaxInt16
		} else {
			uv = int16(v * math.MaxInt16)
		}
		ret = append(ret, byte(uv), byte(uv>>8))
	}
	return ret
}
