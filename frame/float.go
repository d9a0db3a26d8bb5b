package frame

import "math"

func encodeFloat32(f float32) uint32 {
	return math.Float32bits(f)
}

func decodeFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}
