package emath

import "math"

// Some functions that only operate on basic types, that are useful

// GammaCompress_F64 returns f^(1/gamma). Values that have no real root
// (negative inputs) or that come out as NaN are returned as 0, so that a later
// clamp never sees a NaN.
func GammaCompress_F64(f, gamma float64) float64 {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	v := math.Pow(f, 1.0/gamma)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func Clamp_F64(f, min, max float64) float64 {
	if f < min { return min }
	if f > max { return max }
	return f
}
