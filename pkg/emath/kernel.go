package emath

import(
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Small kernels are fixed binomial approximations; larger ones are sampled
// from a Gaussian whose sigma is derived from the size.
var smallGaussianKernels = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// SigmaForKernelSize is the standard deviation used when a blur is asked for
// by kernel size alone.
func SigmaForKernelSize(size int) float64 {
	return 0.3 * ((float64(size)-1)*0.5 - 1) + 0.8
}

// GaussianKernel returns a normalized 1-D Gaussian kernel of the given size,
// which must be positive and odd.
func GaussianKernel(size int) ([]float64, error) {
	if size <= 0 || size%2 == 0 {
		return nil, fmt.Errorf("kernel size %d is not a positive odd integer", size)
	}

	if k, exists := smallGaussianKernels[size]; exists {
		return append([]float64(nil), k...), nil
	}

	sigma := SigmaForKernelSize(size)
	kernel := make([]float64, size)
	r := size / 2
	for i := range kernel {
		x := float64(i - r)
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)

	return kernel, nil
}
