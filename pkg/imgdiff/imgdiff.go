// Package imgdiff compares radiance images: signed differences, Gaussian
// smoothing of those differences, and summary error statistics.
package imgdiff

import(
	"math"

	"github.com/pkg/errors"

	"github.com/abworrall/hdr-compare/pkg/emath"
	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/radiance"
)

// Difference returns a-b per pixel per channel. The result is signed.
func Difference(a, b *radiance.Image) (*radiance.Image, error) {
	if !a.SameSize(b) {
		return nil, errors.Wrapf(hdrerr.ErrShapeMismatch, "%s vs %s", a, b)
	}

	out := radiance.New(a.Width, a.Height)
	for i := range a.Pix {
		out.Pix[i] = a.Pix[i] - b.Pix[i]
	}
	return out, nil
}

// Smooth blurs each channel with a square Gaussian kernel of side
// kernelSize, which must be a positive odd integer. Sigma is derived from the
// size (see emath.SigmaForKernelSize); edges use reflect-101.
func Smooth(im *radiance.Image, kernelSize int) (*radiance.Image, error) {
	kernel, err := emath.GaussianKernel(kernelSize)
	if err != nil {
		return nil, errors.Wrap(hdrerr.ErrInvalidParameter, err.Error())
	}

	out := radiance.New(im.Width, im.Height)
	for c:=0; c<3; c++ {
		plane := channelGrid(im, c)
		blurred := plane.Convolve(kernel)
		for y:=0; y<im.Height; y++ {
			for x:=0; x<im.Width; x++ {
				out.Pix[(y*im.Width+x)*3+c] = float32(blurred.Get(x, y))
			}
		}
	}
	return out, nil
}

// Abs returns |v| for every channel value.
func Abs(im *radiance.Image) *radiance.Image {
	out := radiance.New(im.Width, im.Height)
	for i, v := range im.Pix {
		out.Pix[i] = float32(math.Abs(float64(v)))
	}
	return out
}

// Compare is the visualization pipeline for a pair of renders:
// |smooth(a-b)|. The absolute value is taken after the blur, so signed
// errors partly cancel out instead of being rectified first.
func Compare(a, b *radiance.Image, kernelSize int) (*radiance.Image, error) {
	diff, err := Difference(a, b)
	if err != nil {
		return nil, err
	}
	smoothed, err := Smooth(diff, kernelSize)
	if err != nil {
		return nil, err
	}
	return Abs(smoothed), nil
}

func channelGrid(im *radiance.Image, c int) emath.FloatGrid {
	g := emath.NewFloatGrid(im.Width, im.Height)
	for y:=0; y<im.Height; y++ {
		for x:=0; x<im.Width; x++ {
			g.Set(x, y, float64(im.Pix[(y*im.Width+x)*3+c]))
		}
	}
	return g
}
