// Package tonemap maps unbounded radiance onto displayable 8-bit values.
package tonemap

import(
	"image"
	"image/color"

	"github.com/abworrall/hdr-compare/pkg/emath"
	"github.com/abworrall/hdr-compare/pkg/radiance"
)

const DefaultGamma = 2.2

// GammaCompress raises every channel to 1/gamma. Negative values have no
// real root and come out as 0.
func GammaCompress(im *radiance.Image, gamma float64) *radiance.Image {
	out := radiance.New(im.Width, im.Height)
	for i, v := range im.Pix {
		out.Pix[i] = float32(emath.GammaCompress_F64(float64(v), gamma))
	}
	return out
}

// ToDisplay is ToDisplayGamma with the default gamma of 2.2.
func ToDisplay(im *radiance.Image) *image.RGBA {
	return ToDisplayGamma(im, DefaultGamma)
}

// ToDisplayGamma gamma compresses, clamps to [0,1], scales to [0,255] and
// truncates. The clamp happens before scaling, so nothing wraps.
func ToDisplayGamma(im *radiance.Image, gamma float64) *image.RGBA {
	compressed := GammaCompress(im, gamma)
	out := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))

	for y:=0; y<im.Height; y++ {
		for x:=0; x<im.Width; x++ {
			r, g, b := compressed.RGB(x, y)
			out.SetRGBA(x, y, color.RGBA{to8(r), to8(g), to8(b), 255})
		}
	}

	return out
}

func to8(v float32) uint8 {
	return uint8(emath.Clamp_F64(float64(v), 0, 1) * 255)
}
