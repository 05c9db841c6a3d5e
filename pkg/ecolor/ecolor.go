package ecolor

import(
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mdouchement/hdr/hdrcolor"
)

var(
	Neutral = color.RGBA{128, 128, 128, 255} // separator lines
	Red     = color.RGBA{255,   0,   0, 255}
	White   = color.RGBA{255, 255, 255, 255}
)

// ParseHex turns a config string like "#ff8000" into an opaque color. An
// empty string yields the fallback.
func ParseHex(s string, fallback color.RGBA) (color.RGBA, error) {
	if s == "" {
		return fallback, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback, fmt.Errorf("color '%s': %v", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// Hex is the inverse of ParseHex, used when writing configs back out.
func Hex(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

// Luminance is the Y of the linear RGB triple, as computed by hdrcolor's XYZ
// conversion.
func Luminance(r, g, b float64) float64 {
	c := hdrcolor.RGB{R: r, G: g, B: b}
	_, Y, _, _ := c.HDRXYZA()
	return Y
}
