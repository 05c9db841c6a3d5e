package radiance

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

// An Image is a buffer of float32 radiance triplets. Channels are
// interleaved R,G,B; row 0 is the topmost displayed row. It implements
// image.Image and hdr.Image, so the hdr package's encoders and tone mapping
// operators can consume it directly.
type Image struct {
	Width  int
	Height int
	Pix  []float32
}

func New(w, h int) *Image {
	return &Image{
		Width:  w,
		Height: h,
		Pix:    make([]float32, w*h*3),
	}
}

// FromHDR copies any hdr.Image into a radiance Image, rebased at the origin.
func FromHDR(m hdr.Image) *Image {
	if im, ok := m.(*Image); ok {
		return im
	}

	bounds := m.Bounds()
	im := New(bounds.Dx(), bounds.Dy())
	for y:=0; y<im.Height; y++ {
		for x:=0; x<im.Width; x++ {
			r, g, b, _ := m.HDRAt(bounds.Min.X+x, bounds.Min.Y+y).HDRRGBA()
			im.SetRGB(x, y, float32(r), float32(g), float32(b))
		}
	}
	return im
}

func (im *Image)offset(x, y int) int { return (y*im.Width + x) * 3 }

func (im *Image)RGB(x, y int) (float32, float32, float32) {
	i := im.offset(x, y)
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

func (im *Image)SetRGB(x, y int, r, g, b float32) {
	i := im.offset(x, y)
	im.Pix[i], im.Pix[i+1], im.Pix[i+2] = r, g, b
}

func (im *Image)SameSize(other *Image) bool {
	return im.Width == other.Width && im.Height == other.Height
}

// Validate checks the buffer length against the dimensions.
func (im *Image)Validate() error {
	if im.Width <= 0 || im.Height <= 0 {
		return fmt.Errorf("bad dimensions %dx%d", im.Width, im.Height)
	}
	if len(im.Pix) != im.Width*im.Height*3 {
		return fmt.Errorf("buffer holds %d floats, %dx%d needs %d", len(im.Pix), im.Width, im.Height, im.Width*im.Height*3)
	}
	return nil
}

// checkDimensions refuses sizes a decoded buffer could not be addressed with.
func checkDimensions(w, h int) error {
	if w <= 0 || h <= 0 || w > math.MaxInt/h/bytesPerPixel {
		return hdrerr.Formatf("bad dimensions %dx%d", w, h)
	}
	return nil
}

func (im *Image)Clone() *Image {
	c := New(im.Width, im.Height)
	copy(c.Pix, im.Pix)
	return c
}

func (im *Image)String() string {
	return fmt.Sprintf("radiance[%dx%d]", im.Width, im.Height)
}

// Implement image.Image
func (im *Image)ColorModel() color.Model { return hdrcolor.RGBModel }
func (im *Image)Bounds() image.Rectangle { return image.Rect(0, 0, im.Width, im.Height) }
func (im *Image)At(x, y int) color.Color { return im.HDRAt(x, y) }

// Implement hdr.Image
func (im *Image)Size() int { return im.Width * im.Height }
func (im *Image)HDRAt(x, y int) hdrcolor.Color {
	if !(image.Point{x, y}.In(im.Bounds())) {
		return hdrcolor.RGB{}
	}
	r, g, b := im.RGB(x, y)
	return hdrcolor.RGB{R: float64(r), G: float64(g), B: float64(b)}
}
