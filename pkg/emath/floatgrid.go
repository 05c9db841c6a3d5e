package emath

import(
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// A FloatGrid is a single-channel plane of floats, with some operations. The
// radiance images are split into one of these per channel for filtering.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid)Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

// Reflect101 maps an out-of-range index back into [0,n), mirroring about the
// edge pixels without repeating them: dcb|abcd|cba. A single-pixel axis
// always maps to 0.
func Reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// Convolve applies a separable filter: the same 1-D kernel along X, then
// along Y. The kernel length must be odd; its center tap sits on the pixel.
// Pixels beyond the edges are taken from Reflect101.
func (g1 FloatGrid)Convolve(kernel []float64) FloatGrid {
	width := g1.Dx()
	height := g1.Dy()
	r := len(kernel) / 2

	T  := g1.NewFromThis()
	g2 := g1.NewFromThis()

	//--- X pass, build up in T
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			t := 0.0
			for i, k := range kernel {
				t += k * g1.Get(Reflect101(x+i-r, width), y)
			}
			T.Set(x, y, t)
		}
	}

	//--- Y pass, read from T and generate output
	for x:=0; x<width; x++ {
		for y:=0; y<height; y++ {
			t := 0.0
			for i, k := range kernel {
				t += k * T.Get(x, Reflect101(y+i-r, height))
			}
			g2.Set(x, y, t)
		}
	}

	return g2
}

func (fg *FloatGrid)MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min

	for i:=0 ; i<len(fg.values) ; i++ {
		if fg.values[i] > max { max = fg.values[i] }
		if fg.values[i] < min { min = fg.values[i] }
	}
	return min, max
}

func (fg *FloatGrid)Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToHeatmap renders the grid as a false-colour image: values are clipped to
// [lo,hi], rescaled over the range actually present, and mapped from blue
// (low) to red (high). If title is not empty it is drawn in the top left.
func (fg *FloatGrid)ToHeatmap(lo, hi float64, title string) image.Image {
	clipped := fg.Copy()
	for i:=0; i<len(clipped.values); i++ {
		clipped.values[i] = Clamp_F64(clipped.values[i], lo, hi)
	}
	min, max := clipped.MinMax()
	span := max - min
	if span <= 0 {
		span = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, fg.Dx(), fg.Dy()))
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			t := (clipped.Get(x,y) - min) / span
			img.Set(x, y, colorful.Hsv(240.0 * (1.0 - t), 1.0, 1.0))
		}
	}

	if title == "" {
		return img
	}

	dc := gg.NewContextForRGBA(img)
	dc.SetRGB(1,1,1)
	dc.DrawString(title, 5, 15)
	return dc.Image()
}
