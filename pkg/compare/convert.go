package compare

import(
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/abworrall/hdr-compare/pkg/ecolor"
	"github.com/abworrall/hdr-compare/pkg/emath"
	"github.com/abworrall/hdr-compare/pkg/grid"
	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/radiance"
	"github.com/abworrall/hdr-compare/pkg/tonemap"
)

func basename(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Convert rewrites src as dst. Between float containers the radiance is
// carried over untouched; into an 8-bit raster it is tone mapped with the
// configured operator. An empty dst means <OutputDir>/<src basename>.png.
func Convert(c Config, src, dst string) (string, error) {
	if dst == "" {
		dst = filepath.Join(c.OutputDir, basename(src) + ".png")
	}

	format, err := radiance.FormatFromPath(dst)
	if err != nil {
		return "", err
	}
	if format.IsFloat() {
		return dst, radiance.Transcode(src, dst, c.EncodeOptions())
	}

	im, err := radiance.Decode(src)
	if err != nil {
		return "", err
	}
	out, err := tonemap.Apply(c.Tonemapper, im, c.Gamma)
	if err != nil {
		return "", err
	}
	if err := radiance.Encode(dst, out); err != nil {
		return "", err
	}

	if c.Verbosity > 0 {
		log.Printf("Converted %s -> %s (tonemapper %q)\n", src, dst, c.Tonemapper)
	}
	return dst, nil
}

// Heatmap renders one channel of src (r, g, b, or y for luminance) as a
// false-colour image, after gamma compression and clipping to
// [Heatmap.Min,Heatmap.Max]. An empty dst means
// <OutputDir>/<src basename>.heatmap.png.
func Heatmap(c Config, src, dst string) (string, error) {
	if dst == "" {
		dst = filepath.Join(c.OutputDir, basename(src) + ".heatmap.png")
	}

	im, err := radiance.Decode(src)
	if err != nil {
		return "", err
	}

	fg := emath.NewFloatGrid(im.Width, im.Height)
	for y:=0; y<im.Height; y++ {
		for x:=0; x<im.Width; x++ {
			r, g, b := im.RGB(x, y)
			var v float64
			switch c.Heatmap.Channel {
			case "", "r": v = float64(r)
			case "g":     v = float64(g)
			case "b":     v = float64(b)
			case "y":     v = ecolor.Luminance(float64(r), float64(g), float64(b))
			default:
				return "", hdrerr.Invalidf("heatmap channel '%s'", c.Heatmap.Channel)
			}
			fg.Set(x, y, emath.GammaCompress_F64(v, c.Gamma))
		}
	}

	hi := c.Heatmap.Max
	if hi == 0 {
		hi = math.Inf(1)
	}
	if c.Verbosity > 0 {
		log.Printf("Heatmap of %s: %s\n", src, fg.Stats())
	}

	title := basename(src) + " [" + c.Heatmap.Channel + "]"
	if err := radiance.Encode(dst, fg.ToHeatmap(c.Heatmap.Min, hi, title)); err != nil {
		return "", err
	}
	return dst, nil
}

// Arrange puts two renders side by side, tone mapped and captioned with
// their names. An empty dst means <OutputDir>/<a>_<b>.png.
func Arrange(c Config, pathA, pathB, dst string) (string, error) {
	if dst == "" {
		dst = filepath.Join(c.OutputDir, basename(pathA) + "_" + basename(pathB) + ".png")
	}

	tl, err := newTileLoader(pathA)
	if err != nil {
		return "", err
	}

	gc := c.GridConfig(ecolor.White)
	gc.SkipDiagonal = true
	g, err := grid.New(gc, 1, 2, tl.W, tl.H)
	if err != nil {
		return "", err
	}

	for i, path := range []string{pathA, pathB} {
		im, err := tl.load(path)
		if err != nil {
			return "", err
		}
		tile, err := tonemap.Apply(c.Tonemapper, im, c.Gamma)
		if err != nil {
			return "", err
		}
		if err := g.PlaceTile(grid.Cell{Row: 0, Col: i}, tile, basename(path)); err != nil {
			return "", err
		}
	}

	g.Finish()
	if err := radiance.Encode(dst, g.Image()); err != nil {
		return "", err
	}
	if c.Verbosity > 0 {
		log.Printf("Arranged %s | %s -> %s (tonemapper %q)\n", pathA, pathB, dst, c.Tonemapper)
	}
	return dst, nil
}
