package radiance

import(
	"image"
	"image/png"
	"io"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

// raster8Codec is the sink for tone mapped output. Eight bits per channel
// cannot carry radiance, so it never produces an Image.
type raster8Codec struct{}

func (c raster8Codec)decode(r io.Reader) (*Image, error) {
	return nil, hdrerr.Formatf("8-bit rasters cannot be decoded as radiance")
}

func (c raster8Codec)size(r io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, hdrerr.Formatf("%v", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (c raster8Codec)encode(w io.Writer, m image.Image, ext string, opts Options) error {
	if _, isHDR := m.(hdr.Image); isHDR {
		return hdrerr.Formatf("refusing to write radiance into an 8-bit raster, tone map it first")
	}

	switch ext {
	case ".tif", ".tiff":
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		return bmp.Encode(w, m)
	}
	return png.Encode(w, m)
}

// DecodeDisplay reads an already tone mapped 8-bit file back, e.g. to stitch
// previously written outputs together. It is not a radiance source.
func DecodeDisplay(path string) (image.Image, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format != Raster8Bit {
		return nil, hdrerr.Formatf("'%s' is a %s file, not a display raster", path, format)
	}

	reader, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open+r '%s'", path)
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, errors.Wrapf(hdrerr.ErrFormat, "decode '%s': %v", path, err)
	}
	return img, nil
}
