package radiance

import(
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

// ContainerFormat is the closed set of on-disk containers. Each one has a
// single codec strategy; the tag is derived from the file extension.
type ContainerFormat int

const(
	RadianceRasterHDR ContainerFormat = iota // float raster (or Radiance RGBE), 3 channels
	TiledFloatEXR                            // OpenEXR, one float plane per channel
	Raster8Bit                               // tone mapped output only
)

var(
	extensions = map[string]ContainerFormat{
		".hdr":  RadianceRasterHDR,
		".pfm":  RadianceRasterHDR,
		".exr":  TiledFloatEXR,
		".png":  Raster8Bit,
		".tif":  Raster8Bit,
		".tiff": Raster8Bit,
		".bmp":  Raster8Bit,
	}

	codecs = map[ContainerFormat]codec{
		RadianceRasterHDR: hdrCodec{},
		TiledFloatEXR:     exrCodec{},
		Raster8Bit:        raster8Codec{},
	}
)

func (f ContainerFormat)String() string {
	switch f {
	case RadianceRasterHDR: return "HDR"
	case TiledFloatEXR:     return "EXR"
	case Raster8Bit:        return "8-bit raster"
	}
	return "unknown"
}

// IsFloat reports whether the container stores unclamped radiance.
func (f ContainerFormat)IsFloat() bool { return f != Raster8Bit }

// A codec is the decode/encode strategy for one ContainerFormat.
type codec interface {
	decode(r io.Reader) (*Image, error)
	size(r io.Reader) (int, int, error)
	encode(w io.Writer, m image.Image, ext string, opts Options) error
}

// Options tune the encoders. The zero value selects the defaults.
type Options struct {
	HDREncoding    string // "float" (default) or "rgbe"
	EXRCompression string // "none", "zips" (default) or "zip"
}

func (o Options)Validate() error {
	switch o.HDREncoding {
	case "", "float", "rgbe":
	default:
		return hdrerr.Invalidf("no HDR encoding named '%s'", o.HDREncoding)
	}
	if _, err := exrCompressionByName(o.EXRCompression); err != nil {
		return err
	}
	return nil
}

func FormatFromPath(path string) (ContainerFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, exists := extensions[ext]; exists {
		return f, nil
	}
	return 0, hdrerr.Formatf("'%s': unsupported extension '%s'", path, ext)
}

// Decode reads a radiance image, picking the container by extension.
func Decode(path string) (*Image, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	reader, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open+r '%s'", path)
	}
	defer reader.Close()

	im, err := codecs[format].decode(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "decode '%s' as %s", path, format)
	}
	return im, nil
}

// ImageSize reads only the header of the file.
func ImageSize(path string) (int, int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, 0, err
	}

	reader, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "open+r '%s'", path)
	}
	defer reader.Close()

	w, h, err := codecs[format].size(reader)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "header of '%s' as %s", path, format)
	}
	return w, h, nil
}

func Encode(path string, m image.Image) error {
	return EncodeWithOptions(path, m, Options{})
}

// EncodeWithOptions writes m into the container named by the extension.
// Float containers take an hdr.Image; the 8-bit container refuses one, so
// radiance has to be tone mapped first. The write is staged, so either the
// complete file appears at path or nothing does.
func EncodeWithOptions(path string, m image.Image, opts Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	err = writeStaged(path, func(w io.Writer) error {
		return codecs[format].encode(w, m, ext, opts)
	})
	if err != nil {
		return errors.Wrapf(err, "encode '%s' as %s", path, format)
	}
	return nil
}
