package radiance

import(
	"log"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

// Transcode converts a radiance file between float containers, e.g. HDR to
// EXR. Going to an 8-bit raster needs a tone mapping step, which is the
// caller's business.
func Transcode(src, dst string, opts Options) error {
	srcFormat, err := FormatFromPath(src)
	if err != nil {
		return err
	}
	dstFormat, err := FormatFromPath(dst)
	if err != nil {
		return err
	}
	if !srcFormat.IsFloat() || !dstFormat.IsFloat() {
		return hdrerr.Formatf("transcode %s -> %s: both ends must be float containers", srcFormat, dstFormat)
	}

	im, err := Decode(src)
	if err != nil {
		return err
	}
	if err := EncodeWithOptions(dst, im, opts); err != nil {
		return err
	}

	log.Printf("Transcoded %s (%s) -> %s (%s), %s\n", src, srcFormat, dst, dstFormat, im)
	return nil
}
