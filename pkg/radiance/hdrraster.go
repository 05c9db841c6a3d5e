package radiance

import(
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"strconv"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/pfm"
	"github.com/mdouchement/hdr/codec/rgbe"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

// The HDR container holds one of two encodings, told apart by the first two
// bytes:
//   "PF" - a float raster (PFM): a text header "PF\n<w> <h>\n<scale>\n"
//          followed by raw float32 triplets, rows stored bottom to top. "Pf"
//          declares one channel, which we refuse.
//   "#?" - a Radiance RGBE picture.
// Both go through the hdr package's codecs.
type hdrCodec struct{}

const bytesPerPixel = 3 * 4

func (c hdrCodec)decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %v", err)
	}

	if bytes.HasPrefix(data, []byte("#?")) {
		return decodeRGBE(bytes.NewReader(data))
	}

	// pfm.Decode neither refuses "Pf" cleanly nor notices trailing bytes, so
	// the header is checked here first.
	br := bytes.NewReader(data)
	w, h, err := readFloatRasterHeader(br)
	if err != nil {
		return nil, err
	}
	if payload := br.Len(); payload != w*h*bytesPerPixel {
		return nil, hdrerr.Formatf("payload is %d bytes, %dx%d needs %d", payload, w, h, w*h*bytesPerPixel)
	}

	m, err := pfm.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, hdrerr.Formatf("pfm: %v", err)
	}
	hm, ok := m.(hdr.Image)
	if !ok {
		return nil, hdrerr.Formatf("pfm decoder returned %T", m)
	}
	return FromHDR(hm), nil
}

func (c hdrCodec)size(r io.Reader) (int, int, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return 0, 0, hdrerr.Formatf("short header: %v", err)
	}

	var cfg image.Config
	switch string(magic) {
	case "#?":
		cfg, err = rgbe.DecodeConfig(br)
	case "PF":
		cfg, err = pfm.DecodeConfig(br)
	case "Pf":
		return 0, 0, hdrerr.Formatf("header declares 1 channel, want 3")
	default:
		return 0, 0, hdrerr.Formatf("unrecognized magic %q", magic)
	}
	if err != nil {
		return 0, 0, hdrerr.Formatf("header: %v", err)
	}

	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func (c hdrCodec)encode(w io.Writer, m image.Image, ext string, opts Options) error {
	hm, ok := m.(hdr.Image)
	if !ok {
		return hdrerr.Formatf("%T is not an HDR image; only float radiance can be stored as HDR", m)
	}
	if im, ok := hm.(*Image); ok {
		if err := im.Validate(); err != nil {
			return hdrerr.Formatf("%v", err)
		}
	}

	if opts.HDREncoding == "rgbe" {
		return rgbe.Encode(w, hm)
	}
	return pfm.Encode(w, hm)
}

func readFloatRasterHeader(br io.ByteReader) (int, int, error) {
	magic, err := readHeaderToken(br)
	if err != nil {
		return 0, 0, err
	}
	switch magic {
	case "PF": // three channels
	case "Pf":
		return 0, 0, hdrerr.Formatf("header declares 1 channel, want 3")
	default:
		return 0, 0, hdrerr.Formatf("unrecognized magic %q", magic)
	}

	var dims [2]int
	for i := range dims {
		tok, err := readHeaderToken(br)
		if err != nil {
			return 0, 0, err
		}
		if dims[i], err = strconv.Atoi(tok); err != nil || dims[i] <= 0 {
			return 0, 0, hdrerr.Formatf("bad dimension %q", tok)
		}
	}
	if err := checkDimensions(dims[0], dims[1]); err != nil {
		return 0, 0, err
	}

	tok, err := readHeaderToken(br)
	if err != nil {
		return 0, 0, err
	}
	if scale, err := strconv.ParseFloat(tok, 64); err != nil || scale == 0 {
		return 0, 0, hdrerr.Formatf("bad scale %q", tok)
	}

	return dims[0], dims[1], nil
}

// readHeaderToken skips leading whitespace, then reads up to and including
// the single whitespace byte that ends the token.
func readHeaderToken(br io.ByteReader) (string, error) {
	tok := []byte{}
	for {
		c, err := br.ReadByte()
		if err != nil {
			return "", hdrerr.Formatf("truncated header: %v", err)
		}
		isSpace := c == ' ' || c == '\n' || c == '\r' || c == '\t'
		switch {
		case isSpace && len(tok) == 0:
			continue
		case isSpace:
			return string(tok), nil
		case len(tok) > 64:
			return "", hdrerr.Formatf("header token too long")
		}
		tok = append(tok, c)
	}
}

func decodeRGBE(r io.Reader) (*Image, error) {
	m, err := rgbe.Decode(r)
	if err != nil {
		return nil, hdrerr.Formatf("rgbe: %v", err)
	}
	hm, ok := m.(hdr.Image)
	if !ok {
		return nil, hdrerr.Formatf("rgbe decoder returned %T", m)
	}
	return FromHDR(hm), nil
}
