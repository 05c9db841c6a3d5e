package radiance

import(
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/mdouchement/hdr"
	"github.com/x448/float16"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

// exrCodec reads and writes single-part scanline OpenEXR files. Each channel
// is its own plane within a scanline block; we write R, G and B as FLOAT.
type exrCodec struct{}

const exrMagic = 20000630

const zlibMaxRatio = 1032

const(
	exrFlagTiled     = 0x200
	exrFlagNonImage  = 0x800
	exrFlagMultipart = 0x1000
)

const(
	exrCompressionNone = 0
	exrCompressionZips = 2
	exrCompressionZip  = 3
)

const(
	exrPixelUint  = 0
	exrPixelHalf  = 1
	exrPixelFloat = 2
)

type exrChannel struct {
	name      string
	pixelType int32
	xSampling int32
	ySampling int32
}

func (ch exrChannel)bytesPerSample() int {
	if ch.pixelType == exrPixelHalf {
		return 2
	}
	return 4
}

type exrHeader struct {
	channels    []exrChannel
	compression byte
	dataWindow  [4]int32 // xMin, yMin, xMax, yMax
	hasWindow   bool
}

func (h exrHeader)width() int  { return int(h.dataWindow[2]) - int(h.dataWindow[0]) + 1 }
func (h exrHeader)height() int { return int(h.dataWindow[3]) - int(h.dataWindow[1]) + 1 }

func (h exrHeader)sampleBytes() int {
	n := 0
	for _, ch := range h.channels {
		n += ch.bytesPerSample()
	}
	return n
}

func (h exrHeader)linesPerBlock() int {
	if h.compression == exrCompressionZip {
		return 16
	}
	return 1
}

func exrCompressionByName(name string) (byte, error) {
	switch strings.ToLower(name) {
	case "none":        return exrCompressionNone, nil
	case "", "zips":    return exrCompressionZips, nil
	case "zip":         return exrCompressionZip, nil
	}
	return 0, hdrerr.Invalidf("no EXR compression named '%s'", name)
}

// {{{ decode

func (c exrCodec)decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %v", err)
	}
	br := bytes.NewReader(data)

	h, err := readEXRHeader(br)
	if err != nil {
		return nil, err
	}

	// zlib cannot inflate by more than about 1032:1, so a dataWindow whose
	// samples could not fit in the file is corrupt.
	limit := len(data)
	if h.compression != exrCompressionNone {
		limit *= zlibMaxRatio
	}
	if h.width() > limit/h.height()/h.sampleBytes() {
		return nil, hdrerr.Formatf("dataWindow %dx%d does not fit in %d bytes", h.width(), h.height(), len(data))
	}

	lines := h.linesPerBlock()
	height := h.height()
	blockCount := (height + lines - 1) / lines
	offsets := make([]uint64, blockCount)
	for i := range offsets {
		if err := binary.Read(br, binary.LittleEndian, &offsets[i]); err != nil {
			return nil, hdrerr.Formatf("offset table: %v", err)
		}
	}

	im := New(h.width(), height)
	for block:=0; block<blockCount; block++ {
		if offsets[block] >= uint64(len(data)) {
			return nil, hdrerr.Formatf("block %d offset %d beyond end of file", block, offsets[block])
		}
		br.Reset(data[offsets[block]:])

		var y, dataSize int32
		if err := binary.Read(br, binary.LittleEndian, &y); err != nil {
			return nil, hdrerr.Formatf("block %d: %v", block, err)
		}
		if err := binary.Read(br, binary.LittleEndian, &dataSize); err != nil {
			return nil, hdrerr.Formatf("block %d: %v", block, err)
		}
		if dataSize < 0 || int(dataSize) > br.Len() {
			return nil, hdrerr.Formatf("block %d: bad size %d", block, dataSize)
		}
		raw := make([]byte, dataSize)
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, hdrerr.Formatf("block %d: %v", block, err)
		}

		startY := int(y - h.dataWindow[1])
		if startY < 0 || startY >= height {
			return nil, hdrerr.Formatf("block %d: scanline %d out of bounds", block, y)
		}
		n := lines
		if startY+n > height {
			n = height - startY
		}

		expected := 0
		for _, ch := range h.channels {
			expected += im.Width * n * ch.bytesPerSample()
		}
		unpacked, err := exrDecompress(h.compression, raw, expected)
		if err != nil {
			return nil, err
		}
		if err := exrDecodeBlock(im, h.channels, startY, n, unpacked); err != nil {
			return nil, err
		}
	}

	return im, nil
}

func (c exrCodec)size(r io.Reader) (int, int, error) {
	h, err := readEXRHeader(bufio.NewReader(r))
	if err != nil {
		return 0, 0, err
	}
	return h.width(), h.height(), nil
}

type exrByteReader interface {
	io.Reader
	io.ByteReader
}

func readEXRHeader(r exrByteReader) (exrHeader, error) {
	h := exrHeader{}

	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil || magic != exrMagic {
		return h, hdrerr.Formatf("not an OpenEXR file")
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return h, hdrerr.Formatf("no version field: %v", err)
	}
	switch {
	case version&0xff != 2:
		return h, hdrerr.Formatf("OpenEXR version %d not supported", version&0xff)
	case version&exrFlagTiled != 0:
		return h, hdrerr.Formatf("tiled OpenEXR not supported")
	case version&exrFlagNonImage != 0:
		return h, hdrerr.Formatf("deep OpenEXR not supported")
	case version&exrFlagMultipart != 0:
		return h, hdrerr.Formatf("multipart OpenEXR not supported")
	}

	for {
		name, err := readNullString(r)
		if err != nil {
			return h, err
		}
		if name == "" {
			break
		}
		typ, err := readNullString(r)
		if err != nil {
			return h, err
		}
		var size int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return h, hdrerr.Formatf("attribute %s: %v", name, err)
		}
		if size < 0 || size > 1<<24 {
			return h, hdrerr.Formatf("attribute %s: bad size %d", name, size)
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return h, hdrerr.Formatf("attribute %s: %v", name, err)
		}

		switch name {
		case "channels":
			if typ != "chlist" {
				return h, hdrerr.Formatf("channels attribute has type %s", typ)
			}
			if h.channels, err = parseEXRChannels(payload); err != nil {
				return h, err
			}
		case "compression":
			if len(payload) != 1 {
				return h, hdrerr.Formatf("bad compression attribute")
			}
			h.compression = payload[0]
		case "dataWindow":
			if typ != "box2i" || len(payload) != 16 {
				return h, hdrerr.Formatf("bad dataWindow attribute")
			}
			for i := range h.dataWindow {
				h.dataWindow[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
			}
			h.hasWindow = true
		}
	}

	switch {
	case !h.hasWindow:
		return h, hdrerr.Formatf("OpenEXR missing dataWindow")
	case h.width() <= 0 || h.height() <= 0:
		return h, hdrerr.Formatf("OpenEXR has empty dataWindow")
	case checkDimensions(h.width(), h.height()) != nil:
		return h, hdrerr.Formatf("OpenEXR dataWindow %v too large", h.dataWindow)
	case !hasRGB(h.channels):
		return h, hdrerr.Formatf("OpenEXR needs R, G and B (or Y) channels, has %d channels", len(h.channels))
	}
	switch h.compression {
	case exrCompressionNone, exrCompressionZips, exrCompressionZip:
	default:
		return h, hdrerr.Formatf("OpenEXR compression %d not supported", h.compression)
	}

	return h, nil
}

func parseEXRChannels(data []byte) ([]exrChannel, error) {
	r := bytes.NewReader(data)
	channels := []exrChannel{}
	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}

		ch := exrChannel{name: name}
		var reserved [4]byte // pLinear plus three reserved bytes
		if err := binary.Read(r, binary.LittleEndian, &ch.pixelType); err != nil {
			return nil, hdrerr.Formatf("channel %s: %v", name, err)
		}
		if _, err := io.ReadFull(r, reserved[:]); err != nil {
			return nil, hdrerr.Formatf("channel %s: %v", name, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &ch.xSampling); err != nil {
			return nil, hdrerr.Formatf("channel %s: %v", name, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &ch.ySampling); err != nil {
			return nil, hdrerr.Formatf("channel %s: %v", name, err)
		}

		switch {
		case ch.pixelType != exrPixelUint && ch.pixelType != exrPixelHalf && ch.pixelType != exrPixelFloat:
			return nil, hdrerr.Formatf("channel %s: pixel type %d not supported", name, ch.pixelType)
		case ch.xSampling != 1 || ch.ySampling != 1:
			return nil, hdrerr.Formatf("channel %s: subsampling not supported", name)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func hasRGB(channels []exrChannel) bool {
	seen := map[string]bool{}
	for _, ch := range channels {
		seen[strings.ToUpper(ch.name)] = true
	}
	return (seen["R"] && seen["G"] && seen["B"]) || seen["Y"]
}

func exrDecompress(compression byte, data []byte, expected int) ([]byte, error) {
	// Blocks that would not shrink are stored raw whatever the compression
	if compression == exrCompressionNone || len(data) == expected {
		if len(data) != expected {
			return nil, hdrerr.Formatf("block is %d bytes, want %d", len(data), expected)
		}
		return data, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, hdrerr.Formatf("zip block: %v", err)
	}
	defer zr.Close()
	unpacked, err := io.ReadAll(io.LimitReader(zr, int64(expected)+1))
	if err != nil {
		return nil, hdrerr.Formatf("zip block: %v", err)
	}
	if len(unpacked) != expected {
		return nil, hdrerr.Formatf("zip block inflates to %d bytes, want %d", len(unpacked), expected)
	}

	for i:=1; i<len(unpacked); i++ {
		unpacked[i] = byte(int(unpacked[i-1]) + int(unpacked[i]) - 128)
	}
	half := (len(unpacked) + 1) / 2
	out := make([]byte, len(unpacked))
	for i := range out {
		if i%2 == 0 {
			out[i] = unpacked[i/2]
		} else {
			out[i] = unpacked[half+i/2]
		}
	}
	return out, nil
}

func exrDecodeBlock(dst *Image, channels []exrChannel, startY, lines int, data []byte) error {
	offset := 0
	for row:=0; row<lines; row++ {
		y := startY + row
		for _, ch := range channels {
			n := dst.Width * ch.bytesPerSample()
			if offset+n > len(data) {
				return hdrerr.Formatf("block truncated at scanline %d", y)
			}
			line := data[offset:offset+n]
			offset += n

			var planes []int
			switch strings.ToUpper(ch.name) {
			case "R": planes = []int{0}
			case "G": planes = []int{1}
			case "B": planes = []int{2}
			case "Y": planes = []int{0, 1, 2}
			default:
				continue
			}

			for x:=0; x<dst.Width; x++ {
				v := exrSample(ch.pixelType, line, x)
				for _, p := range planes {
					dst.Pix[dst.offset(x, y)+p] = v
				}
			}
		}
	}
	return nil
}

func exrSample(pixelType int32, line []byte, x int) float32 {
	switch pixelType {
	case exrPixelHalf:
		return float16.Frombits(binary.LittleEndian.Uint16(line[x*2:])).Float32()
	case exrPixelUint:
		return float32(binary.LittleEndian.Uint32(line[x*4:]))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(line[x*4:]))
}

func readNullString(r io.ByteReader) (string, error) {
	buf := []byte{}
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", hdrerr.Formatf("truncated header: %v", err)
		}
		if b == 0 {
			return string(buf), nil
		}
		if len(buf) >= 255 {
			return "", hdrerr.Formatf("header name too long")
		}
		buf = append(buf, b)
	}
}

// }}}
// {{{ encode

// Channels must be stored in alphabetical order.
var exrOutputChannels = []string{"B", "G", "R"}

func (c exrCodec)encode(w io.Writer, m image.Image, ext string, opts Options) error {
	hm, ok := m.(hdr.Image)
	if !ok {
		return hdrerr.Formatf("%T is not an HDR image; only float radiance can be stored as EXR", m)
	}
	im := FromHDR(hm)
	if err := im.Validate(); err != nil {
		return hdrerr.Formatf("%v", err)
	}
	compression, err := exrCompressionByName(opts.EXRCompression)
	if err != nil {
		return err
	}

	h := exrHeader{
		compression: compression,
		dataWindow:  [4]int32{0, 0, int32(im.Width-1), int32(im.Height-1)},
	}

	header := &bytes.Buffer{}
	writeEXRHeader(header, h)

	// Build the chunks first, so the offset table can be filled in.
	lines := h.linesPerBlock()
	chunks := [][]byte{}
	for y:=0; y<im.Height; y+=lines {
		n := lines
		if y+n > im.Height {
			n = im.Height - y
		}
		raw := exrEncodeBlock(im, y, n)
		packed, err := exrCompress(compression, raw)
		if err != nil {
			return err
		}
		chunk := make([]byte, 8+len(packed))
		binary.LittleEndian.PutUint32(chunk[0:4], uint32(int32(y)))
		binary.LittleEndian.PutUint32(chunk[4:8], uint32(len(packed)))
		copy(chunk[8:], packed)
		chunks = append(chunks, chunk)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header.Bytes()); err != nil {
		return err
	}
	offset := uint64(header.Len() + 8*len(chunks))
	for _, chunk := range chunks {
		if err := binary.Write(bw, binary.LittleEndian, offset); err != nil {
			return err
		}
		offset += uint64(len(chunk))
	}
	for _, chunk := range chunks {
		if _, err := bw.Write(chunk); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeEXRHeader(buf *bytes.Buffer, h exrHeader) {
	le := binary.LittleEndian
	binary.Write(buf, le, uint32(exrMagic))
	binary.Write(buf, le, uint32(2))

	attr := func(name, typ string, payload []byte) {
		buf.WriteString(name)
		buf.WriteByte(0)
		buf.WriteString(typ)
		buf.WriteByte(0)
		binary.Write(buf, le, int32(len(payload)))
		buf.Write(payload)
	}

	chlist := &bytes.Buffer{}
	for _, name := range exrOutputChannels {
		chlist.WriteString(name)
		chlist.WriteByte(0)
		binary.Write(chlist, le, int32(exrPixelFloat))
		chlist.Write([]byte{0, 0, 0, 0}) // pLinear, reserved
		binary.Write(chlist, le, int32(1))
		binary.Write(chlist, le, int32(1))
	}
	chlist.WriteByte(0)

	box := &bytes.Buffer{}
	binary.Write(box, le, h.dataWindow)

	float := func(f float32) []byte {
		b := make([]byte, 4)
		le.PutUint32(b, math.Float32bits(f))
		return b
	}

	attr("channels", "chlist", chlist.Bytes())
	attr("compression", "compression", []byte{h.compression})
	attr("dataWindow", "box2i", box.Bytes())
	attr("displayWindow", "box2i", box.Bytes())
	attr("lineOrder", "lineOrder", []byte{0})
	attr("pixelAspectRatio", "float", float(1))
	attr("screenWindowCenter", "v2f", append(float(0), float(0)...))
	attr("screenWindowWidth", "float", float(1))
	buf.WriteByte(0)
}

// exrEncodeBlock lays out n scanlines from y, each as one plane per channel.
func exrEncodeBlock(im *Image, y, n int) []byte {
	planeOf := map[string]int{"R": 0, "G": 1, "B": 2}
	out := make([]byte, 0, n*len(exrOutputChannels)*im.Width*4)
	sample := make([]byte, 4)
	for row:=y; row<y+n; row++ {
		for _, name := range exrOutputChannels {
			p := planeOf[name]
			for x:=0; x<im.Width; x++ {
				binary.LittleEndian.PutUint32(sample, math.Float32bits(im.Pix[im.offset(x, row)+p]))
				out = append(out, sample...)
			}
		}
	}
	return out
}

func exrCompress(compression byte, raw []byte) ([]byte, error) {
	if compression == exrCompressionNone {
		return raw, nil
	}

	// Split even and odd bytes into two halves, then delta encode
	half := (len(raw) + 1) / 2
	t := make([]byte, len(raw))
	for i, b := range raw {
		if i%2 == 0 {
			t[i/2] = b
		} else {
			t[half+i/2] = b
		}
	}
	prev := 0
	for i:=0; i<len(t); i++ {
		cur := int(t[i])
		if i > 0 {
			t[i] = byte(cur - prev + 128)
		}
		prev = cur
	}

	packed := &bytes.Buffer{}
	zw := zlib.NewWriter(packed)
	if _, err := zw.Write(t); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	if packed.Len() >= len(raw) {
		return raw, nil
	}
	return packed.Bytes(), nil
}

// }}}
