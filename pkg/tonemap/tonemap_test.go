package tonemap_test

import(
	"bytes"
	"log"
	"math"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/radiance"
	"github.com/abworrall/hdr-compare/pkg/tonemap"
)

func TestGammaCompress(t *testing.T) {
	im := radiance.New(2, 1)
	im.SetRGB(0, 0, 0.25, 1, 4)
	im.SetRGB(1, 0, -1, 0, float32(math.NaN()))

	out := tonemap.GammaCompress(im, 2.0)
	assert.Equal(t, []float32{0.5, 1, 2, 0, 0, 0}, out.Pix)

	// input untouched
	r, _, _ := im.RGB(1, 0)
	assert.Equal(t, float32(-1), r)
}

func TestToDisplayBounds(t *testing.T) {
	values := []float32{-1000, -1, -0.001, 0, 0.001, 0.18, 0.5, 0.999, 1, 1.001, 2, 1e6, float32(math.Inf(1))}
	im := radiance.New(len(values), 1)
	for x, v := range values {
		im.SetRGB(x, 0, v, v, v)
	}

	out := tonemap.ToDisplay(im)
	require.Equal(t, im.Bounds(), out.Bounds())

	for x, v := range values {
		c := out.RGBAAt(x, 0)
		assert.Equal(t, c.R, c.G)
		assert.Equal(t, uint8(255), c.A)
		switch {
		case v <= 0:
			assert.Equal(t, uint8(0), c.R, "value %v", v)
		case v >= 1:
			assert.Equal(t, uint8(255), c.R, "value %v", v)
		default:
			want := uint8(math.Pow(float64(v), 1/2.2) * 255)
			assert.InDelta(t, want, c.R, 1, "value %v", v)
		}
	}
}

func TestToDisplayOneIsWhite(t *testing.T) {
	im := radiance.New(1, 1)
	im.SetRGB(0, 0, 1, 1, 1)
	c := tonemap.ToDisplay(im).RGBAAt(0, 0)
	assert.Equal(t, []uint8{255, 255, 255}, []uint8{c.R, c.G, c.B})
}

func TestApply(t *testing.T) {
	im := radiance.New(4, 4)
	for i := range im.Pix {
		im.Pix[i] = float32(i) / 10
	}

	out, err := tonemap.Apply("gamma", im, tonemap.DefaultGamma)
	require.NoError(t, err)
	assert.Equal(t, tonemap.ToDisplay(im), out)

	out, err = tonemap.Apply("linear", im, tonemap.DefaultGamma)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Bounds().Dx())

	_, err = tonemap.Apply("fattal99", im, tonemap.DefaultGamma)
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter))
}

func TestIsOperator(t *testing.T) {
	for _, op := range tonemap.Operators {
		assert.True(t, tonemap.IsOperator(op), op)
	}
	assert.True(t, tonemap.IsOperator(""))
	assert.False(t, tonemap.IsOperator("fattal02"))
}

func TestApplyIsQuiet(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	im := radiance.New(4, 4)
	for i := range im.Pix {
		im.Pix[i] = float32(i) / 10
	}
	for _, op := range []string{"gamma", "linear"} {
		_, err := tonemap.Apply(op, im, tonemap.DefaultGamma)
		require.NoError(t, err, op)
	}
	assert.Empty(t, buf.String())
}
