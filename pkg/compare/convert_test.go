package compare

import(
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/radiance"
)

func TestConvertToPNG(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	src := filepath.Join(dir, "scene.pathtrace.hdr")
	writeConst(t, src, 12, 7, 0.5)

	out, err := Convert(c, src, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scene.pathtrace.png"), out)

	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 7), img.Bounds())
	assert.Equal(t, display(0.5), red(img, 3, 3))
}

func TestConvertFloatToFloat(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	c.EXRCompression = "zip"
	src := filepath.Join(dir, "in.hdr")
	writeConst(t, src, 5, 3, 2.5)

	out, err := Convert(c, src, filepath.Join(dir, "out.exr"))
	require.NoError(t, err)

	im, err := radiance.Decode(out)
	require.NoError(t, err)
	r, g, b := im.RGB(4, 2)
	assert.Equal(t, []float32{2.5, 2.5, 2.5}, []float32{r, g, b})
}

func TestConvertOtherTonemapper(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	c.Tonemapper = "linear"
	src := filepath.Join(dir, "in.hdr")
	im := radiance.New(6, 6)
	for i := range im.Pix {
		im.Pix[i] = float32(i%7) * 0.3
	}
	require.NoError(t, radiance.Encode(src, im))

	out, err := Convert(c, src, filepath.Join(dir, "out.tif"))
	require.NoError(t, err)
	assert.FileExists(t, out)

	c.Tonemapper = "nope"
	_, err = Convert(c, src, filepath.Join(dir, "bad.png"))
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter))
	assert.NoFileExists(t, filepath.Join(dir, "bad.png"))
}

func TestHeatmap(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	c.Heatmap.Channel = "y"
	src := filepath.Join(dir, "scene.bpt.hdr")
	im := radiance.New(20, 10)
	for x:=0; x<20; x++ {
		for y:=0; y<10; y++ {
			v := float32(x) / 19
			im.SetRGB(x, y, v, v, v)
		}
	}
	require.NoError(t, radiance.Encode(src, im))

	out, err := Heatmap(c, src, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scene.bpt.heatmap.png"), out)

	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())

	c.Heatmap.Channel = "q"
	_, err = Heatmap(c, src, filepath.Join(dir, "q.png"))
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter))
}

func TestArrange(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	a, b := filepath.Join(dir, "a.hdr"), filepath.Join(dir, "b.hdr")
	writeConst(t, a, 30, 20, 1)
	writeConst(t, b, 30, 20, 0)

	out, err := Arrange(c, a, b, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a_b.png"), out)

	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 60, 20), img.Bounds())
	assert.Equal(t, uint8(255), red(img, 0, 0))
	assert.Equal(t, uint8(128), red(img, 30, 0))
	assert.Equal(t, uint8(0), red(img, 59, 1))

	writeConst(t, b, 10, 10, 0)
	_, err = Arrange(c, a, b, filepath.Join(dir, "mismatch.png"))
	assert.True(t, errors.Is(err, hdrerr.ErrTileSizeMismatch))
	_, err = os.Stat(filepath.Join(dir, "mismatch.png"))
	assert.True(t, os.IsNotExist(err))
}
