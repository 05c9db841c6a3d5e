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
	"github.com/abworrall/hdr-compare/pkg/tonemap"
)

func writeConst(t *testing.T, path string, w, h int, v float32) {
	t.Helper()
	im := radiance.New(w, h)
	for i := range im.Pix {
		im.Pix[i] = v
	}
	require.NoError(t, radiance.Encode(path, im))
}

// display is what ToDisplay makes of a constant radiance value.
func display(v float32) uint8 {
	im := radiance.New(1, 1)
	im.SetRGB(0, 0, v, v, v)
	return tonemap.ToDisplay(im).Pix[0]
}

func red(img image.Image, x, y int) uint8 {
	r, _, _, _ := img.At(x, y).RGBA()
	return uint8(r >> 8)
}

// isBlank is true for the opaque black of an unfilled cell.
func isBlank(img image.Image, x, y int) bool {
	r, g, b, a := img.At(x, y).RGBA()
	return r == 0 && g == 0 && b == 0 && a == 0xffff
}

func testConfig(dir string) Config {
	c := NewConfig()
	c.InputDir = dir
	c.OutputDir = dir
	c.KernelSize = 3
	return c
}

func TestPairwiseFourVariants(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	c.Prefix = "scene"
	c.Variants = []string{"pathtrace", "lighttrace", "bpt", "pssmlt"}

	values := []float32{0.1, 0.3, 0.7, 1.5}
	for i, v := range c.Variants {
		writeConst(t, c.VariantPath(v), 64, 48, values[i])
	}

	out, err := Pairwise(c)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, PairwiseFilename), out)

	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 256, 192), img.Bounds())

	populated := 0
	for row:=0; row<4; row++ {
		for col:=0; col<4; col++ {
			// clear of captions, separators and the diagonal
			x, y := col*64 + 50, row*48 + 10
			if row <= col {
				assert.True(t, isBlank(img, x, y), "cell (row=%d, col=%d) should be blank", row, col)
				continue
			}
			populated++
			want := display(values[row] - values[col])
			assert.InDelta(t, want, red(img, x, y), 1, "cell (row=%d, col=%d)", row, col)
		}
	}
	assert.Equal(t, 6, populated)

	// separators and the diagonal are drawn in neutral grey
	assert.Equal(t, uint8(128), red(img, 64, 5))
	assert.Equal(t, uint8(128), red(img, 5, 48))
	assert.Equal(t, uint8(128), red(img, 0, 0))
	assert.Equal(t, uint8(128), red(img, 255, 191))
}

func TestPairwiseNeedsVariants(t *testing.T) {
	c := testConfig(t.TempDir())
	c.Variants = nil
	_, err := Pairwise(c)
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter))

	_, err = PairwiseFiles(c, []string{"a", "b"}, []string{"a.hdr"})
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter))
}

func TestPairwiseMissingInputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	c.Prefix = "scene"
	c.Variants = []string{"pathtrace", "bpt"}
	writeConst(t, c.VariantPath("pathtrace"), 8, 8, 1)

	_, err := Pairwise(c)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, PairwiseFilename))
}

func TestTable(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)

	values := map[SubpathKey]float32{{0, 0}: 0.05, {0, 1}: 0.2, {1, 0}: 0.5, {1, 1}: 0.9}
	for k, v := range values {
		writeConst(t, filepath.Join(dir, SubpathFilename(k.S, k.T)), 32, 24, v)
	}
	// not part of the table
	writeConst(t, filepath.Join(dir, "s05t05.exr"), 4, 4, 1)
	writeConst(t, filepath.Join(dir, "scene.bpt.hdr"), 4, 4, 1)

	out, err := Table(c)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, TableFilename), out)

	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())

	for k, v := range values {
		// s across, t down
		x, y := k.S*32 + 28, k.T*24 + 3
		assert.InDelta(t, display(v), red(img, x, y), 1, "s=%d t=%d", k.S, k.T)
	}
}

func TestTableSparse(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	writeConst(t, filepath.Join(dir, SubpathFilename(0, 0)), 16, 16, 1)
	writeConst(t, filepath.Join(dir, SubpathFilename(2, 1)), 16, 16, 1)

	out, err := Table(c)
	require.NoError(t, err)
	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)

	// 3 columns of s, 2 rows of t
	require.Equal(t, image.Rect(0, 0, 48, 32), img.Bounds())
	assert.Equal(t, uint8(255), red(img, 14, 1))
	assert.Equal(t, uint8(255), red(img, 46, 17))
	assert.True(t, isBlank(img, 36, 15))
	assert.True(t, isBlank(img, 30, 30))
}

func TestTableTileSizeMismatch(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	c := testConfig(in)
	c.OutputDir = out
	writeConst(t, filepath.Join(in, SubpathFilename(0, 0)), 32, 24, 1)
	writeConst(t, filepath.Join(in, SubpathFilename(0, 1)), 32, 24, 1)
	writeConst(t, filepath.Join(in, SubpathFilename(1, 0)), 16, 16, 1)

	_, err := Table(c)
	assert.True(t, errors.Is(err, hdrerr.ErrTileSizeMismatch))

	contents, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, contents)
}

func TestTableNoFiles(t *testing.T) {
	_, err := Table(testConfig(t.TempDir()))
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter))
}

func TestSumTable(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	values := []float32{0.1, 0.4, 1.0}
	for s, v := range values {
		writeConst(t, filepath.Join(dir, SubpathFilename(s, 2-s)), 40, 30, v)
	}

	out, err := SumTable(c, 2, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "compare_vs02.png"), out)

	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 120, 90), img.Bounds())

	for s2:=0; s2<3; s2++ {
		for s1:=0; s1<3; s1++ {
			x, y := s1*40 + 35, s2*30 + 3
			if s1 >= s2 {
				assert.True(t, isBlank(img, x, y), "s1=%d s2=%d", s1, s2)
				continue
			}
			assert.InDelta(t, display(values[s2]-values[s1]), red(img, x, y), 1, "s1=%d s2=%d", s1, s2)
		}
	}

	for _, r := range [][3]int{{2, -1, 1}, {2, 2, 1}, {2, 0, 3}} {
		_, err := SumTable(c, r[0], r[1], r[2])
		assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter), "%v", r)
	}
}

func TestPairDiff(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(dir)
	a, b := filepath.Join(dir, "a.hdr"), filepath.Join(dir, "b.exr")
	writeConst(t, a, 10, 10, 1)
	writeConst(t, b, 10, 10, 0.5)

	out, err := PairDiff(c, a, b)
	require.NoError(t, err)
	img, err := radiance.DecodeDisplay(out)
	require.NoError(t, err)
	assert.InDelta(t, display(0.5), red(img, 0, 0), 1)
	assert.InDelta(t, display(0.5), red(img, 9, 9), 1)

	small := filepath.Join(dir, "small.hdr")
	writeConst(t, small, 4, 4, 1)
	_, err = PairDiff(c, a, small)
	assert.True(t, errors.Is(err, hdrerr.ErrShapeMismatch))
}

func TestScanSubpathFilesRejectsAmbiguousNames(t *testing.T) {
	dir := t.TempDir()
	writeConst(t, filepath.Join(dir, "s00t00.hdr"), 2, 2, 1)
	writeConst(t, filepath.Join(dir, "s0t0.hdr"), 2, 2, 1)

	_, _, _, err := ScanSubpathFiles(dir)
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter), "%v", err)

	dir = t.TempDir()
	writeConst(t, filepath.Join(dir, "s00t00.hdr"), 2, 2, 1)
	writeConst(t, filepath.Join(dir, "s99999999999999999999t01.hdr"), 2, 2, 1)

	_, _, _, err = ScanSubpathFiles(dir)
	assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter), "%v", err)
}

func TestScanSubpathFiles(t *testing.T) {
	dir := t.TempDir()
	writeConst(t, filepath.Join(dir, "s00t03.hdr"), 2, 2, 1)
	writeConst(t, filepath.Join(dir, "s02t01.hdr"), 2, 2, 1)

	files, maxS, maxT, err := ScanSubpathFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, maxS)
	assert.Equal(t, 3, maxT)
	assert.Equal(t, filepath.Join(dir, "s02t01.hdr"), files[SubpathKey{2, 1}])
	assert.Equal(t, []SubpathKey{{0, 3}, {2, 1}}, sortedKeys(files))
}
