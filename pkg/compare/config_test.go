package compare

import(
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/hdr-compare/pkg/ecolor"
	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Finalize())
	assert.Equal(t, 19, c.KernelSize)
	assert.Equal(t, 2.2, c.Gamma)
	assert.Equal(t, DefaultVariants, c.Variants)

	gc := c.GridConfig(ecolor.Red)
	assert.Equal(t, ecolor.Red, gc.CaptionColor)
	assert.Equal(t, ecolor.Neutral, gc.SeparatorColor)
}

func TestConfigYaml(t *testing.T) {
	c := NewConfig()
	c.Prefix = "cornell"
	c.Variants = []string{"bpt", "pssmlt"}
	c.CaptionColor = "#00ff00"
	c.Heatmap.Max = 4

	c2, err := NewConfigFromYaml([]byte(c.AsYaml()))
	require.NoError(t, err)
	assert.Equal(t, c, c2)

	// unset fields keep their defaults
	c3, err := NewConfigFromYaml([]byte("kernelsize: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, c3.KernelSize)
	assert.Equal(t, DefaultVariants, c3.Variants)
}

func TestConfigFinalize(t *testing.T) {
	bad := map[string]func(*Config){
		"even kernel":  func(c *Config) { c.KernelSize = 4 },
		"zero gamma":   func(c *Config) { c.Gamma = 0 },
		"caption":      func(c *Config) { c.CaptionColor = "red" },
		"separator":    func(c *Config) { c.SeparatorColor = "#12" },
		"tonemapper":   func(c *Config) { c.Tonemapper = "fattal02" },
		"encoding":     func(c *Config) { c.HDREncoding = "ascii" },
		"compression":  func(c *Config) { c.EXRCompression = "piz" },
		"channel":      func(c *Config) { c.Heatmap.Channel = "a" },
		"heatmap range": func(c *Config) { c.Heatmap.Min, c.Heatmap.Max = 2, 1 },
	}

	for name, f := range bad {
		c := NewConfig()
		f(&c)
		err := c.Finalize()
		assert.True(t, errors.Is(err, hdrerr.ErrInvalidParameter), "%s: %v", name, err)
	}
}

func TestLoadFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "renders")
	require.NoError(t, os.Mkdir(sub, 0755))

	writeConst(t, filepath.Join(sub, "scene.bpt.hdr"), 2, 2, 1)
	writeConst(t, filepath.Join(sub, "scene.pssmlt.exr"), 2, 2, 1)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("hi"), 0644))
	cfgFile := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("verbosity: 2\nprefix: scene\n"), 0644))

	j := NewJob()
	require.NoError(t, j.LoadFilesAndDirs(cfgFile, sub))
	assert.Equal(t, 2, j.Verbosity)
	assert.Equal(t, "scene", j.Prefix)
	assert.Equal(t, []string{
		filepath.Join(sub, "scene.bpt.hdr"),
		filepath.Join(sub, "scene.pssmlt.exr"),
	}, j.Inputs)

	assert.Error(t, j.LoadFilesAndDirs(filepath.Join(dir, "missing.hdr")))
}

func TestVariantNames(t *testing.T) {
	c := NewConfig()
	c.InputDir = "out"
	c.Prefix = "cornell"
	assert.Equal(t, filepath.Join("out", "cornell.bpt.hdr"), c.VariantPath("bpt"))
	assert.Equal(t, "bpt", VariantName("out/cornell.bpt.hdr"))
	assert.Equal(t, "render", VariantName("render.exr"))
	assert.Equal(t, "s01t02.hdr", SubpathFilename(1, 2))
}
