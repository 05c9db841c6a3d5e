package compare

import(
	"fmt"
	"image/color"
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/hdr-compare/pkg/ecolor"
	"github.com/abworrall/hdr-compare/pkg/emath"
	"github.com/abworrall/hdr-compare/pkg/grid"
	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/radiance"
	"github.com/abworrall/hdr-compare/pkg/tonemap"
)

type HeatmapConfig struct {
	Channel string  // r, g, b, or y (luminance)
	Min     float64
	Max     float64 // zero means unbounded
}

type Config struct {
	Verbosity      int

	Gamma          float64
	KernelSize     int     // side of the Gaussian blur applied to differences

	InputDir       string
	OutputDir      string
	OutputFilename string  // overrides the per-mode default
	Prefix         string  // renders are named <prefix>.<variant>.hdr
	Variants       []string

	CaptionColor   string  // hex; empty picks the per-mode default
	SeparatorColor string
	FontPath       string
	FontSize       float64

	Tonemapper     string
	HDREncoding    string
	EXRCompression string

	Heatmap        HeatmapConfig
}

var DefaultVariants = []string{
	"pathtrace",
	"lighttrace",
	"simplebpt",
	"explicitpathtrace",
	"bpt",
	"pssmlt",
}

func NewConfig() Config {
	return Config{
		Gamma: tonemap.DefaultGamma,
		KernelSize: 19,
		InputDir: ".",
		OutputDir: ".",
		Variants: append([]string{}, DefaultVariants...),
		SeparatorColor: ecolor.Hex(ecolor.Neutral),
		FontSize: grid.DefaultFontSize,
		Tonemapper: "gamma",
		Heatmap: HeatmapConfig{Channel: "r"},
	}
}

func NewConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	return NewConfigFromYaml(contents)
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Finalize checks the values that would otherwise only fail halfway through
// a run.
func (c Config)Finalize() error {
	if c.Gamma <= 0 {
		return hdrerr.Invalidf("gamma %f", c.Gamma)
	}
	if _, err := emath.GaussianKernel(c.KernelSize); err != nil {
		return hdrerr.Invalidf("kernelsize: %v", err)
	}
	if _, err := ecolor.ParseHex(c.CaptionColor, ecolor.White); err != nil {
		return hdrerr.Invalidf("captioncolor: %v", err)
	}
	if _, err := ecolor.ParseHex(c.SeparatorColor, ecolor.Neutral); err != nil {
		return hdrerr.Invalidf("separatorcolor: %v", err)
	}
	if !tonemap.IsOperator(c.Tonemapper) {
		return hdrerr.Invalidf("no tonemapper named '%s' (try %s)", c.Tonemapper, tonemap.ListOperators())
	}
	if err := c.EncodeOptions().Validate(); err != nil {
		return err
	}

	switch c.Heatmap.Channel {
	case "r", "g", "b", "y":
	default:
		return hdrerr.Invalidf("heatmap channel '%s'", c.Heatmap.Channel)
	}
	if c.Heatmap.Max != 0 && c.Heatmap.Max <= c.Heatmap.Min {
		return hdrerr.Invalidf("heatmap range [%f,%f]", c.Heatmap.Min, c.Heatmap.Max)
	}

	return nil
}

func (c Config)EncodeOptions() radiance.Options {
	return radiance.Options{
		HDREncoding: c.HDREncoding,
		EXRCompression: c.EXRCompression,
	}
}

// GridConfig resolves the colours for a grid, with captionDefault used when
// CaptionColor is unset.
func (c Config)GridConfig(captionDefault color.RGBA) grid.Config {
	caption, _ := ecolor.ParseHex(c.CaptionColor, captionDefault)
	separator, _ := ecolor.ParseHex(c.SeparatorColor, ecolor.Neutral)
	return grid.Config{
		SeparatorColor: separator,
		CaptionColor: caption,
		FontPath: c.FontPath,
		FontSize: c.FontSize,
	}
}
