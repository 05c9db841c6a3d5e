// Package compare drives the codec, the difference filter and the grid to
// build the comparison images: variant-vs-variant grids, path length tables,
// and single conversions and diffs.
package compare

import(
	"fmt"
	"image"
	"log"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/abworrall/hdr-compare/pkg/ecolor"
	"github.com/abworrall/hdr-compare/pkg/grid"
	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/imgdiff"
	"github.com/abworrall/hdr-compare/pkg/radiance"
	"github.com/abworrall/hdr-compare/pkg/tonemap"
)

const(
	PairwiseFilename = "render_all_comparison.png"
	TableFilename    = "table.png"
	PairDiffFilename = "compare_error_dist.png"
)

func SumTableFilename(vs int) string { return fmt.Sprintf("compare_vs%02d.png", vs) }

// tileLoader decodes the inputs for one grid. The cell size comes from the
// header of the first input; every decoded image must match it.
type tileLoader struct {
	W, H    int
	decoded map[string]*radiance.Image
}

func newTileLoader(first string) (*tileLoader, error) {
	w, h, err := radiance.ImageSize(first)
	if err != nil {
		return nil, err
	}
	return &tileLoader{W: w, H: h, decoded: map[string]*radiance.Image{}}, nil
}

func (tl *tileLoader)load(path string) (*radiance.Image, error) {
	if im, exists := tl.decoded[path]; exists {
		return im, nil
	}

	im, err := radiance.Decode(path)
	if err != nil {
		return nil, err
	}
	if im.Width != tl.W || im.Height != tl.H {
		return nil, errors.Wrapf(hdrerr.ErrTileSizeMismatch, "'%s' is %dx%d, cells are %dx%d",
			path, im.Width, im.Height, tl.W, tl.H)
	}

	tl.decoded[path] = im
	return im, nil
}

// diffTile loads a pair and renders |smooth(a-b)| for display.
func (c Config)diffTile(tl *tileLoader, pathA, pathB string) (image.Image, error) {
	a, err := tl.load(pathA)
	if err != nil {
		return nil, err
	}
	b, err := tl.load(pathB)
	if err != nil {
		return nil, err
	}
	return c.renderDiff(a, b, pathA, pathB)
}

func (c Config)renderDiff(a, b *radiance.Image, pathA, pathB string) (image.Image, error) {
	diff, err := imgdiff.Compare(a, b, c.KernelSize)
	if err != nil {
		return nil, errors.Wrapf(err, "compare '%s' vs '%s'", pathA, pathB)
	}

	if c.Verbosity > 0 {
		if stats, err := imgdiff.CompareStats(a, b); err == nil {
			log.Printf("%s vs %s: %s\n", filepath.Base(pathA), filepath.Base(pathB), stats)
		}
	}

	return tonemap.ToDisplayGamma(diff, c.Gamma), nil
}

func (c Config)outputPath(def string) string {
	name := def
	if c.OutputFilename != "" {
		name = c.OutputFilename
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

func (c Config)writeGrid(g *grid.Grid, def string) (string, error) {
	g.Finish()
	out := c.outputPath(def)
	if err := radiance.Encode(out, g.Image()); err != nil {
		return "", err
	}
	log.Printf("Wrote %dx%d grid of %d tiles to %s\n", g.Cols, g.Rows, len(g.Populated()), out)
	return out, nil
}

// Pairwise compares the configured variants, read from
// <InputDir>/<Prefix>.<variant>.hdr, with each other.
func Pairwise(c Config) (string, error) {
	paths := []string{}
	for _, v := range c.Variants {
		paths = append(paths, c.VariantPath(v))
	}
	return PairwiseFiles(c, c.Variants, paths)
}

// PairwiseFiles lays out one diff tile per pair of inputs: names[i] vs
// names[j], for i<j, goes in row j and column i, so everything sits below
// the diagonal.
func PairwiseFiles(c Config, names, paths []string) (string, error) {
	if len(names) == 0 {
		return "", hdrerr.Invalidf("pairwise: no variants to compare")
	}
	if len(names) != len(paths) {
		return "", hdrerr.Invalidf("pairwise: %d names for %d files", len(names), len(paths))
	}

	tl, err := newTileLoader(paths[0])
	if err != nil {
		return "", err
	}

	n := len(names)
	g, err := grid.New(c.GridConfig(ecolor.Red), n, n, tl.W, tl.H)
	if err != nil {
		return "", err
	}

	for i:=0; i<n; i++ {
		for j:=i+1; j<n; j++ {
			tile, err := c.diffTile(tl, paths[i], paths[j])
			if err != nil {
				return "", err
			}
			caption := names[i] + " vs. " + names[j]
			if err := g.PlaceTile(grid.Cell{Row: j, Col: i}, tile, caption); err != nil {
				return "", err
			}
		}
	}

	return c.writeGrid(g, PairwiseFilename)
}

// Table lays out every sNNtNN.hdr in InputDir as-is, s across and t down.
// Missing combinations stay blank.
func Table(c Config) (string, error) {
	files, maxS, maxT, err := ScanSubpathFiles(c.InputDir)
	if err != nil {
		return "", err
	}
	keys := sortedKeys(files)

	tl, err := newTileLoader(files[keys[0]])
	if err != nil {
		return "", err
	}

	g, err := grid.New(c.GridConfig(ecolor.White), maxT+1, maxS+1, tl.W, tl.H)
	if err != nil {
		return "", err
	}

	for _, k := range keys {
		im, err := tl.load(files[k])
		if err != nil {
			return "", err
		}
		tile := tonemap.ToDisplayGamma(im, c.Gamma)
		caption := fmt.Sprintf("s=%d, t=%d", k.S, k.T)
		if err := g.PlaceTile(grid.Cell{Row: k.T, Col: k.S}, tile, caption); err != nil {
			return "", err
		}
	}

	return c.writeGrid(g, TableFilename)
}

// SumTable compares the subpath renders whose s+t is vs, for s in
// [minS,maxS]: s1 vs s2, for s1<s2, goes in row s2 and column s1.
func SumTable(c Config, vs, minS, maxS int) (string, error) {
	if minS < 0 || minS > maxS || maxS > vs {
		return "", hdrerr.Invalidf("sum table: want 0 <= min s (%d) <= max s (%d) <= %d", minS, maxS, vs)
	}

	path := func(s int) string { return filepath.Join(c.InputDir, SubpathFilename(s, vs-s)) }

	tl, err := newTileLoader(path(minS))
	if err != nil {
		return "", err
	}

	g, err := grid.New(c.GridConfig(ecolor.White), vs+1, vs+1, tl.W, tl.H)
	if err != nil {
		return "", err
	}

	for s1:=minS; s1<=maxS; s1++ {
		for s2:=s1+1; s2<=maxS; s2++ {
			tile, err := c.diffTile(tl, path(s1), path(s2))
			if err != nil {
				return "", err
			}
			caption := fmt.Sprintf("s=%d, t=%d vs. s=%d, t=%d", s1, vs-s1, s2, vs-s2)
			if err := g.PlaceTile(grid.Cell{Row: s2, Col: s1}, tile, caption); err != nil {
				return "", err
			}
		}
	}

	return c.writeGrid(g, SumTableFilename(vs))
}

// PairDiff writes the diff image of a single pair, and logs how far apart
// they are.
func PairDiff(c Config, pathA, pathB string) (string, error) {
	a, err := radiance.Decode(pathA)
	if err != nil {
		return "", err
	}
	b, err := radiance.Decode(pathB)
	if err != nil {
		return "", err
	}

	tile, err := c.renderDiff(a, b, pathA, pathB)
	if err != nil {
		return "", err
	}

	stats, err := imgdiff.CompareStats(a, b)
	if err != nil {
		return "", err
	}
	log.Printf("%s vs %s: %s\n", pathA, pathB, stats)

	out := c.outputPath(PairDiffFilename)
	if err := radiance.Encode(out, tile); err != nil {
		return "", err
	}
	return out, nil
}
