// Package grid composes equal-sized 8-bit tiles into one annotated raster:
// tiles placed cell by cell, captions drawn into them, and separator lines
// and a diagonal drawn over the whole thing when it is finished.
package grid

import(
	"image"
	"image/color"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/abworrall/hdr-compare/pkg/ecolor"
	"github.com/abworrall/hdr-compare/pkg/hdrerr"
)

const DefaultFontSize = 12.0

type Config struct {
	SeparatorColor color.RGBA
	CaptionColor   color.RGBA
	FontPath       string  // a .ttf file; empty means Go Regular
	FontSize       float64 // points
	SkipDiagonal   bool
}

func DefaultConfig() Config {
	return Config{
		SeparatorColor: ecolor.Neutral,
		CaptionColor: ecolor.White,
		FontSize: DefaultFontSize,
	}
}

type Grid struct {
	Config
	Rows, Cols   int
	CellW, CellH int

	img       *image.RGBA
	face      font.Face
	populated map[Cell]bool
	finished  bool
}

// New allocates a blank (opaque black) grid of rows x cols cells, each cellW x
// cellH pixels.
func New(cfg Config, rows, cols, cellW, cellH int) (*Grid, error) {
	if rows <= 0 || cols <= 0 || cellW <= 0 || cellH <= 0 {
		return nil, hdrerr.Invalidf("grid of %dx%d cells of %dx%d", cols, rows, cellW, cellH)
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = DefaultFontSize
	}

	face, err := loadFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)

	g := Grid{
		Config: cfg,
		Rows: rows,
		Cols: cols,
		CellW: cellW,
		CellH: cellH,
		img: img,
		face: face,
		populated: map[Cell]bool{},
	}
	return &g, nil
}

func loadFace(path string, size float64) (font.Face, error) {
	if path != "" {
		face, err := gg.LoadFontFace(path, size)
		if err != nil {
			return nil, errors.Wrapf(hdrerr.ErrInvalidParameter, "font '%s': %v", path, err)
		}
		return face, nil
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "goregular")
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

func (g *Grid)Bounds() image.Rectangle { return g.img.Bounds() }
func (g *Grid)Image() *image.RGBA      { return g.img }

// PlaceTile copies tile into the cell, then draws the caption (if any) over
// it. The tile must be exactly one cell in size, and each cell can only be
// filled once.
func (g *Grid)PlaceTile(c Cell, tile image.Image, caption string) error {
	if g.finished {
		return hdrerr.Invalidf("place %s: grid already finished", c)
	}
	if c.Row < 0 || c.Row >= g.Rows || c.Col < 0 || c.Col >= g.Cols {
		return hdrerr.Invalidf("cell %s outside %dx%d grid", c, g.Cols, g.Rows)
	}
	if g.populated[c] {
		return hdrerr.Invalidf("cell %s already populated", c)
	}

	tb := tile.Bounds()
	if tb.Dx() != g.CellW || tb.Dy() != g.CellH {
		return errors.Wrapf(hdrerr.ErrTileSizeMismatch, "cell %s: tile is %dx%d, cells are %dx%d",
			c, tb.Dx(), tb.Dy(), g.CellW, g.CellH)
	}

	draw.Draw(g.img, g.CellRect(c), tile, tb.Min, draw.Src)
	g.populated[c] = true

	if caption != "" {
		o := g.CaptionOrigin(c)
		dc := gg.NewContextForRGBA(g.img)
		dc.SetFontFace(g.face)
		dc.SetColor(g.CaptionColor)
		dc.DrawString(caption, float64(o.X), float64(o.Y))
	}

	return nil
}

// Finish draws the 1-pixel separators on every internal cell boundary, and
// then (unless skipped) the diagonal from the top-left corner to the
// bottom-right one. Tiles can't be placed afterwards.
func (g *Grid)Finish() {
	if g.finished {
		return
	}

	for r:=1; r<g.Rows; r++ {
		hline(g.img, r*g.CellH, g.SeparatorColor)
	}
	for c:=1; c<g.Cols; c++ {
		vline(g.img, c*g.CellW, g.SeparatorColor)
	}

	if !g.SkipDiagonal {
		b := g.img.Bounds()
		line(g.img, b.Min, b.Max.Sub(image.Point{1, 1}), g.SeparatorColor)
	}

	g.finished = true
}

// Populated lists the filled cells in row-major order.
func (g *Grid)Populated() []Cell {
	cells := []Cell{}
	for c := range g.populated {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}
