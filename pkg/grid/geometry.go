package grid

// A few helper routines for laying out and drawing on the grid raster

import(
	"fmt"
	"image"
	"image/color"
)

// Cell addresses one tile of the grid.
type Cell struct {
	Row, Col int
}

func (c Cell)String() string { return fmt.Sprintf("(row=%d, col=%d)", c.Row, c.Col) }

// CellRect is the pixel rectangle a cell occupies.
func (g *Grid)CellRect(c Cell) image.Rectangle {
	return image.Rect(c.Col*g.CellW, c.Row*g.CellH, (c.Col+1)*g.CellW, (c.Row+1)*g.CellH)
}

// CaptionOrigin is where a caption's baseline starts: the cell's left edge,
// five pixels above its bottom.
func (g *Grid)CaptionOrigin(c Cell) image.Point {
	r := g.CellRect(c)
	return image.Point{r.Min.X, r.Max.Y - 5}
}

func hline(img *image.RGBA, y int, col color.RGBA) {
	b := img.Bounds()
	for x:=b.Min.X; x<b.Max.X; x++ {
		img.SetRGBA(x, y, col)
	}
}

func vline(img *image.RGBA, x int, col color.RGBA) {
	b := img.Bounds()
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		img.SetRGBA(x, y, col)
	}
}

// line draws an 8-connected 1-pixel line from p0 to p1 inclusive (Bresenham).
func line(img *image.RGBA, p0, p1 image.Point, col color.RGBA) {
	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X { sx = -1 }
	if p0.Y > p1.Y { sy = -1 }

	x, y := p0.X, p0.Y
	e := dx + dy
	for {
		img.SetRGBA(x, y, col)
		if x == p1.X && y == p1.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
