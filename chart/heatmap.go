package chart

import (
	"image/color"
	"io"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/grid"
)

const heatmapPaletteSize = 64

// normalizedGrid exposes layout cells as plotter.GridXYZ. Cells without a bar are NaN.
type normalizedGrid struct {
	rows, cols int
	z          []float64
}

func newNormalizedGrid(layout *grid.Layout) *normalizedGrid {
	g := &normalizedGrid{
		rows: layout.Rows,
		cols: layout.Cols,
		z:    make([]float64, layout.Rows*layout.Cols),
	}
	for i := range g.z {
		g.z[i] = math.NaN()
	}
	for _, cell := range layout.Cells {
		g.z[cell.Row*g.cols+cell.Col] = cell.Normalized
	}
	return g
}

func (g *normalizedGrid) Dims() (c, r int)   { return g.cols, g.rows }
func (g *normalizedGrid) Z(c, r int) float64 { return g.z[r*g.cols+c] }
func (g *normalizedGrid) X(c int) float64    { return float64(c) }

// first matrix row on top, like the table it came from
func (g *normalizedGrid) Y(r int) float64 { return float64(g.rows - 1 - r) }

func Heatmap(layout *grid.Layout, scale *colorscale.Scale, title string) (*plot.Plot, error) {
	if layout == nil {
		return nil, errors.New("nothing to plot")
	}
	if layout.Rows < 1 || layout.Cols < 1 {
		return nil, errors.Errorf("empty %dx%d layout", layout.Rows, layout.Cols)
	}

	h := plotter.NewHeatMap(newNormalizedGrid(layout), scale.Palette(heatmapPaletteSize))
	h.Min = 0
	h.Max = 1
	h.NaN = color.White

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	p.Add(h)
	return p, nil
}

func RenderHeatmap(w io.Writer, layout *grid.Layout, scale *colorscale.Scale, title string, width, height vg.Length) error {
	p, err := Heatmap(layout, scale, title)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return errors.Wrapf(err, "Failed to render heatmap")
	}
	_, err = wt.WriteTo(w)
	return err
}
