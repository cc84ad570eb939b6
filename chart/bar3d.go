// Package chart renders a grid layout as browser and image charts.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/grid"
	"github.com/mogaika/matrix3d/matrix"
)

// AssetsHost is where the echarts and echarts-gl scripts are fetched from.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Bar3D builds an echarts-gl bar chart: x is the column, y the row and z the
// bar height. Colour follows the raw value through a visual map.
func Bar3D(layout *grid.Layout, m *matrix.Matrix, scale *colorscale.Scale, title string) (*charts.Bar3D, error) {
	if layout == nil || m == nil {
		return nil, errors.New("nothing to chart")
	}
	if len(m.Headers) != layout.Cols || len(m.RowLabels) != layout.Rows {
		return nil, errors.Errorf("matrix is %dx%d but layout is %dx%d",
			len(m.RowLabels), len(m.Headers), layout.Rows, layout.Cols)
	}

	data := make([]opts.Chart3DData, 0, len(layout.Cells))
	for _, cell := range layout.Cells {
		data = append(data, opts.Chart3DData{
			Name:  fmt.Sprintf("%s / %s", m.RowLabels[cell.Row], m.Headers[cell.Col]),
			Value: []interface{}{cell.Col, cell.Row, cell.Height, cell.RawValue},
		})
	}

	bounds := layout.Bounds
	visualMax := bounds.Max
	if bounds.Flat() {
		// echarts needs a non empty range
		visualMax = bounds.Min + 1
	}

	bar := charts.NewBar3D()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "860px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Subtitle: fmt.Sprintf("%dx%d, %d bars, min=%g max=%g mean=%.3g median=%.3g",
				layout.Rows, layout.Cols, len(layout.Cells), bounds.Min, bounds.Max, layout.Summary.Mean, layout.Summary.Median),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "column", Type: "category", Data: m.Headers}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "row", Type: "category", Data: m.RowLabels}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "height", Type: "value"}),
		charts.WithGrid3DOpts(opts.Grid3D{
			BoxWidth: float32(layout.Plane.Width) * 10,
			BoxDepth: float32(layout.Plane.Depth) * 10,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(bounds.Min),
			Max:        float32(visualMax),
			Dimension:  "3",
			InRange:    &opts.VisualMapInRange{Color: scale.Stops()},
		}),
	)
	bar.AddSeries("matrix", data)

	return bar, nil
}

func RenderBar3D(w io.Writer, layout *grid.Layout, m *matrix.Matrix, scale *colorscale.Scale, title string) error {
	bar, err := Bar3D(layout, m, scale, title)
	if err != nil {
		return err
	}
	return bar.Render(w)
}
