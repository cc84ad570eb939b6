// Package grid turns a numeric matrix into positioned, sized bar descriptors.
//
// Normalization is global: bounds are computed over the whole matrix before any
// cell is placed. The package holds no renderer state; scene and chart builders
// consume the returned Layout.
package grid

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Matrix is the read-only view the mapper needs. *matrix.Matrix satisfies it.
type Matrix interface {
	Rows() int
	Cols() int
	At(row, col int) float64
}

type Config struct {
	Spacing     float64 `yaml:"spacing" json:"spacing"`
	HeightScale float64 `yaml:"height_scale" json:"height_scale"`
	BarWidth    float64 `yaml:"bar_width" json:"bar_width"`
	BarDepth    float64 `yaml:"bar_depth" json:"bar_depth"`
}

func DefaultConfig() Config {
	return Config{
		Spacing:     1.5,
		HeightScale: 10,
		BarWidth:    1,
		BarDepth:    1,
	}
}

func (c Config) Validate() error {
	if c.Spacing <= 0 {
		return errors.Errorf("spacing must be positive, got %v", c.Spacing)
	}
	if c.HeightScale <= 0 {
		return errors.Errorf("height scale must be positive, got %v", c.HeightScale)
	}
	if c.BarWidth <= 0 || c.BarDepth <= 0 {
		return errors.Errorf("bar size must be positive, got %vx%v", c.BarWidth, c.BarDepth)
	}
	return nil
}

type CellDescriptor struct {
	Row         int        `json:"row"`
	Col         int        `json:"col"`
	RawValue    float64    `json:"raw_value"`
	Normalized  float64    `json:"normalized"`
	Height      float64    `json:"height"`
	ColorScalar float64    `json:"color_scalar"`
	Position    mgl64.Vec3 `json:"position"`
	Size        mgl64.Vec3 `json:"size"`
}

// Plane is the ground plane under the bars, centered on the origin at y=0.
type Plane struct {
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

type Summary struct {
	Count   int     `json:"count"`
	Skipped int     `json:"skipped"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
}

type Layout struct {
	Rows    int              `json:"rows"`
	Cols    int              `json:"cols"`
	Config  Config           `json:"config"`
	Bounds  Bounds           `json:"bounds"`
	Plane   Plane            `json:"plane"`
	Summary Summary          `json:"summary"`
	Cells   []CellDescriptor `json:"cells"`
}

func PlaneFor(rows, cols int, cfg Config) Plane {
	return Plane{
		Width: float64(cols) * cfg.Spacing,
		Depth: float64(rows) * cfg.Spacing,
	}
}

// MapCell places one cell. ok is false for cells that produce no bar (raw <= 0).
func MapCell(raw float64, row, col, rows, cols int, bounds Bounds, cfg Config) (cell CellDescriptor, ok bool) {
	if !included(raw) {
		return cell, false
	}

	normalized := bounds.Normalize(raw)
	height := normalized * cfg.HeightScale

	x := float64(col)*cfg.Spacing - (float64(cols)*cfg.Spacing)/2
	z := float64(row)*cfg.Spacing - (float64(rows)*cfg.Spacing)/2

	return CellDescriptor{
		Row:         row,
		Col:         col,
		RawValue:    raw,
		Normalized:  normalized,
		Height:      height,
		ColorScalar: normalized,
		Position:    mgl64.Vec3{x, height / 2, z},
		Size:        mgl64.Vec3{cfg.BarWidth, height, cfg.BarDepth},
	}, true
}

// Map computes bounds over the full matrix, then places every positive cell
// in row-major order.
func Map(m Matrix, cfg Config) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bounds, err := ComputeBounds(m)
	if err != nil {
		return nil, err
	}

	rows, cols := m.Rows(), m.Cols()
	layout := &Layout{
		Rows:   rows,
		Cols:   cols,
		Config: cfg,
		Bounds: bounds,
		Plane:  PlaneFor(rows, cols, cfg),
		Cells:  make([]CellDescriptor, 0, rows*cols),
	}

	for iRow := 0; iRow < rows; iRow++ {
		for iCol := 0; iCol < cols; iCol++ {
			if cell, ok := MapCell(m.At(iRow, iCol), iRow, iCol, rows, cols, bounds, cfg); ok {
				layout.Cells = append(layout.Cells, cell)
			}
		}
	}

	layout.Summary, err = summarize(positiveValues(m), rows*cols)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to summarize values")
	}

	return layout, nil
}

func summarize(values []float64, total int) (Summary, error) {
	s := Summary{Count: len(values), Skipped: total - len(values)}

	var err error
	if s.Mean, err = stats.Mean(values); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(values); err != nil {
		return s, err
	}
	return s, nil
}
