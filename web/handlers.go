package web

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"

	"github.com/mogaika/matrix3d/chart"
	"github.com/mogaika/matrix3d/dataset"
	"github.com/mogaika/matrix3d/grid"
	"github.com/mogaika/matrix3d/matrix"
	"github.com/mogaika/matrix3d/scene"
	"github.com/mogaika/matrix3d/webutils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type cellView struct {
	grid.CellDescriptor
	Color string `json:"color"`
}

type layoutView struct {
	Revision string       `json:"revision"`
	Name     string       `json:"name"`
	LoadedAt time.Time    `json:"loaded_at"`
	Scheme   string       `json:"scheme"`
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Config   grid.Config  `json:"config"`
	Bounds   grid.Bounds  `json:"bounds"`
	Plane    grid.Plane   `json:"plane"`
	Summary  grid.Summary `json:"summary"`
	Cells    []cellView   `json:"cells"`
}

func (s *Server) newLayoutView(snap *dataset.Snapshot) *layoutView {
	l := snap.Layout
	v := &layoutView{
		Revision: snap.Revision,
		Name:     snap.Name,
		LoadedAt: snap.LoadedAt,
		Scheme:   s.Scale.Name(),
		Rows:     l.Rows,
		Cols:     l.Cols,
		Config:   l.Config,
		Bounds:   l.Bounds,
		Plane:    l.Plane,
		Summary:  l.Summary,
		Cells:    make([]cellView, len(l.Cells)),
	}
	for i, cell := range l.Cells {
		v.Cells[i] = cellView{CellDescriptor: cell, Color: s.Scale.Hex(cell.ColorScalar)}
	}
	return v
}

func errorStatus(err error) int {
	var cellErr *matrix.MalformedCellError
	var matErr *matrix.MalformedMatrixError
	var emptyErr *grid.EmptyInputError
	switch {
	case errors.Is(err, dataset.ErrNoDataset):
		return http.StatusNotFound
	case errors.As(err, &cellErr), errors.As(err, &matErr), errors.As(err, &emptyErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	webutils.WriteError(w, errorStatus(err), err)
}

func (s *Server) snapshot(w http.ResponseWriter) *dataset.Snapshot {
	snap, err := s.Store.Current()
	if err != nil {
		writeError(w, err)
		return nil
	}
	return snap
}

func (s *Server) HandlerLayout(w http.ResponseWriter, r *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		webutils.WriteJson(w, s.newLayoutView(snap))
	}
}

func (s *Server) HandlerMatrix(w http.ResponseWriter, r *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		webutils.WriteJson(w, snap.Matrix)
	}
}

func (s *Server) HandlerHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		webutils.WriteError(w, http.StatusNotFound, errors.New("history is disabled"))
		return
	}

	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > maxHistoryLimit {
			webutils.WriteError(w, http.StatusBadRequest, errors.Errorf("limit must be in 1..%d", maxHistoryLimit))
			return
		}
		limit = v
	}

	entries, err := s.History.List(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	webutils.WriteJson(w, entries)
}

func (s *Server) HandlerBar3D(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderBar3D(&buf, snap.Layout, snap.Matrix, s.Scale, s.Title); err != nil {
		writeError(w, errors.Wrapf(err, "Failed to render chart"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	webutils.WriteResult(w, buf.Bytes())
}

func (s *Server) HandlerHeatmap(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderHeatmap(&buf, snap.Layout, s.Scale, s.Title, 8*vg.Inch, 6*vg.Inch); err != nil {
		writeError(w, errors.Wrapf(err, "Failed to render heatmap"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	webutils.WriteResult(w, buf.Bytes())
}

func (s *Server) HandlerSceneGLB(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	doc, err := scene.Build(snap.Layout, s.Scale)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := scene.ExportBinary(&buf, doc); err != nil {
		writeError(w, errors.Wrapf(err, "Failed to export scene"))
		return
	}
	webutils.WriteFile(w, &buf, "scene.glb", "model/gltf-binary")
}

func (s *Server) HandlerSceneFBX(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	var buf bytes.Buffer
	if err := scene.ExportFBX(&buf, snap.Layout, s.Scale, snap.Name+".fbx"); err != nil {
		writeError(w, errors.Wrapf(err, "Failed to export fbx scene"))
		return
	}
	webutils.WriteFile(w, &buf, "scene.fbx", "application/octet-stream")
}

func (s *Server) HandlerUploadMatrix(w http.ResponseWriter, r *http.Request) {
	name, data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := s.Store.LoadBytes(name, data)
	if err != nil {
		writeError(w, err)
		return
	}
	webutils.WriteJson(w, s.newLayoutView(snap))
}
