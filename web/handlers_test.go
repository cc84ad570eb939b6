package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/dataset"
	"github.com/mogaika/matrix3d/grid"
	"github.com/mogaika/matrix3d/history"
	"github.com/mogaika/matrix3d/matrix"
	"github.com/mogaika/matrix3d/status"
)

const testCSV = "rep,alpha,beta,gamma\nfirst,0,5,2\nsecond,10,0,3\nthird,1,1,8\n"

func newTestServer(t *testing.T, load bool) (*Server, http.Handler) {
	t.Helper()
	scale, err := colorscale.New("ylorrd")
	require.NoError(t, err)

	store := dataset.NewStore(matrix.Options{LabelColumn: true, Malformed: matrix.PolicyFail}, grid.DefaultConfig())
	db, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store.SetRecorder(db)

	hub := status.NewHub()
	t.Cleanup(hub.Close)
	store.SetNotifier(hub)

	if load {
		_, err := store.LoadBytes("test.csv", []byte(testCSV))
		require.NoError(t, err)
	}

	s := &Server{Store: store, Scale: scale, Hub: hub, History: db, Title: "Test"}
	return s, s.Router()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func upload(t *testing.T, h http.Handler, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("data", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/matrix", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerLayout(t *testing.T) {
	_, h := newTestServer(t, true)

	rec := get(h, "/json/layout")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var v struct {
		Name   string      `json:"name"`
		Scheme string      `json:"scheme"`
		Rows   int         `json:"rows"`
		Cols   int         `json:"cols"`
		Bounds grid.Bounds `json:"bounds"`
		Cells  []struct {
			Row      int        `json:"row"`
			Col      int        `json:"col"`
			Height   float64    `json:"height"`
			Position [3]float64 `json:"position"`
			Color    string     `json:"color"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))

	assert.Equal(t, "test.csv", v.Name)
	assert.Equal(t, "ylorrd", v.Scheme)
	assert.Equal(t, 3, v.Rows)
	assert.Equal(t, 3, v.Cols)
	assert.Equal(t, grid.Bounds{Min: 1, Max: 10}, v.Bounds)
	assert.Len(t, v.Cells, 7)
	for _, c := range v.Cells {
		assert.Regexp(t, `^#[0-9a-f]{6}$`, c.Color)
		assert.Equal(t, c.Height/2, c.Position[1])
	}
}

func TestHandlerNoDataset(t *testing.T) {
	_, h := newTestServer(t, false)

	for _, path := range []string{"/json/layout", "/json/matrix", "/chart/bar3d", "/chart/heatmap.png", "/export/scene.glb", "/export/scene.fbx"} {
		rec := get(h, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "no dataset loaded", path)
	}
}

func TestHandlerMatrix(t *testing.T) {
	_, h := newTestServer(t, true)

	rec := get(h, "/json/matrix")
	require.Equal(t, http.StatusOK, rec.Code)

	var m matrix.Matrix
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, m.Headers)
	assert.Equal(t, []string{"first", "second", "third"}, m.RowLabels)
}

func TestHandlerBar3D(t *testing.T) {
	_, h := newTestServer(t, true)

	rec := get(h, "/chart/bar3d")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "gamma")
}

func TestHandlerHeatmap(t *testing.T) {
	_, h := newTestServer(t, true)

	rec := get(h, "/chart/heatmap.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestHandlerHeatmapSingleRow(t *testing.T) {
	_, h := newTestServer(t, false)
	rec := upload(t, h, "row.csv", "rep,a,b,c,d\nx,1,5,0,9\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = get(h, "/chart/heatmap.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestHandlerSceneGLB(t *testing.T) {
	_, h := newTestServer(t, true)

	rec := get(h, "/export/scene.glb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "model/gltf-binary", rec.Header().Get("Content-Type"))

	doc := new(gltf.Document)
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(doc))
	// root, base plane, 7 bars
	assert.Len(t, doc.Nodes, 9)
}

func TestHandlerSceneFBX(t *testing.T) {
	_, h := newTestServer(t, true)

	rec := get(h, "/export/scene.fbx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "scene.fbx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("Kaydara FBX Binary")))
}

func TestHandlerUpload(t *testing.T) {
	s, h := newTestServer(t, true)
	before, err := s.Store.Current()
	require.NoError(t, err)

	rec := upload(t, h, "new.csv", "rep,a,b\nx,1,2\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	after, err := s.Store.Current()
	require.NoError(t, err)
	assert.NotEqual(t, before.Revision, after.Revision)
	assert.Equal(t, "new.csv", after.Name)

	rec = get(h, "/json/history?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "new.csv", entries[0].Name)
}

func TestHandlerUploadErrors(t *testing.T) {
	var tests = []struct {
		name    string
		content string
		want    string
	}{
		{"malformed cell", "rep,a,b\nx,1,oops\n", "malformed cell"},
		{"ragged", "rep,a,b\nx,1\n", "malformed matrix"},
		{"empty", "rep,a,b\nx,0,-1\n", "empty input"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, h := newTestServer(t, true)
			before, err := s.Store.Current()
			require.NoError(t, err)

			rec := upload(t, h, "bad.csv", test.content)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), test.want)

			after, err := s.Store.Current()
			require.NoError(t, err)
			assert.Same(t, before, after)
		})
	}
}

func TestHandlerHistoryLimit(t *testing.T) {
	_, h := newTestServer(t, true)
	assert.Equal(t, http.StatusBadRequest, get(h, "/json/history?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/json/history?limit=many").Code)
}

func TestHandlerHistoryDisabled(t *testing.T) {
	s, _ := newTestServer(t, true)
	s.History = nil
	assert.Equal(t, http.StatusNotFound, get(s.Router(), "/json/history").Code)
}

func TestViewer(t *testing.T) {
	_, h := newTestServer(t, false)

	rec := get(h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "GLTFLoader"))
	assert.Contains(t, body, "/export/scene.glb")
}
