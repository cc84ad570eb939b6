package scene

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/grid"
)

type testMatrix [][]float64

func (m testMatrix) Rows() int               { return len(m) }
func (m testMatrix) Cols() int               { return len(m[0]) }
func (m testMatrix) At(row, col int) float64 { return m[row][col] }

func buildTestDoc(t *testing.T) (*grid.Layout, *gltf.Document) {
	t.Helper()
	layout, err := grid.Map(testMatrix{{0, 5}, {10, 7}}, grid.DefaultConfig())
	require.NoError(t, err)
	scale, err := colorscale.New("ylorrd")
	require.NoError(t, err)

	doc, err := Build(layout, scale)
	require.NoError(t, err)
	return layout, doc
}

func TestBuild(t *testing.T) {
	layout, doc := buildTestDoc(t)

	// root, base, bars
	require.Len(t, doc.Nodes, 2+len(layout.Cells))
	require.Len(t, doc.Meshes, 1+len(layout.Cells))
	require.Len(t, doc.Materials, 1+len(layout.Cells))
	assert.Equal(t, []uint32{0}, doc.Scenes[0].Nodes)

	root := doc.Nodes[0]
	assert.Equal(t, RootNodeName, root.Name)
	assert.Len(t, root.Children, 1+len(layout.Cells))

	base := doc.Nodes[1]
	assert.Equal(t, PlaneNodeName, base.Name)
	assert.Equal(t, [3]float32{3, 1, 3}, base.Scale)

	bar := doc.Nodes[2]
	cell := layout.Cells[0]
	assert.Equal(t, "bar_r0_c1", bar.Name)
	assert.Equal(t, [3]float32(vec32(cell.Position)), bar.Translation)
	assert.Equal(t, [3]float32(vec32(cell.Size)), bar.Scale)
}

func TestBuildColours(t *testing.T) {
	layout, doc := buildTestDoc(t)

	var low, high *gltf.Material
	for i, cell := range layout.Cells {
		m := doc.Materials[i+1]
		switch cell.Normalized {
		case 0:
			low = m
		case 1:
			high = m
		}
	}
	require.NotNil(t, low)
	require.NotNil(t, high)

	// pale yellow has far more green than dark red
	assert.Greater(t, low.PBRMetallicRoughness.BaseColorFactor[1], high.PBRMetallicRoughness.BaseColorFactor[1])
	assert.Equal(t, [4]float32{0, 0, 0, 1}, *doc.Materials[0].PBRMetallicRoughness.BaseColorFactor)
}

func TestExportBinaryRoundTrip(t *testing.T) {
	layout, doc := buildTestDoc(t)

	var buf bytes.Buffer
	require.NoError(t, ExportBinary(&buf, doc))
	assert.Equal(t, "glTF", buf.String()[:4])

	decoded := new(gltf.Document)
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(decoded))
	assert.Len(t, decoded.Nodes, 2+len(layout.Cells))
	assert.Len(t, decoded.Accessors, len(doc.Accessors))
}

func TestExportBinaryFile(t *testing.T) {
	_, doc := buildTestDoc(t)
	path := filepath.Join(t.TempDir(), "scene.glb")
	require.NoError(t, ExportBinaryFile(path, doc))

	decoded, err := gltf.Open(path)
	require.NoError(t, err)
	assert.Equal(t, RootNodeName, decoded.Nodes[0].Name)
}

func TestBuildNilLayout(t *testing.T) {
	_, err := Build(nil, nil)
	assert.Error(t, err)
}

func TestLinearColor(t *testing.T) {
	c := linearColor([4]float32{1, 0, 0.5, 1})
	assert.InDelta(t, 1, c[0], 1e-6)
	assert.InDelta(t, 0, c[1], 1e-6)
	assert.InDelta(t, 0.214, c[2], 1e-3)
	assert.Equal(t, float32(1), c[3])
}
