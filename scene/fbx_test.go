package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mogaika/fbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/grid"
)

func buildTestFBX(t *testing.T) (*grid.Layout, *FBXBuilder) {
	t.Helper()
	layout, err := grid.Map(testMatrix{{0, 5}, {10, 7}}, grid.DefaultConfig())
	require.NoError(t, err)
	scale, err := colorscale.New("ylorrd")
	require.NoError(t, err)

	b, err := BuildFBX(layout, scale, "test.fbx")
	require.NoError(t, err)
	return layout, b
}

func countObjects(b *FBXBuilder) map[string]int {
	counts := make(map[string]int)
	for _, o := range b.Objects() {
		counts[o.Name]++
	}
	return counts
}

func findModel(b *FBXBuilder, name string) *fbx.Node {
	for _, o := range b.Objects() {
		if o.Name == "Model" && o.Properties[1].(string) == name+"\x00\x01Model" {
			return o
		}
	}
	return nil
}

func lclProperty(model *fbx.Node, name string) []float64 {
	for _, p := range model.GetNode("Properties70").GetNodes("P") {
		if p.Properties[0].(string) == name {
			return []float64{p.Properties[4].(float64), p.Properties[5].(float64), p.Properties[6].(float64)}
		}
	}
	return nil
}

func TestBuildFBX(t *testing.T) {
	layout, b := buildTestFBX(t)
	bars := len(layout.Cells)

	counts := countObjects(b)
	// root, base, bars
	assert.Equal(t, 2+bars, counts["Model"])
	// one shared box, one plane
	assert.Equal(t, 2, counts["Geometry"])
	assert.Equal(t, 1+bars, counts["Material"])
	assert.Equal(t, 1, counts["NodeAttribute"])

	// attribute and root link, base geometry, material and parent, same per bar
	assert.Len(t, b.Connections(), 2+3+3*bars)

	cell := layout.Cells[0]
	bar := findModel(b, "bar_r0_c1")
	require.NotNil(t, bar)
	assert.Equal(t, []float64{cell.Position[0], cell.Position[1], cell.Position[2]}, lclProperty(bar, "Lcl Translation"))
	assert.Equal(t, []float64{cell.Size[0], cell.Size[1], cell.Size[2]}, lclProperty(bar, "Lcl Scaling"))

	base := findModel(b, PlaneNodeName)
	require.NotNil(t, base)
	assert.Equal(t, []float64{layout.Plane.Width, 1, layout.Plane.Depth}, lclProperty(base, "Lcl Scaling"))
}

func TestBuildFBXDefinitionCounts(t *testing.T) {
	layout, b := buildTestFBX(t)
	b.countDefinitions()

	definitions := b.Root().GetNode("Definitions")
	for _, ot := range definitions.GetNodes("ObjectType") {
		if ot.Properties[0].(string) == "Model" {
			assert.Equal(t, int32(2+len(layout.Cells)), ot.GetNode("Count").Properties[0])
		}
	}
}

func TestExportFBX(t *testing.T) {
	layout, err := grid.Map(testMatrix{{1, 5, 0, 9}}, grid.DefaultConfig())
	require.NoError(t, err)
	scale, err := colorscale.New("viridis")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportFBX(&buf, layout, scale, "row.fbx"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("Kaydara FBX Binary")))

	path := filepath.Join(t.TempDir(), "row.fbx")
	require.NoError(t, ExportFBXFile(path, layout, scale))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("Kaydara FBX Binary")))
	assert.Contains(t, string(data), "bar_r0_c3")
}

func TestBuildFBXNilLayout(t *testing.T) {
	_, err := BuildFBX(nil, nil, "x.fbx")
	assert.Error(t, err)
}
