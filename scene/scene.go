// Package scene exports a grid layout as a glTF scene of coloured boxes.
package scene

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/grid"
)

const (
	RootNodeName  = "matrix"
	PlaneNodeName = "base"
)

// Build creates one node per bar, all sharing a single box geometry, plus a
// black base plane at y=0. Bars get their own material coloured by scale.
func Build(layout *grid.Layout, scale *colorscale.Scale) (*gltf.Document, error) {
	if layout == nil {
		return nil, errors.New("nil layout")
	}

	doc := gltf.NewDocument()
	box := writeBox(doc)
	plane := writePlane(doc)

	root := &gltf.Node{Name: RootNodeName}
	rootIndex := uint32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, root)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, rootIndex)

	planeMaterial := addMaterial(doc, "base", [4]float32{0, 0, 0, 1}, 0, 1)
	planeMesh := addMesh(doc, PlaneNodeName, plane, planeMaterial)
	root.Children = append(root.Children, addNode(doc, &gltf.Node{
		Name:  PlaneNodeName,
		Mesh:  gltf.Index(planeMesh),
		Scale: mgl32.Vec3{float32(layout.Plane.Width), 1, float32(layout.Plane.Depth)},
	}))

	for _, cell := range layout.Cells {
		name := fmt.Sprintf("bar_r%d_c%d", cell.Row, cell.Col)
		material := addMaterial(doc, name, linearColor(scale.RGBA(cell.ColorScalar)), 0.5, 0.5)
		mesh := addMesh(doc, name, box, material)
		root.Children = append(root.Children, addNode(doc, &gltf.Node{
			Name:        name,
			Mesh:        gltf.Index(mesh),
			Translation: vec32(cell.Position),
			Scale:       vec32(cell.Size),
			Extras: map[string]interface{}{
				"row":   cell.Row,
				"col":   cell.Col,
				"value": cell.RawValue,
			},
		}))
	}

	return doc, nil
}

// glTF stores node transforms as float32
func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func addNode(doc *gltf.Document, node *gltf.Node) uint32 {
	doc.Nodes = append(doc.Nodes, node)
	return uint32(len(doc.Nodes) - 1)
}

func addMesh(doc *gltf.Document, name string, g geometry, material uint32) uint32 {
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{
			{
				Indices:    gltf.Index(g.indicesAccessor),
				Attributes: g.attributes(),
				Material:   gltf.Index(material),
			},
		},
	})
	return uint32(len(doc.Meshes) - 1)
}

func addMaterial(doc *gltf.Document, name string, rgba [4]float32, metallic, roughness float32) uint32 {
	color := new([4]float32)
	*color = rgba
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: color,
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	})
	return uint32(len(doc.Materials) - 1)
}

// glTF colour factors are linear, the scale produces sRGB
func linearColor(c [4]float32) [4]float32 {
	for i := 0; i < 3; i++ {
		v := float64(c[i])
		if v <= 0.04045 {
			v /= 12.92
		} else {
			v = math.Pow((v+0.055)/1.055, 2.4)
		}
		c[i] = float32(v)
	}
	return c
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

func ExportBinaryFile(path string, doc *gltf.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	defer f.Close()

	if err := ExportBinary(f, doc); err != nil {
		return errors.Wrapf(err, "Failed to encode %q", path)
	}
	return f.Close()
}
