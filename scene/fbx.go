package scene

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/grid"
)

// fbxGeometry appends a Mesh geometry made of quads and returns its id.
// FBX marks the last index of every polygon as -(index)-1.
func fbxGeometry(b *FBXBuilder, name string, positions, normals [][3]float32, quads [][4]int32) int64 {
	vertices := make([]float64, 0, len(positions)*3)
	for _, p := range positions {
		vertices = append(vertices, float64(p[0]), float64(p[1]), float64(p[2]))
	}
	normalValues := make([]float64, 0, len(normals)*3)
	for _, n := range normals {
		normalValues = append(normalValues, float64(n[0]), float64(n[1]), float64(n[2]))
	}
	indexes := make([]int32, 0, len(quads)*4)
	for _, q := range quads {
		indexes = append(indexes, q[0], q[1], q[2], -q[3]-1)
	}

	id := b.GenerateId()
	b.AddObjects(bfbx73.Geometry(id, name+"\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(indexes),
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(normalValues),
		),
		bfbx73.LayerElementMaterial(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("AllSame"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.Materials([]int32{0}),
		),
		bfbx73.Layer(0).AddNodes(
			bfbx73.Version(100),
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementNormal"),
				bfbx73.TypedIndex(0),
			),
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementMaterial"),
				bfbx73.TypedIndex(0),
			),
		),
	))
	return id
}

func fbxBoxGeometry(b *FBXBuilder) int64 {
	positions := make([][3]float32, 0, len(boxFaces)*4)
	normals := make([][3]float32, 0, len(boxFaces)*4)
	quads := make([][4]int32, 0, len(boxFaces))
	for _, face := range boxFaces {
		base := int32(len(positions))
		for _, corner := range face.corners {
			positions = append(positions, corner)
			normals = append(normals, face.normal)
		}
		quads = append(quads, [4]int32{base, base + 1, base + 2, base + 3})
	}
	return fbxGeometry(b, "box", positions, normals, quads)
}

func fbxPlaneGeometry(b *FBXBuilder) int64 {
	return fbxGeometry(b, PlaneNodeName,
		[][3]float32{{-0.5, 0, 0.5}, {0.5, 0, 0.5}, {0.5, 0, -0.5}, {-0.5, 0, -0.5}},
		[][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		[][4]int32{{0, 1, 2, 3}})
}

func fbxMaterial(b *FBXBuilder, name string, rgba [4]float32) int64 {
	id := b.GenerateId()
	r, g, bl := float64(rgba[0]), float64(rgba[1]), float64(rgba[2])
	b.AddObjects(bfbx73.Material(id, name+"\x00\x01Material", "").AddNodes(
		bfbx73.Version(102),
		bfbx73.ShadingModel("lambert"),
		bfbx73.MultiLayer(0),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("AmbientColor", "Color", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("DiffuseColor", "Color", "", "A", r, g, bl),
			bfbx73.P("Emissive", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
			bfbx73.P("Ambient", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
			bfbx73.P("Diffuse", "Vector3D", "Vector", "", r, g, bl),
			bfbx73.P("Opacity", "double", "Number", "", float64(rgba[3])),
		),
	))
	return id
}

func fbxMeshModel(b *FBXBuilder, name string, translation, scaling mgl64.Vec3) *fbx.Node {
	return bfbx73.Model(b.GenerateId(), name+"\x00\x01Model", "Mesh").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", translation[0], translation[1], translation[2]),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", scaling[0], scaling[1], scaling[2]),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
}

func modelId(model *fbx.Node) int64 { return model.Properties[0].(int64) }

// BuildFBX mirrors Build: a null root model holding the base plane and one
// mesh model per bar. Every bar model shares one box geometry and owns its
// material.
func BuildFBX(layout *grid.Layout, scale *colorscale.Scale, filename string) (*FBXBuilder, error) {
	if layout == nil {
		return nil, errors.New("nil layout")
	}

	b := NewFBXBuilder(filename)

	rootId := b.GenerateId()
	root := bfbx73.Model(rootId, RootNodeName+"\x00\x01Model", "Null").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70(),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
	rootAttribute := bfbx73.NodeAttribute(b.GenerateId(), RootNodeName+"\x00\x01NodeAttribute", "Null").AddNodes(
		bfbx73.TypeFlags("Null"),
	)
	b.AddObjects(root, rootAttribute)
	b.AddConnections(
		bfbx73.C("OO", rootAttribute.Properties[0].(int64), rootId),
		bfbx73.C("OO", rootId, 0),
	)

	box := fbxBoxGeometry(b)
	plane := fbxPlaneGeometry(b)

	base := fbxMeshModel(b, PlaneNodeName, mgl64.Vec3{}, mgl64.Vec3{layout.Plane.Width, 1, layout.Plane.Depth})
	baseMaterial := fbxMaterial(b, PlaneNodeName, [4]float32{0, 0, 0, 1})
	b.AddObjects(base)
	b.AddConnections(
		bfbx73.C("OO", plane, modelId(base)),
		bfbx73.C("OO", baseMaterial, modelId(base)),
		bfbx73.C("OO", modelId(base), rootId),
	)

	for _, cell := range layout.Cells {
		name := fmt.Sprintf("bar_r%d_c%d", cell.Row, cell.Col)
		model := fbxMeshModel(b, name, cell.Position, cell.Size)
		material := fbxMaterial(b, name, scale.RGBA(cell.ColorScalar))
		b.AddObjects(model)
		b.AddConnections(
			bfbx73.C("OO", box, modelId(model)),
			bfbx73.C("OO", material, modelId(model)),
			bfbx73.C("OO", modelId(model), rootId),
		)
	}

	return b, nil
}

func ExportFBX(w io.Writer, layout *grid.Layout, scale *colorscale.Scale, filename string) error {
	b, err := BuildFBX(layout, scale, filename)
	if err != nil {
		return err
	}
	return b.Write(w)
}

func ExportFBXFile(path string, layout *grid.Layout, scale *colorscale.Scale) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	defer f.Close()

	if err := ExportFBX(f, layout, scale, path); err != nil {
		return errors.Wrapf(err, "Failed to encode %q", path)
	}
	return f.Close()
}
