package scene

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"
)

const (
	fbxVersion            = 7400
	fbxCreator            = "FBX SDK/FBX Plugins version 2013.3 build=20121223"
	fbxApplicationVendor  = "mogaika"
	fbxApplicationName    = "matrix3d"
	fbxApplicationVersion = "1.0"
	fbxDateTimeGMT        = "01/01/1970 00:00:00.000"
	fbxCreationTime       = "1970-01-01 10:00:00:000"
)

var fbxFileId = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

// FBXBuilder collects objects and connections of one FBX 7.4 document.
// Object ids are generated; id 0 is the scene root.
type FBXBuilder struct {
	f      *fbx.FBX
	lastId int64

	objects     *fbx.Node
	connections *fbx.Node
}

func NewFBXBuilder(filename string) *FBXBuilder {
	b := &FBXBuilder{
		f:           fbx.NewFBX(fbxVersion),
		lastId:      1000000,
		objects:     bfbx73.Objects(),
		connections: bfbx73.Connections(),
	}
	b.Root().AddNodes(
		fbxHeaderExtension(filename),
		bfbx73.FileId(fbxFileId),
		bfbx73.CreationTime(fbxCreationTime),
		bfbx73.Creator(fbxCreator),
		fbxGlobalSettings(),
		bfbx73.Documents().AddNodes(
			bfbx73.Count(1),
			bfbx73.Document(b.GenerateId(), "Scene", "Scene").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("SourceObject", "object", "", ""),
					bfbx73.P("ActiveAnimStackName", "KString", "", "", ""),
				),
				bfbx73.RootNode(0),
			),
		),
		bfbx73.References(),
		fbxDefinitions(),
		b.objects,
		b.connections,
		bfbx73.Takes().AddNodes(
			bfbx73.Current(""),
		),
	)
	return b
}

func fbxHeaderExtension(filename string) *fbx.Node {
	application := func(prefix string) []*fbx.Node {
		return []*fbx.Node{
			bfbx73.P(prefix, "Compound", "", ""),
			bfbx73.P(prefix+"|ApplicationVendor", "KString", "", "", fbxApplicationVendor),
			bfbx73.P(prefix+"|ApplicationName", "KString", "", "", fbxApplicationName),
			bfbx73.P(prefix+"|ApplicationVersion", "KString", "", "", fbxApplicationVersion),
			bfbx73.P(prefix+"|DateTime_GMT", "DateTime", "", "", fbxDateTimeGMT),
		}
	}

	props := bfbx73.Properties70().AddNodes(
		bfbx73.P("DocumentUrl", "KString", "Url", "", filename),
		bfbx73.P("SrcDocumentUrl", "KString", "Url", "", filename),
	)
	props.AddNodes(application("Original")...)
	props.AddNodes(bfbx73.P("Original|FileName", "KString", "", "", filepath.Base(filename)))
	props.AddNodes(application("LastSaved")...)

	// fixed timestamp keeps exports of the same matrix byte identical
	return bfbx73.FBXHeaderExtension().AddNodes(
		bfbx73.FBXHeaderVersion(1003),
		bfbx73.FBXVersion(fbxVersion),
		bfbx73.EncryptionType(0),
		bfbx73.CreationTimeStamp().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Year(1970),
			bfbx73.Month(1),
			bfbx73.Day(1),
			bfbx73.Hour(10),
			bfbx73.Minute(0),
			bfbx73.Second(0),
			bfbx73.Millisecond(0),
		),
		bfbx73.Creator(fbxCreator),
		bfbx73.SceneInfo("GlobalInfo\x00\x01SceneInfo", "UserData").AddNodes(
			bfbx73.Type("UserData"),
			bfbx73.Version(100),
			bfbx73.MetaData().AddNodes(
				bfbx73.Version(100),
				bfbx73.Title(filepath.Base(filename)),
				bfbx73.Subject(""),
				bfbx73.Author(""),
				bfbx73.Keywords(""),
				bfbx73.Revision(""),
				bfbx73.Comment(""),
			),
			props,
		),
	)
}

// Y up, Z front, X right: the same frame as the glTF export
func fbxGlobalSettings() *fbx.Node {
	return bfbx73.GlobalSettings().AddNodes(
		bfbx73.Version(1000),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("UpAxis", "int", "Integer", "", int32(1)),
			bfbx73.P("UpAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("FrontAxis", "int", "Integer", "", int32(2)),
			bfbx73.P("FrontAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("CoordAxis", "int", "Integer", "", int32(0)),
			bfbx73.P("CoordAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("OriginalUpAxis", "int", "Integer", "", int32(1)),
			bfbx73.P("OriginalUpAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
			bfbx73.P("OriginalUnitScaleFactor", "double", "Number", "", float64(1)),
			bfbx73.P("AmbientColor", "ColorRGB", "Color", "", float64(0), float64(0), float64(0)),
		),
	)
}

func fbxDefinitions() *fbx.Node {
	return bfbx73.Definitions().AddNodes(
		bfbx73.Version(100),
		bfbx73.Count(1),
		bfbx73.ObjectType("GlobalSettings").AddNodes(
			bfbx73.Count(1),
		),
		bfbx73.ObjectType("Model").AddNodes(
			bfbx73.Count(0),
			bfbx73.PropertyTemplate("FbxNode").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("QuaternionInterpolate", "enum", "", "", int32(0)),
					bfbx73.P("Show", "bool", "", "", int32(1)),
					bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
					bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
					bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
					bfbx73.P("Visibility", "Visibility", "", "A", float64(1)),
					bfbx73.P("Visibility Inheritance", "Visibility Inheritance", "", "", int32(1)),
				),
			),
		),
		bfbx73.ObjectType("Material").AddNodes(
			bfbx73.Count(0),
			bfbx73.PropertyTemplate("FbxSurfaceLambert").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("ShadingModel", "KString", "", "", "Lambert"),
					bfbx73.P("MultiLayer", "bool", "", "", int32(0)),
					bfbx73.P("EmissiveColor", "Color", "", "A", float64(0), float64(0), float64(0)),
					bfbx73.P("EmissiveFactor", "Number", "", "A", float64(1)),
					bfbx73.P("AmbientColor", "Color", "", "A", float64(0.2), float64(0.2), float64(0.2)),
					bfbx73.P("AmbientFactor", "Number", "", "A", float64(1)),
					bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
					bfbx73.P("DiffuseFactor", "Number", "", "A", float64(1)),
				),
			),
		),
		bfbx73.ObjectType("Geometry").AddNodes(
			bfbx73.Count(0),
			bfbx73.PropertyTemplate("FbxMesh").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
					bfbx73.P("Primary Visibility", "bool", "", "", int32(1)),
					bfbx73.P("Casts Shadows", "bool", "", "", int32(1)),
					bfbx73.P("Receive Shadows", "bool", "", "", int32(1)),
				),
			),
		),
		bfbx73.ObjectType("NodeAttribute").AddNodes(
			bfbx73.Count(0),
			bfbx73.PropertyTemplate("FbxNull").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("Size", "double", "Number", "", float64(100)),
					bfbx73.P("Look", "enum", "", "", int32(1)),
				),
			),
		),
	)
}

// countDefinitions fills the per type object counts the FBX readers rely on.
func (b *FBXBuilder) countDefinitions() {
	counts := make(map[string]int32)
	for _, object := range b.objects.Nodes {
		counts[object.Name]++
	}

	definitions := b.Root().GetNode("Definitions")
	total := int32(1) // GlobalSettings

	for name, count := range counts {
		total += count

		var objectType *fbx.Node
		for _, ot := range definitions.GetNodes("ObjectType") {
			if ot.Properties[0].(string) == name {
				objectType = ot
			}
		}
		if objectType == nil {
			objectType = bfbx73.ObjectType(name)
			definitions.AddNode(objectType)
		}
		objectType.GetOrAddNode(bfbx73.Count(0)).Properties[0] = count
	}

	definitions.GetOrAddNode(bfbx73.Count(0)).Properties[0] = total
}

func (b *FBXBuilder) Root() *fbx.Node { return &b.f.Root }

func (b *FBXBuilder) Objects() []*fbx.Node { return b.objects.Nodes }

func (b *FBXBuilder) Connections() []*fbx.Node { return b.connections.Nodes }

func (b *FBXBuilder) GenerateId() int64 {
	b.lastId++
	return b.lastId
}

func (b *FBXBuilder) AddObjects(nodes ...*fbx.Node)     { b.objects.AddNodes(nodes...) }
func (b *FBXBuilder) AddConnections(nodes ...*fbx.Node) { b.connections.AddNodes(nodes...) }

// Write encodes the document. The encoder seeks back to patch node offsets,
// so it goes through a temp file instead of w directly.
func (b *FBXBuilder) Write(w io.Writer) error {
	b.countDefinitions()

	tempFile, err := os.CreateTemp("", "matrix3d.*.fbx")
	if err != nil {
		return errors.Wrapf(err, "Failed to create temp file")
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	if err := fbx.Write(tempFile, b.f); err != nil {
		return errors.Wrapf(err, "Failed to encode fbx")
	}
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "Unable to seek")
	}
	_, err = io.Copy(w, tempFile)
	return err
}
