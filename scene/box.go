package scene

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type geometry struct {
	positionAccessor uint32
	normalAccessor   uint32
	indicesAccessor  uint32
}

func (g geometry) attributes() map[string]uint32 {
	return map[string]uint32{
		"POSITION": g.positionAccessor,
		"NORMAL":   g.normalAccessor,
	}
}

// unit cube centered on the origin, 4 vertices per face so normals stay flat
var boxFaces = []struct {
	normal  [3]float32
	corners [4][3]float32
}{
	{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
	{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
	{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
	{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
}

func writeBox(doc *gltf.Document) geometry {
	positions := make([][3]float32, 0, len(boxFaces)*4)
	normals := make([][3]float32, 0, len(boxFaces)*4)
	indices := make([]uint32, 0, len(boxFaces)*6)

	for _, face := range boxFaces {
		base := uint32(len(positions))
		for _, corner := range face.corners {
			positions = append(positions, corner)
			normals = append(normals, face.normal)
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return geometry{
		positionAccessor: modeler.WritePosition(doc, positions),
		normalAccessor:   modeler.WriteNormal(doc, normals),
		indicesAccessor:  modeler.WriteIndices(doc, indices),
	}
}

// unit quad in the XZ plane facing up
func writePlane(doc *gltf.Document) geometry {
	positions := [][3]float32{{-0.5, 0, 0.5}, {0.5, 0, 0.5}, {0.5, 0, -0.5}, {-0.5, 0, -0.5}}
	normals := [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	return geometry{
		positionAccessor: modeler.WritePosition(doc, positions),
		normalAccessor:   modeler.WriteNormal(doc, normals),
		indicesAccessor:  modeler.WriteIndices(doc, indices),
	}
}
