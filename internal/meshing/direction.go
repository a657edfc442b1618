package meshing

import (
	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Axis indices into chunk-local coordinate triples.
const (
	axisX = 0
	axisY = 1
	axisZ = 2
)

// dirSpec fixes the geometry of one face direction: the depth axis along the
// normal and the two in-plane axes (u, v). The u and v axes are chosen so
// that u cross v equals the outward normal; a single emit path then produces
// counter-clockwise winding for all six directions.
type dirSpec struct {
	face      world.Face
	normal    mgl32.Vec3
	tangent   mgl32.Vec3 // unit vector along u
	bitangent mgl32.Vec3 // unit vector along v
	uAxis     int
	vAxis     int
	depthAxis int
	positive  bool // normal points toward +depthAxis
}

var dirSpecs = [world.FaceCount]dirSpec{
	world.FaceUp: {
		face: world.FaceUp, normal: mgl32.Vec3{0, 1, 0},
		tangent: mgl32.Vec3{0, 0, 1}, bitangent: mgl32.Vec3{1, 0, 0},
		uAxis: axisZ, vAxis: axisX, depthAxis: axisY, positive: true,
	},
	world.FaceDown: {
		face: world.FaceDown, normal: mgl32.Vec3{0, -1, 0},
		tangent: mgl32.Vec3{1, 0, 0}, bitangent: mgl32.Vec3{0, 0, 1},
		uAxis: axisX, vAxis: axisZ, depthAxis: axisY,
	},
	world.FaceNorth: {
		face: world.FaceNorth, normal: mgl32.Vec3{0, 0, 1},
		tangent: mgl32.Vec3{1, 0, 0}, bitangent: mgl32.Vec3{0, 1, 0},
		uAxis: axisX, vAxis: axisY, depthAxis: axisZ, positive: true,
	},
	world.FaceSouth: {
		face: world.FaceSouth, normal: mgl32.Vec3{0, 0, -1},
		tangent: mgl32.Vec3{0, 1, 0}, bitangent: mgl32.Vec3{1, 0, 0},
		uAxis: axisY, vAxis: axisX, depthAxis: axisZ,
	},
	world.FaceEast: {
		face: world.FaceEast, normal: mgl32.Vec3{1, 0, 0},
		tangent: mgl32.Vec3{0, 1, 0}, bitangent: mgl32.Vec3{0, 0, 1},
		uAxis: axisY, vAxis: axisZ, depthAxis: axisX, positive: true,
	},
	world.FaceWest: {
		face: world.FaceWest, normal: mgl32.Vec3{-1, 0, 0},
		tangent: mgl32.Vec3{0, 0, 1}, bitangent: mgl32.Vec3{0, 1, 0},
		uAxis: axisZ, vAxis: axisY, depthAxis: axisX,
	},
}

var chunkDims = [3]int{world.ChunkSizeX, world.ChunkSizeY, world.ChunkSizeZ}

// Directions returns the six face directions in build order.
func Directions() [world.FaceCount]world.Face {
	return [world.FaceCount]world.Face{
		world.FaceUp, world.FaceDown,
		world.FaceNorth, world.FaceSouth,
		world.FaceEast, world.FaceWest,
	}
}

// Normal returns the outward unit normal of a face direction.
func Normal(face world.Face) mgl32.Vec3 {
	return dirSpecs[face].normal
}

// Tangent returns the in-plane basis of a face direction (tangent along u,
// bitangent along v).
func Tangent(face world.Face) (tangent, bitangent mgl32.Vec3) {
	return dirSpecs[face].tangent, dirSpecs[face].bitangent
}
