package meshing

import (
	"voxelmesh/internal/atlas"
	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Quad is one merged rectangular face on a direction's projection plane.
// U/V are the origin cell, W/H the merged extent along the direction's u and
// v axes, Depth the slice index along the normal axis.
type Quad struct {
	Face  world.Face
	Block world.BlockType
	Tex   int
	U, V  int
	W, H  int
	Depth int
}

// Area returns the covered face count.
func (q *Quad) Area() int {
	return q.W * q.H
}

// Corners returns the quad's four corner positions in chunk-local space,
// counter-clockwise when viewed from outside. Corner 0 is the (U, V) origin;
// corners follow u first, then v, matching the winding guaranteed by the
// direction table's u-cross-v-equals-normal convention.
func (q *Quad) Corners() [4]mgl32.Vec3 {
	spec := &dirSpecs[q.Face]
	plane := float32(q.Depth)
	if spec.positive {
		plane++
	}

	u0 := float32(q.U)
	v0 := float32(q.V)
	u1 := u0 + float32(q.W)
	v1 := v0 + float32(q.H)

	corner := func(u, v float32) mgl32.Vec3 {
		var p [3]float32
		p[spec.depthAxis] = plane
		p[spec.uAxis] = u
		p[spec.vAxis] = v
		return mgl32.Vec3{p[axisX], p[axisY], p[axisZ]}
	}
	return [4]mgl32.Vec3{
		corner(u0, v0),
		corner(u1, v0),
		corner(u1, v1),
		corner(u0, v1),
	}
}

// TiledUVs returns per-corner UVs spanning the texture region scaled by the
// merged extent, so a W x H quad repeats the texture W by H times instead of
// stretching one copy across the merge.
func (q *Quad) TiledUVs(region atlas.Region) [4]mgl32.Vec2 {
	w := float32(q.W)
	h := float32(q.H)
	return [4]mgl32.Vec2{
		{region.U1, region.V1},
		{region.U1 + region.Width()*w, region.V1},
		{region.U1 + region.Width()*w, region.V1 + region.Height()*h},
		{region.U1, region.V1 + region.Height()*h},
	}
}

// regionUVs returns the plain region corners in the same corner order as
// Corners. The compact layout stores these; the consumer derives the tiling
// factor from the integer corner positions when decoding.
func regionUVs(region atlas.Region) [4]mgl32.Vec2 {
	return [4]mgl32.Vec2{
		{region.U1, region.V1},
		{region.U2, region.V1},
		{region.U2, region.V2},
		{region.U1, region.V2},
	}
}

// quadIndices are the two triangles of every quad, relative to its first
// vertex: 0-1-2 and 0-2-3.
var quadIndices = [6]uint32{0, 1, 2, 0, 2, 3}
