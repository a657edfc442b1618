package meshing

import (
	"fmt"

	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// FaceAll marks a MeshData carrying all six directions in one buffer
// (partitioning disabled).
const FaceAll = world.Face(world.FaceCount)

// MeshData is one render-ready buffer pair for a chunk, or for one direction
// of a chunk when partitioning is on. Instances are immutable once returned
// by a build.
type MeshData struct {
	// ID is stable across rebuilds of the same (chunk, direction, segment)
	// so the renderer can correlate replacements.
	ID string

	Coord   world.ChunkCoord
	Face    world.Face // FaceAll for combined buffers
	Segment int
	Layout  VertexLayout

	Vertices []byte   // packed per Layout
	Indices  []uint32 // 6 per quad, triangles 0-1-2 / 0-2-3

	VertexCount int
	QuadCount   int

	// World-space bounding extent of the contained geometry.
	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3

	// Generation of the build that produced this mesh; set by the scheduler.
	Generation uint64
}

func meshID(coord world.ChunkCoord, face world.Face, segment int) string {
	if face == FaceAll {
		return fmt.Sprintf("%d,%d,%d/all#%d", coord.X, coord.Y, coord.Z, segment)
	}
	return fmt.Sprintf("%d,%d,%d/%s#%d", coord.X, coord.Y, coord.Z, face, segment)
}

// buildSegments encodes quads into one or more MeshData, splitting whenever
// a segment would exceed the vertex budget. Splitting instead of truncating
// keeps mesh completeness a hard guarantee regardless of chunk pathology.
func (ctx *Context) buildSegments(coord world.ChunkCoord, face world.Face, quads []Quad, layout VertexLayout) ([]*MeshData, error) {
	if len(quads) == 0 {
		return nil, nil
	}

	budget := ctx.Settings.VertexBudget
	quadsPerSegment := budget / 4
	if quadsPerSegment < 1 {
		quadsPerSegment = 1
	}

	var meshes []*MeshData
	for segment := 0; len(quads) > 0; segment++ {
		n := len(quads)
		if n > quadsPerSegment {
			n = quadsPerSegment
		}
		md, err := ctx.encodeSegment(coord, face, segment, quads[:n], layout)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, md)
		quads = quads[n:]
	}
	return meshes, nil
}

func (ctx *Context) encodeSegment(coord world.ChunkCoord, face world.Face, segment int, quads []Quad, layout VertexLayout) (*MeshData, error) {
	md := &MeshData{
		ID:      meshID(coord, face, segment),
		Coord:   coord,
		Face:    face,
		Segment: segment,
		Layout:  layout,

		Vertices: make([]byte, 0, len(quads)*4*layout.Stride()),
		Indices:  make([]uint32, 0, len(quads)*6),
	}

	origin := mgl32.Vec3{
		float32(coord.X * world.ChunkSizeX),
		float32(coord.Y * world.ChunkSizeY),
		float32(coord.Z * world.ChunkSizeZ),
	}
	first := true

	for qi := range quads {
		q := &quads[qi]
		region := ctx.Textures.Resolve(q.Tex)

		var err error
		md.Vertices, err = appendQuad(md.Vertices, q, region, layout)
		if err != nil {
			return nil, err
		}

		base := uint32(md.VertexCount)
		for _, rel := range quadIndices {
			md.Indices = append(md.Indices, base+rel)
		}
		md.VertexCount += 4
		md.QuadCount++

		for _, c := range q.Corners() {
			p := origin.Add(c)
			if first {
				md.BoundsMin, md.BoundsMax = p, p
				first = false
				continue
			}
			md.BoundsMin = mgl32.Vec3{
				min32(md.BoundsMin.X(), p.X()),
				min32(md.BoundsMin.Y(), p.Y()),
				min32(md.BoundsMin.Z(), p.Z()),
			}
			md.BoundsMax = mgl32.Vec3{
				max32(md.BoundsMax.X(), p.X()),
				max32(md.BoundsMax.Y(), p.Y()),
				max32(md.BoundsMax.Z(), p.Z()),
			}
		}
	}
	return md, nil
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
