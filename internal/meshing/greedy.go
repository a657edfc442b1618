package meshing

import (
	"voxelmesh/internal/atlas"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"
)

// FaceAttributes is one occupied cell of the visibility map. Two cells merge
// into the same quad only when all three fields are identical; keeping the
// depth in the key makes non-convex columns mesh correctly instead of
// collapsing onto a single extreme plane.
type FaceAttributes struct {
	Block world.BlockType
	Tex   int
	Depth int
}

type maskCell struct {
	set  bool
	attr FaceAttributes
}

// Mesher runs greedy face merging for one chunk at a time. It is cheap to
// construct and job-local; builds never share a Mesher across goroutines.
type Mesher struct {
	acc world.Accessor
	cat *registry.Catalog
	tex atlas.Resolver

	mask []maskCell // scratch, reused across slices
}

// NewMesher creates a mesher reading voxels through acc and resolving block
// properties through cat. tex is only consulted later at encode time; the
// mesher itself needs the catalog's texture indices for the merge key.
func NewMesher(acc world.Accessor, cat *registry.Catalog, tex atlas.Resolver) *Mesher {
	return &Mesher{acc: acc, cat: cat, tex: tex}
}

// MeshDirection scans the chunk slice by slice along face's normal axis and
// returns the maximal merged quads for that direction. Worst case
// (checkerboard) degrades to one quad per visible face and stays
// O(cross-section area) per slice.
func (m *Mesher) MeshDirection(c *world.Chunk, face world.Face) []Quad {
	if c == nil {
		return nil
	}
	spec := &dirSpecs[face]
	uSize := chunkDims[spec.uAxis]
	vSize := chunkDims[spec.vAxis]
	dSize := chunkDims[spec.depthAxis]

	if len(m.mask) < uSize*vSize {
		m.mask = make([]maskCell, uSize*vSize)
	}
	mask := m.mask[:uSize*vSize]

	base := [3]int{c.X * world.ChunkSizeX, c.Y * world.ChunkSizeY, c.Z * world.ChunkSizeZ}

	var quads []Quad
	for depth := 0; depth < dSize; depth++ {
		if m.buildMask(c, spec, base, depth, mask, uSize, vSize) == 0 {
			continue
		}
		quads = m.merge(mask, uSize, vSize, face, depth, quads)
	}
	return quads
}

// buildMask fills the (u, v) visibility map for one depth slice and returns
// the number of occupied cells. A cell is occupied when the voxel is solid
// and its face in the scan direction is visible.
func (m *Mesher) buildMask(c *world.Chunk, spec *dirSpec, base [3]int, depth int, mask []maskCell, uSize, vSize int) int {
	count := 0
	var local [3]int
	local[spec.depthAxis] = depth

	for v := 0; v < vSize; v++ {
		for u := 0; u < uSize; u++ {
			i := v*uSize + u
			mask[i] = maskCell{}

			local[spec.uAxis] = u
			local[spec.vAxis] = v
			bt := c.GetBlock(local[axisX], local[axisY], local[axisZ])
			if bt == world.BlockTypeAir {
				continue
			}
			if !m.cat.Get(bt).IsSolid {
				continue
			}
			wx := base[axisX] + local[axisX]
			wy := base[axisY] + local[axisY]
			wz := base[axisZ] + local[axisZ]
			if !FaceVisible(m.acc, m.cat, wx, wy, wz, spec.face) {
				continue
			}

			mask[i] = maskCell{
				set: true,
				attr: FaceAttributes{
					Block: bt,
					Tex:   m.cat.FaceTexture(bt, spec.face),
					Depth: depth,
				},
			}
			count++
		}
	}
	return count
}

// merge consumes the mask destructively: take the first occupied cell in
// row-major order, grow the width along u over identical attributes, grow
// the height along v while every cell of the full width matches, clear the
// covered region and emit one quad.
func (m *Mesher) merge(mask []maskCell, uSize, vSize int, face world.Face, depth int, quads []Quad) []Quad {
	for i := 0; i < len(mask); {
		if !mask[i].set {
			i++
			continue
		}
		u0 := i % uSize
		v0 := i / uSize
		attr := mask[i].attr

		width := 1
		for u0+width < uSize {
			next := mask[i+width]
			if !next.set || next.attr != attr {
				break
			}
			width++
		}

		height := 1
	grow:
		for v0+height < vSize {
			row := (v0 + height) * uSize
			for u := u0; u < u0+width; u++ {
				cell := mask[row+u]
				if !cell.set || cell.attr != attr {
					break grow
				}
			}
			height++
		}

		for v := v0; v < v0+height; v++ {
			row := v * uSize
			for u := u0; u < u0+width; u++ {
				mask[row+u] = maskCell{}
			}
		}

		quads = append(quads, Quad{
			Face:  face,
			Block: attr.Block,
			Tex:   attr.Tex,
			U:     u0,
			V:     v0,
			W:     width,
			H:     height,
			Depth: depth,
		})
	}
	return quads
}
