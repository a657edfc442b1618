package meshing

import (
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"
)

// Fluid blocks are not solid and never enter the solid visibility map; their
// surfaces mesh in a separate pass with their own visibility rule. Without
// flow levels every fluid block is a full source, so surfaces sit at block
// height and merge through the same greedy machinery as solid faces.

// fluidFaceVisible reports whether a fluid block's face must be emitted. A
// face inside the same fluid body is hidden, as is one pressed against an
// opaque solid; everything else (air, unloaded space, transparent solids)
// shows the surface.
func fluidFaceVisible(acc world.Accessor, cat *registry.Catalog, bt world.BlockType, x, y, z int, face world.Face) bool {
	dx, dy, dz := face.Offset()
	ny := y + dy
	if dy != 0 {
		if ny < world.MinY {
			return false
		}
		if ny >= world.MaxY {
			return true
		}
	}
	nb := acc.Get(x+dx, ny, z+dz)
	if nb == bt {
		return false
	}
	def := cat.Get(nb)
	return !def.IsSolid || def.IsTransparent
}

// MeshFluidDirection scans the chunk slice by slice like MeshDirection, but
// over fluid blocks with the fluid visibility rule.
func (m *Mesher) MeshFluidDirection(c *world.Chunk, face world.Face) []Quad {
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
		if m.buildFluidMask(c, spec, base, depth, mask, uSize, vSize) == 0 {
			continue
		}
		quads = m.merge(mask, uSize, vSize, face, depth, quads)
	}
	return quads
}

func (m *Mesher) buildFluidMask(c *world.Chunk, spec *dirSpec, base [3]int, depth int, mask []maskCell, uSize, vSize int) int {
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
			if bt == world.BlockTypeAir || !m.cat.Get(bt).IsFluid {
				continue
			}
			wx := base[axisX] + local[axisX]
			wy := base[axisY] + local[axisY]
			wz := base[axisZ] + local[axisZ]
			if !fluidFaceVisible(m.acc, m.cat, bt, wx, wy, wz, spec.face) {
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
