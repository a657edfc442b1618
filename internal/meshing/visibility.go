package meshing

import (
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"
)

// FaceVisible reports whether the face of the block at world coordinates
// (x, y, z) must be emitted. Pure function of the accessor's current state.
//
// Unloaded neighbor space reads as air through the accessor and is therefore
// visible; a hole-free mesh at load boundaries matters more than the
// transient over-draw, which the rebuild after the neighbor loads removes.
func FaceVisible(acc world.Accessor, cat *registry.Catalog, x, y, z int, face world.Face) bool {
	dx, dy, dz := face.Offset()
	ny := y + dy
	if dy != 0 {
		if ny < world.MinY {
			// no geometry below the world floor
			return false
		}
		if ny >= world.MaxY {
			// sky above the world ceiling
			return true
		}
	}
	nb := acc.Get(x+dx, ny, z+dz)
	if nb == world.BlockTypeAir {
		return true
	}
	return cat.Get(nb).IsTransparent
}
