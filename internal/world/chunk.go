package world

const (
	// Chunk dimensions
	ChunkSizeX = 16
	ChunkSizeY = 256
	ChunkSizeZ = 16

	// Section dimensions
	SectionHeight = 16
	NumSections   = ChunkSizeY / SectionHeight
	SectionVolume = ChunkSizeX * SectionHeight * ChunkSizeZ

	// Vertical world bounds. Below MinY there is no geometry at all; at or
	// above MaxY there is only sky.
	MinY = 0
	MaxY = ChunkSizeY
)

// ChunkCoord identifies a chunk's position in the world grid.
type ChunkCoord struct {
	X, Y, Z int
}

// Section is a 16x16x16 sub-volume of a chunk. A nil blocks slice means the
// whole section is air.
type Section struct {
	blocks []BlockType
	nonAir int
}

// Chunk is a 16x256x16 column of blocks, stored sparsely per section.
type Chunk struct {
	X, Y, Z  int
	sections [NumSections]*Section
	dirty    bool
}

// NewChunk creates an empty chunk at the given chunk coordinates.
func NewChunk(x, y, z int) *Chunk {
	return &Chunk{X: x, Y: y, Z: z, dirty: true}
}

// Coord returns the chunk's grid coordinate.
func (c *Chunk) Coord() ChunkCoord {
	return ChunkCoord{X: c.X, Y: c.Y, Z: c.Z}
}

// indexInSection converts local section coordinates (x, localY, z) to a flat index.
func indexInSection(x, localY, z int) int {
	return x*SectionHeight*ChunkSizeZ + localY*ChunkSizeZ + z
}

// GetBlock returns the block at local chunk coordinates. Out-of-range
// coordinates read as air.
func (c *Chunk) GetBlock(x, y, z int) BlockType {
	if x < 0 || x >= ChunkSizeX || y < 0 || y >= ChunkSizeY || z < 0 || z >= ChunkSizeZ {
		return BlockTypeAir
	}
	sec := c.sections[y/SectionHeight]
	if sec == nil || sec.blocks == nil {
		return BlockTypeAir
	}
	return sec.blocks[indexInSection(x, y%SectionHeight, z)]
}

// SetBlock sets the block at local chunk coordinates, allocating or freeing
// section storage as needed and marking the chunk dirty on any change.
func (c *Chunk) SetBlock(x, y, z int, bt BlockType) {
	if x < 0 || x >= ChunkSizeX || y < 0 || y >= ChunkSizeY || z < 0 || z >= ChunkSizeZ {
		return
	}

	secIdx := y / SectionHeight
	idx := indexInSection(x, y%SectionHeight, z)
	sec := c.sections[secIdx]

	if bt == BlockTypeAir {
		if sec == nil || sec.blocks == nil {
			return
		}
		if sec.blocks[idx] == BlockTypeAir {
			return
		}
		sec.blocks[idx] = BlockTypeAir
		sec.nonAir--
		c.dirty = true
		if sec.nonAir == 0 {
			c.sections[secIdx] = nil
		}
		return
	}

	if sec == nil {
		sec = &Section{}
		c.sections[secIdx] = sec
	}
	if sec.blocks == nil {
		sec.blocks = make([]BlockType, SectionVolume)
	}

	old := sec.blocks[idx]
	if old == bt {
		return
	}
	if old == BlockTypeAir {
		sec.nonAir++
	}
	sec.blocks[idx] = bt
	c.dirty = true
}

// IsAir reports whether the block at local coordinates is air.
func (c *Chunk) IsAir(x, y, z int) bool {
	return c.GetBlock(x, y, z) == BlockTypeAir
}

// IsEmpty reports whether the chunk contains no blocks at all.
func (c *Chunk) IsEmpty() bool {
	for _, sec := range c.sections {
		if sec != nil && sec.nonAir > 0 {
			return false
		}
	}
	return true
}

// IsDirty reports whether the chunk changed since the last mesh build.
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// SetClean marks the chunk as consumed by a mesh build.
func (c *Chunk) SetClean() {
	c.dirty = false
}
