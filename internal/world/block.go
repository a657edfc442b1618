package world

// BlockType identifies a block. Zero is always air: no geometry, fully
// transparent, not solid.
type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeStone
	BlockTypeDirt
	BlockTypeGrass
	BlockTypeSand
	BlockTypeWater
	BlockTypeGlass
	BlockTypeLeaves
)

// Face identifies one of the six faces of a block.
type Face uint8

const (
	FaceUp Face = iota
	FaceDown
	FaceNorth // +Z
	FaceSouth // -Z
	FaceEast  // +X
	FaceWest  // -X

	FaceCount = 6
)

func (f Face) String() string {
	switch f {
	case FaceUp:
		return "up"
	case FaceDown:
		return "down"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	}
	return "invalid"
}

// Offset returns the unit step from a block to its neighbor across f.
func (f Face) Offset() (dx, dy, dz int) {
	switch f {
	case FaceUp:
		return 0, 1, 0
	case FaceDown:
		return 0, -1, 0
	case FaceNorth:
		return 0, 0, 1
	case FaceSouth:
		return 0, 0, -1
	case FaceEast:
		return 1, 0, 0
	case FaceWest:
		return -1, 0, 0
	}
	return 0, 0, 0
}
