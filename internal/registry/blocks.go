package registry

import (
	"voxelmesh/internal/world"
)

// BlockDefinition holds the mesh-relevant properties of one block type.
// Definitions are immutable after registration.
type BlockDefinition struct {
	ID   world.BlockType
	Name string

	// Texture keys per face group; Top covers up, Bottom covers down, Side
	// covers the four lateral faces.
	TextureTop    string
	TextureSide   string
	TextureBottom string

	IsSolid       bool
	IsTransparent bool

	// IsFluid selects the fluid surface mesher instead of the solid one.
	IsFluid bool
}

// Catalog maps block ids to their definitions and texture keys to atlas
// indices. It is populated once and read-only afterwards, so concurrent
// reads from build workers need no locking.
type Catalog struct {
	byID       map[world.BlockType]*BlockDefinition
	byName     map[string]world.BlockType
	textures   []string
	textureIdx map[string]int
	air        *BlockDefinition
}

// NewCatalog creates a catalog pre-seeded with the air definition.
func NewCatalog() *Catalog {
	c := &Catalog{
		byID:       make(map[world.BlockType]*BlockDefinition),
		byName:     make(map[string]world.BlockType),
		textureIdx: make(map[string]int),
	}
	c.air = &BlockDefinition{
		ID:            world.BlockTypeAir,
		Name:          "air",
		IsSolid:       false,
		IsTransparent: true,
	}
	c.byID[world.BlockTypeAir] = c.air
	c.byName["air"] = world.BlockTypeAir
	return c
}

// Register adds a block definition and assigns atlas indices to its texture
// keys. Registering the same id twice replaces the definition.
func (c *Catalog) Register(def *BlockDefinition) {
	c.byID[def.ID] = def
	c.byName[def.Name] = def.ID
	c.registerTexture(def.TextureTop)
	c.registerTexture(def.TextureSide)
	c.registerTexture(def.TextureBottom)
}

func (c *Catalog) registerTexture(name string) {
	if name == "" {
		return
	}
	if _, ok := c.textureIdx[name]; ok {
		return
	}
	c.textureIdx[name] = len(c.textures)
	c.textures = append(c.textures, name)
}

// Get returns the definition for id. Unknown ids resolve to air.
func (c *Catalog) Get(id world.BlockType) *BlockDefinition {
	if def, ok := c.byID[id]; ok {
		return def
	}
	return c.air
}

// Lookup returns the id registered under name.
func (c *Catalog) Lookup(name string) (world.BlockType, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// FaceTexture resolves the atlas texture index for one face of a block.
// Unknown blocks and unregistered texture keys resolve to index 0.
func (c *Catalog) FaceTexture(id world.BlockType, face world.Face) int {
	def := c.Get(id)
	var key string
	switch face {
	case world.FaceUp:
		key = def.TextureTop
	case world.FaceDown:
		key = def.TextureBottom
	default:
		key = def.TextureSide
	}
	if idx, ok := c.textureIdx[key]; ok {
		return idx
	}
	return 0
}

// TextureCount returns the number of distinct registered texture keys.
func (c *Catalog) TextureCount() int {
	return len(c.textures)
}

// DefaultCatalog registers the built-in block set.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Register(&BlockDefinition{
		ID: world.BlockTypeStone, Name: "stone",
		TextureTop: "stone", TextureSide: "stone", TextureBottom: "stone",
		IsSolid: true,
	})
	c.Register(&BlockDefinition{
		ID: world.BlockTypeDirt, Name: "dirt",
		TextureTop: "dirt", TextureSide: "dirt", TextureBottom: "dirt",
		IsSolid: true,
	})
	c.Register(&BlockDefinition{
		ID: world.BlockTypeGrass, Name: "grass",
		TextureTop: "grass_top", TextureSide: "grass_side", TextureBottom: "dirt",
		IsSolid: true,
	})
	c.Register(&BlockDefinition{
		ID: world.BlockTypeSand, Name: "sand",
		TextureTop: "sand", TextureSide: "sand", TextureBottom: "sand",
		IsSolid: true,
	})
	c.Register(&BlockDefinition{
		ID: world.BlockTypeWater, Name: "water",
		TextureTop: "water", TextureSide: "water", TextureBottom: "water",
		IsSolid: false, IsTransparent: true, IsFluid: true,
	})
	c.Register(&BlockDefinition{
		ID: world.BlockTypeGlass, Name: "glass",
		TextureTop: "glass", TextureSide: "glass", TextureBottom: "glass",
		IsSolid: true, IsTransparent: true,
	})
	c.Register(&BlockDefinition{
		ID: world.BlockTypeLeaves, Name: "leaves",
		TextureTop: "leaves", TextureSide: "leaves", TextureBottom: "leaves",
		IsSolid: true, IsTransparent: true,
	})
	return c
}
