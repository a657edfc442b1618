// Package atlas defines the texture-resolution contract the meshing engine
// consumes. Atlas image construction itself lives with the renderer.
package atlas

// Region is a UV rectangle inside the atlas texture, normalized to [0,1].
type Region struct {
	U1, V1, U2, V2 float32
}

// Width returns the U extent of the region.
func (r Region) Width() float32 { return r.U2 - r.U1 }

// Height returns the V extent of the region.
func (r Region) Height() float32 { return r.V2 - r.V1 }

// Resolver maps an atlas texture index to its UV region. Implementations
// must return a deterministic fallback region for unknown indices, never an
// error, and must be safe for concurrent use.
type Resolver interface {
	Resolve(index int) Region
}

// Grid resolves indices over a uniform tile grid, tile 0 at the top-left,
// indices increasing left-to-right then top-to-bottom.
type Grid struct {
	tileSize int
	width    int
	height   int
	columns  int
	rows     int
}

// NewGrid creates a grid resolver for an atlas of width x height pixels cut
// into square tiles of tileSize pixels.
func NewGrid(tileSize, width, height int) *Grid {
	if tileSize <= 0 {
		tileSize = 16
	}
	if width < tileSize {
		width = tileSize
	}
	if height < tileSize {
		height = tileSize
	}
	return &Grid{
		tileSize: tileSize,
		width:    width,
		height:   height,
		columns:  width / tileSize,
		rows:     height / tileSize,
	}
}

// Resolve returns the UV region of the indexed tile. Out-of-range indices
// fall back to tile 0.
func (g *Grid) Resolve(index int) Region {
	if index < 0 || index >= g.columns*g.rows {
		index = 0
	}
	tileX := index % g.columns
	tileY := index / g.columns
	return Region{
		U1: float32(tileX*g.tileSize) / float32(g.width),
		V1: float32(tileY*g.tileSize) / float32(g.height),
		U2: float32((tileX+1)*g.tileSize) / float32(g.width),
		V2: float32((tileY+1)*g.tileSize) / float32(g.height),
	}
}

// TexelSize returns the UV extent of one texel, the unit for quantization
// error bounds.
func (g *Grid) TexelSize() float32 {
	return 1.0 / float32(g.width)
}

// Full resolves every index to the whole [0,1] texture. It models a texture
// array renderer where each block face owns a full layer.
type Full struct{}

func (Full) Resolve(int) Region { return Region{U1: 0, V1: 0, U2: 1, V2: 1} }
