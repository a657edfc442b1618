package world

import (
	"github.com/aquilax/go-perlin"
)

// TerrainGenerator fills a chunk with blocks. The meshing engine itself
// never generates terrain; this exists for the viewer and for benchmarks.
type TerrainGenerator interface {
	PopulateChunk(c *Chunk)
}

const (
	seaLevel      = 62
	surfaceBase   = 64
	surfaceAmp    = 24
	noiseScale    = 1.0 / 96.0
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// PerlinGenerator produces rolling height-field terrain from 2D perlin noise.
type PerlinGenerator struct {
	noise *perlin.Perlin
}

// NewPerlinGenerator creates a generator for the given seed.
func NewPerlinGenerator(seed int64) *PerlinGenerator {
	return &PerlinGenerator{
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
	}
}

// HeightAt returns the terrain surface height at a world column.
func (g *PerlinGenerator) HeightAt(x, z int) int {
	n := g.noise.Noise2D(float64(x)*noiseScale, float64(z)*noiseScale)
	h := surfaceBase + int(n*surfaceAmp)
	if h < MinY+1 {
		h = MinY + 1
	}
	if h > MaxY-1 {
		h = MaxY - 1
	}
	return h
}

// PopulateChunk fills the chunk column by column: stone below the surface,
// dirt near it, grass or sand on top, water up to sea level.
func (g *PerlinGenerator) PopulateChunk(c *Chunk) {
	baseX := c.X * ChunkSizeX
	baseZ := c.Z * ChunkSizeZ

	for x := 0; x < ChunkSizeX; x++ {
		for z := 0; z < ChunkSizeZ; z++ {
			h := g.HeightAt(baseX+x, baseZ+z)
			for y := 0; y < h-3; y++ {
				c.SetBlock(x, y, z, BlockTypeStone)
			}
			for y := maxInt(h-3, 0); y < h; y++ {
				c.SetBlock(x, y, z, BlockTypeDirt)
			}
			switch {
			case h <= seaLevel:
				c.SetBlock(x, h, z, BlockTypeSand)
				for y := h + 1; y <= seaLevel; y++ {
					c.SetBlock(x, y, z, BlockTypeWater)
				}
			default:
				c.SetBlock(x, h, z, BlockTypeGrass)
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
