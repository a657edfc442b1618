package meshing

import (
	"math"

	"voxelmesh/internal/atlas"
	"voxelmesh/internal/config"
	"voxelmesh/internal/logger"
	"voxelmesh/internal/profiling"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"

	"go.uber.org/zap"
)

// Context owns everything a mesh build needs: the block catalog, the texture
// resolver, the mesh cache and the settings. It is passed explicitly; the
// package keeps no process-wide state.
type Context struct {
	Catalog  *registry.Catalog
	Textures atlas.Resolver
	Cache    *MeshCache
	Settings config.Settings
}

// NewContext wires a meshing context. uploader may be nil for headless use
// (tests, tooling); the cache then tracks meshes without GPU handles.
func NewContext(cat *registry.Catalog, tex atlas.Resolver, uploader Uploader, settings config.Settings) *Context {
	settings.Clamp()
	return &Context{
		Catalog:  cat,
		Textures: tex,
		Cache:    NewMeshCache(uploader),
		Settings: settings,
	}
}

func (ctx *Context) layout() VertexLayout {
	if ctx.Settings.CompactVertices {
		return LayoutCompact
	}
	return LayoutFull
}

// BuildChunk meshes one chunk into render-ready buffers. cancel is advisory
// and polled between direction passes; a cancelled build returns
// ErrCancelled. An empty chunk returns (nil, nil); zero meshes is not a
// failure. On compact-layout overflow the whole chunk is re-encoded with the
// full layout.
func (ctx *Context) BuildChunk(acc world.Accessor, c *world.Chunk, cancel func() bool) ([]*MeshData, error) {
	defer profiling.Track("meshing.BuildChunk")()
	if c == nil {
		return nil, nil
	}

	mesher := NewMesher(acc, ctx.Catalog, ctx.Textures)

	var perFace [world.FaceCount][]Quad
	total := 0
	for _, face := range Directions() {
		if cancel != nil && cancel() {
			return nil, ErrCancelled
		}
		quads := mesher.MeshDirection(c, face)
		quads = append(quads, mesher.MeshFluidDirection(c, face)...)
		perFace[face] = quads
		total += len(quads)
	}
	if total == 0 {
		return nil, nil
	}

	layout := ctx.layout()
	if layout == LayoutCompact && !compactFits() {
		logger.Log.Warn("chunk exceeds compact position range, using full layout",
			zap.Int("x", c.X), zap.Int("y", c.Y), zap.Int("z", c.Z))
		layout = LayoutFull
	}

	meshes, err := ctx.assemble(c.Coord(), &perFace, layout)
	if err == ErrOverflow && layout == LayoutCompact {
		logger.Log.Warn("compact encoding overflow, retrying with full layout",
			zap.Int("x", c.X), zap.Int("y", c.Y), zap.Int("z", c.Z))
		meshes, err = ctx.assemble(c.Coord(), &perFace, LayoutFull)
	}
	return meshes, err
}

func (ctx *Context) assemble(coord world.ChunkCoord, perFace *[world.FaceCount][]Quad, layout VertexLayout) ([]*MeshData, error) {
	if ctx.Settings.Partition {
		var meshes []*MeshData
		for _, face := range Directions() {
			segs, err := ctx.buildSegments(coord, face, perFace[face], layout)
			if err != nil {
				return nil, err
			}
			// empty directions produce no MeshData at all
			meshes = append(meshes, segs...)
		}
		return meshes, nil
	}

	var all []Quad
	for _, face := range Directions() {
		all = append(all, perFace[face]...)
	}
	return ctx.buildSegments(coord, FaceAll, all, layout)
}

// compactFits reports whether chunk-local coordinates are representable as
// int16. Always true for the standard chunk dimensions; oversized chunk
// configurations fall back to the full layout.
func compactFits() bool {
	return world.ChunkSizeX <= math.MaxInt16 &&
		world.ChunkSizeY <= math.MaxInt16 &&
		world.ChunkSizeZ <= math.MaxInt16
}
