// meshview streams a small perlin-generated world through the mesh build
// scheduler and draws the result, with per-direction camera-facing culling.
package main

import (
	"math"
	"runtime"

	"voxelmesh/internal/atlas"
	"voxelmesh/internal/config"
	"voxelmesh/internal/gpu"
	"voxelmesh/internal/logger"
	"voxelmesh/internal/meshing"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

const (
	worldRadiusChunks = 4
	worldSeed         = 1337
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := glfw.Init(); err != nil {
		logger.Log.Fatal("could not initialize glfw", zap.Error(err))
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		logger.Log.Fatal("could not create window", zap.Error(err))
	}

	program, err := newProgram(compactVertexShader, compactFragmentShader)
	if err != nil {
		logger.Log.Fatal("could not build shader", zap.Error(err))
	}

	settings := config.Default()
	catalog := registry.DefaultCatalog()
	textures := atlas.NewGrid(settings.AtlasTileSize, settings.AtlasSize, settings.AtlasSize)
	uploader := gpu.NewGLUploader(0)

	ctx := meshing.NewContext(catalog, textures, uploader, settings)
	sched := meshing.NewScheduler(ctx)
	store := world.NewChunkStore()
	sched.Attach(store)

	closer.Bind(func() {
		sched.Shutdown()
	})

	// Populate first, then install: AddChunk fires the loaded event that
	// submits the build.
	gen := world.NewPerlinGenerator(worldSeed)
	for cx := -worldRadiusChunks; cx <= worldRadiusChunks; cx++ {
		for cz := -worldRadiusChunks; cz <= worldRadiusChunks; cz++ {
			c := world.NewChunk(cx, 0, cz)
			gen.PopulateChunk(c)
			store.AddChunk(c)
		}
	}
	logger.Log.Info("world submitted",
		zap.Int("chunks", (2*worldRadiusChunks+1)*(2*worldRadiusChunks+1)),
		zap.Int("pending", sched.Pending()))

	uProj := gl.GetUniformLocation(program, gl.Str("uProj\x00"))
	uView := gl.GetUniformLocation(program, gl.Str("uView\x00"))
	uOrigin := gl.GetUniformLocation(program, gl.Str("uOrigin\x00"))

	center := mgl32.Vec3{0, 72, 0}
	for !window.ShouldClose() {
		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
		}

		applyResults(sched, ctx)

		gl.ClearColor(0.53, 0.71, 0.92, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		t := glfw.GetTime()
		dist := float32(90.0)
		camPos := mgl32.Vec3{
			center.X() + dist*float32(math.Cos(t*0.2)),
			center.Y() + 36,
			center.Z() + dist*float32(math.Sin(t*0.2)),
		}
		view := mgl32.LookAtV(camPos, center, mgl32.Vec3{0, 1, 0})
		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		proj := mgl32.Perspective(mgl32.DegToRad(70), float32(w)/float32(h), 0.1, 1000)

		gl.UseProgram(program)
		gl.UniformMatrix4fv(uProj, 1, false, &proj[0])
		gl.UniformMatrix4fv(uView, 1, false, &view[0])

		ctx.Cache.Range(func(coord world.ChunkCoord, entry *meshing.CacheEntry) bool {
			origin := mgl32.Vec3{
				float32(coord.X * world.ChunkSizeX),
				float32(coord.Y * world.ChunkSizeY),
				float32(coord.Z * world.ChunkSizeZ),
			}
			for i, m := range entry.Meshes {
				if !facesCamera(m, camPos) {
					continue
				}
				gl.Uniform3f(uOrigin, origin.X(), origin.Y(), origin.Z())
				uploader.Draw(entry.Handles[i])
			}
			return true
		})

		window.SwapBuffers()
	}

	closer.Close()
}

// applyResults drains completed builds onto the GPU. Failed builds keep the
// previous cached mesh; emptied or unloaded chunks evict.
func applyResults(sched *meshing.Scheduler, ctx *meshing.Context) {
	sched.Drain(func(r meshing.BuildResult) {
		switch {
		case r.Evict:
			ctx.Cache.Evict(r.Coord)
		case r.Err != nil:
			// stale geometry stays visible until the next successful rebuild
		case len(r.Meshes) == 0:
			ctx.Cache.Evict(r.Coord)
		default:
			if err := ctx.Cache.Put(r.Coord, r.Meshes, r.Generation); err != nil {
				logger.Log.Warn("mesh upload failed",
					zap.Int("cx", r.Coord.X), zap.Int("cz", r.Coord.Z), zap.Error(err))
			}
		}
	})
}

// facesCamera reports whether a per-direction mesh can possibly face the
// camera: a whole buffer is skipped when the camera is on its back side.
func facesCamera(m *meshing.MeshData, cam mgl32.Vec3) bool {
	switch m.Face {
	case world.FaceUp:
		return cam.Y() > m.BoundsMin.Y()
	case world.FaceDown:
		return cam.Y() < m.BoundsMax.Y()
	case world.FaceNorth:
		return cam.Z() > m.BoundsMin.Z()
	case world.FaceSouth:
		return cam.Z() < m.BoundsMax.Z()
	case world.FaceEast:
		return cam.X() > m.BoundsMin.X()
	case world.FaceWest:
		return cam.X() < m.BoundsMax.X()
	}
	return true // combined buffers are never direction-culled
}
