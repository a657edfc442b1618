package config

import "runtime"

// Settings holds the meshing engine configuration. A Settings value is
// handed to the MeshingContext explicitly; there is no package-global state.
type Settings struct {
	// Workers is the mesh build pool size. 0 means NumCPU-1.
	Workers int

	// CompactVertices selects the quantized 12-byte vertex layout instead of
	// the 56-byte float layout.
	CompactVertices bool

	// Partition splits each chunk mesh into six per-direction buffers for
	// camera-facing culling.
	Partition bool

	// VertexBudget caps vertices per uploaded mesh segment. Geometry past the
	// budget is split into further segments, never truncated.
	VertexBudget int

	// AtlasSize and AtlasTileSize describe the texture atlas the resolver
	// addresses, in pixels. Used for the quantization texel-error bound.
	AtlasSize     int
	AtlasTileSize int

	// QueueSize is the capacity of the completed-build channel drained by the
	// render thread.
	QueueSize int
}

// Default returns the settings used when the caller does not care.
func Default() Settings {
	return Settings{
		CompactVertices: true,
		Partition:       true,
		VertexBudget:    1 << 16,
		AtlasSize:       1024,
		AtlasTileSize:   16,
		QueueSize:       256,
	}
}

// Clamp normalizes out-of-range values in place.
func (s *Settings) Clamp() {
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU() - 1
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	if s.VertexBudget < 1024 {
		s.VertexBudget = 1024
	}
	if s.AtlasTileSize <= 0 {
		s.AtlasTileSize = 16
	}
	if s.AtlasSize < s.AtlasTileSize {
		s.AtlasSize = s.AtlasTileSize
	}
	if s.QueueSize < 16 {
		s.QueueSize = 16
	}
}
