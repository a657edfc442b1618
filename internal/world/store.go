package world

import (
	"sync"
)

// Accessor is the read-only voxel view the meshing engine consumes. Get must
// answer any world coordinate and return air for unloaded or out-of-bounds
// space, never an error. Implementations must be safe for concurrent reads.
type Accessor interface {
	Get(x, y, z int) BlockType
	IsAir(x, y, z int) bool
}

// ChunkListener receives chunk lifecycle events. Callbacks run on the
// goroutine performing the store mutation and must not block.
type ChunkListener interface {
	OnChunkLoaded(ChunkCoord)
	OnChunkUnloaded(ChunkCoord)
	OnChunkDirtied(ChunkCoord)
}

// ChunkStore manages the storage and retrieval of chunks. It implements
// Accessor over world coordinates.
type ChunkStore struct {
	chunks map[ChunkCoord]*Chunk
	mu     sync.RWMutex

	listeners   []ChunkListener
	listenersMu sync.RWMutex
}

// NewChunkStore creates an empty chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[ChunkCoord]*Chunk)}
}

// AddListener registers a lifecycle listener.
func (cs *ChunkStore) AddListener(l ChunkListener) {
	cs.listenersMu.Lock()
	cs.listeners = append(cs.listeners, l)
	cs.listenersMu.Unlock()
}

func (cs *ChunkStore) notify(fn func(ChunkListener)) {
	cs.listenersMu.RLock()
	ls := cs.listeners
	cs.listenersMu.RUnlock()
	for _, l := range ls {
		fn(l)
	}
}

// validChunkY reports whether a chunk coordinate lies inside the vertical
// world bounds. The world is exactly one chunk tall.
func validChunkY(chunkY int) bool {
	return chunkY*ChunkSizeY >= MinY && chunkY*ChunkSizeY < MaxY
}

// GetChunk returns the chunk at the given chunk coordinates. With create
// set, a missing chunk is created empty (and reported as loaded); creation
// outside the vertical world bounds returns nil.
func (cs *ChunkStore) GetChunk(chunkX, chunkY, chunkZ int, create bool) *Chunk {
	coord := ChunkCoord{X: chunkX, Y: chunkY, Z: chunkZ}
	cs.mu.RLock()
	chunk, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	if exists || !create {
		return chunk
	}
	if !validChunkY(chunkY) {
		return nil
	}

	cs.mu.Lock()
	// Another goroutine may have created it while we waited for the lock.
	if existing, ok := cs.chunks[coord]; ok {
		cs.mu.Unlock()
		return existing
	}
	chunk = NewChunk(chunkX, chunkY, chunkZ)
	cs.chunks[coord] = chunk
	cs.mu.Unlock()

	cs.notify(func(l ChunkListener) { l.OnChunkLoaded(coord) })
	cs.dirtyAdjacent(coord)
	return chunk
}

// AddChunk installs a pre-populated chunk and reports it as loaded. An
// existing chunk at the same coordinate is kept and returned instead; a
// chunk outside the vertical world bounds is rejected with nil.
func (cs *ChunkStore) AddChunk(chunk *Chunk) *Chunk {
	coord := chunk.Coord()
	if !validChunkY(coord.Y) {
		return nil
	}
	cs.mu.Lock()
	if existing, ok := cs.chunks[coord]; ok {
		cs.mu.Unlock()
		return existing
	}
	cs.chunks[coord] = chunk
	cs.mu.Unlock()

	cs.notify(func(l ChunkListener) { l.OnChunkLoaded(coord) })
	cs.dirtyAdjacent(coord)
	return chunk
}

// dirtyAdjacent re-dirties loaded chunks bordering a freshly loaded one, so
// boundary faces emitted against then-unloaded space get rebuilt away.
func (cs *ChunkStore) dirtyAdjacent(coord ChunkCoord) {
	for f := Face(0); f < FaceCount; f++ {
		dx, dy, dz := f.Offset()
		nb := cs.GetChunk(coord.X+dx, coord.Y+dy, coord.Z+dz, false)
		if nb == nil || nb.IsDirty() {
			continue
		}
		nb.dirty = true
		nbCoord := nb.Coord()
		cs.notify(func(l ChunkListener) { l.OnChunkDirtied(nbCoord) })
	}
}

// RemoveChunk unloads the chunk at coord and reports it as unloaded.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) {
	cs.mu.Lock()
	_, existed := cs.chunks[coord]
	delete(cs.chunks, coord)
	cs.mu.Unlock()

	if existed {
		cs.notify(func(l ChunkListener) { l.OnChunkUnloaded(coord) })
	}
}

// HasChunk reports whether a chunk is loaded at coord.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, ok := cs.chunks[coord]
	cs.mu.RUnlock()
	return ok
}

// GetChunkFromBlockCoords returns the chunk containing the block at world
// coordinates.
func (cs *ChunkStore) GetChunkFromBlockCoords(x, y, z int, create bool) *Chunk {
	return cs.GetChunk(floorDiv(x, ChunkSizeX), floorDiv(y, ChunkSizeY), floorDiv(z, ChunkSizeZ), create)
}

// Get returns the block at world coordinates; air for unloaded space.
func (cs *ChunkStore) Get(x, y, z int) BlockType {
	chunk := cs.GetChunkFromBlockCoords(x, y, z, false)
	if chunk == nil {
		return BlockTypeAir
	}
	return chunk.GetBlock(mod(x, ChunkSizeX), mod(y, ChunkSizeY), mod(z, ChunkSizeZ))
}

// IsAir reports whether the block at world coordinates is air.
func (cs *ChunkStore) IsAir(x, y, z int) bool {
	return cs.Get(x, y, z) == BlockTypeAir
}

// Set places a block at world coordinates, creating the chunk if needed.
// Placements outside the vertical world bounds are ignored. Edits on a
// chunk border also dirty the touching neighbor chunks so their boundary
// faces get rebuilt.
func (cs *ChunkStore) Set(x, y, z int, bt BlockType) {
	chunk := cs.GetChunkFromBlockCoords(x, y, z, true)
	if chunk == nil {
		return
	}

	localX := mod(x, ChunkSizeX)
	localY := mod(y, ChunkSizeY)
	localZ := mod(z, ChunkSizeZ)

	wasDirty := chunk.IsDirty()
	chunk.SetBlock(localX, localY, localZ, bt)
	if chunk.IsDirty() && !wasDirty {
		coord := chunk.Coord()
		cs.notify(func(l ChunkListener) { l.OnChunkDirtied(coord) })
	}

	if localX == 0 {
		cs.dirtyNeighbor(x-1, y, z)
	} else if localX == ChunkSizeX-1 {
		cs.dirtyNeighbor(x+1, y, z)
	}
	if localZ == 0 {
		cs.dirtyNeighbor(x, y, z-1)
	} else if localZ == ChunkSizeZ-1 {
		cs.dirtyNeighbor(x, y, z+1)
	}
	if localY == 0 {
		cs.dirtyNeighbor(x, y-1, z)
	} else if localY == ChunkSizeY-1 {
		cs.dirtyNeighbor(x, y+1, z)
	}
}

func (cs *ChunkStore) dirtyNeighbor(x, y, z int) {
	nb := cs.GetChunkFromBlockCoords(x, y, z, false)
	if nb == nil || nb.IsDirty() {
		return
	}
	nb.dirty = true
	coord := nb.Coord()
	cs.notify(func(l ChunkListener) { l.OnChunkDirtied(coord) })
}

// AllChunks returns a snapshot of the loaded chunks.
func (cs *ChunkStore) AllChunks() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, ch := range cs.chunks {
		out = append(out, ch)
	}
	return out
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// mod returns the non-negative remainder of a/b.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
