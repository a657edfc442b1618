package meshing

import (
	"bytes"
	"encoding/binary"
	"hash/fnv"
	"sync"

	"voxelmesh/internal/world"
)

// Uploader is the GPU hand-off contract the cache drives. Implemented by the
// render backend; Upload and Release are only ever called from the render
// thread the cache is used on. Build workers never see handles.
type Uploader interface {
	Upload(m *MeshData) (uint64, error)
	Release(handle uint64)
}

// CacheEntry is the cached state for one chunk coordinate.
type CacheEntry struct {
	Meshes     []*MeshData
	Handles    []uint64
	Generation uint64

	uploads []meshUpload
}

// meshUpload records how one mesh's handle was obtained, so a release goes
// back the same way. A hash collision produces a privately owned upload that
// bypasses the dedup table entirely.
type meshUpload struct {
	handle uint64
	hash   uint64
	shared bool
}

const cacheShardCount = 32

type cacheShard struct {
	mu      sync.Mutex
	entries map[world.ChunkCoord]*CacheEntry
}

// MeshCache stores the latest built mesh per chunk coordinate. Locking is
// per shard rather than global, so concurrent reads of distant chunks never
// contend. De-duplication of byte-identical geometry is handled with a
// content hash and reference counts, so two coordinates with the same
// geometry share one GPU upload.
type MeshCache struct {
	shards   [cacheShardCount]cacheShard
	uploader Uploader

	dedupMu sync.Mutex
	dedup   map[uint64]*sharedUpload
}

type sharedUpload struct {
	handle uint64
	refs   int
	// kept to rule out hash collisions by byte comparison
	vertices []byte
	indices  []uint32
}

// NewMeshCache creates a cache. uploader may be nil; entries then carry
// zero handles and the cache is purely a CPU-side store.
func NewMeshCache(uploader Uploader) *MeshCache {
	mc := &MeshCache{uploader: uploader}
	for i := range mc.shards {
		mc.shards[i].entries = make(map[world.ChunkCoord]*CacheEntry)
	}
	if uploader != nil {
		mc.dedup = make(map[uint64]*sharedUpload)
	}
	return mc
}

func (mc *MeshCache) shard(coord world.ChunkCoord) *cacheShard {
	h := fnv.New64a()
	var b [24]byte
	binary.LittleEndian.PutUint64(b[0:], uint64(int64(coord.X)))
	binary.LittleEndian.PutUint64(b[8:], uint64(int64(coord.Y)))
	binary.LittleEndian.PutUint64(b[16:], uint64(int64(coord.Z)))
	h.Write(b[:])
	return &mc.shards[h.Sum64()%cacheShardCount]
}

// Put replaces the entry for coord with freshly built meshes. New geometry
// is uploaded before the replaced entry's GPU resources are released, so the
// renderer never sees the chunk disappear between rebuilds. A failed upload
// leaves the previous entry untouched.
func (mc *MeshCache) Put(coord world.ChunkCoord, meshes []*MeshData, generation uint64) error {
	entry := &CacheEntry{
		Meshes:     meshes,
		Generation: generation,
	}
	if mc.uploader != nil {
		entry.Handles = make([]uint64, len(meshes))
		entry.uploads = make([]meshUpload, len(meshes))
		for i, m := range meshes {
			u, err := mc.acquire(m)
			if err != nil {
				for j := 0; j < i; j++ {
					mc.releaseUpload(entry.uploads[j])
				}
				return err
			}
			entry.Handles[i] = u.handle
			entry.uploads[i] = u
		}
	}

	sh := mc.shard(coord)
	sh.mu.Lock()
	old := sh.entries[coord]
	if old != nil && old.Generation > generation {
		// a newer build already landed; drop this one instead
		sh.mu.Unlock()
		for _, u := range entry.uploads {
			mc.releaseUpload(u)
		}
		return nil
	}
	sh.entries[coord] = entry
	sh.mu.Unlock()

	if old != nil {
		mc.releaseEntry(old)
	}
	return nil
}

// Get returns the current entry for coord.
func (mc *MeshCache) Get(coord world.ChunkCoord) (*CacheEntry, bool) {
	sh := mc.shard(coord)
	sh.mu.Lock()
	entry, ok := sh.entries[coord]
	sh.mu.Unlock()
	return entry, ok
}

// Evict removes coord's entry and releases its GPU resources synchronously.
func (mc *MeshCache) Evict(coord world.ChunkCoord) {
	sh := mc.shard(coord)
	sh.mu.Lock()
	entry := sh.entries[coord]
	delete(sh.entries, coord)
	sh.mu.Unlock()

	if entry != nil {
		mc.releaseEntry(entry)
	}
}

// Len returns the number of cached chunk entries.
func (mc *MeshCache) Len() int {
	n := 0
	for i := range mc.shards {
		sh := &mc.shards[i]
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// Range calls fn for every cached entry until fn returns false. The entry
// must not be mutated.
func (mc *MeshCache) Range(fn func(world.ChunkCoord, *CacheEntry) bool) {
	for i := range mc.shards {
		sh := &mc.shards[i]
		sh.mu.Lock()
		for coord, entry := range sh.entries {
			if !fn(coord, entry) {
				sh.mu.Unlock()
				return
			}
		}
		sh.mu.Unlock()
	}
}

func (mc *MeshCache) releaseEntry(entry *CacheEntry) {
	if mc.uploader == nil {
		return
	}
	for _, u := range entry.uploads {
		mc.releaseUpload(u)
	}
}

// acquire returns a GPU handle for the mesh, reusing an existing upload when
// another cached mesh has byte-identical geometry.
func (mc *MeshCache) acquire(m *MeshData) (meshUpload, error) {
	hash := geometryHash(m)

	mc.dedupMu.Lock()
	if su, ok := mc.dedup[hash]; ok && bytes.Equal(su.vertices, m.Vertices) && indicesEqual(su.indices, m.Indices) {
		su.refs++
		mc.dedupMu.Unlock()
		return meshUpload{handle: su.handle, hash: hash, shared: true}, nil
	}
	mc.dedupMu.Unlock()

	h, err := mc.uploader.Upload(m)
	if err != nil {
		return meshUpload{}, err
	}

	mc.dedupMu.Lock()
	if _, ok := mc.dedup[hash]; !ok {
		mc.dedup[hash] = &sharedUpload{
			handle:   h,
			refs:     1,
			vertices: m.Vertices,
			indices:  m.Indices,
		}
		mc.dedupMu.Unlock()
		return meshUpload{handle: h, hash: hash, shared: true}, nil
	}
	// the hash slot is taken by different geometry (or a racing twin won);
	// keep this upload private so releasing it never touches that slot
	mc.dedupMu.Unlock()
	return meshUpload{handle: h, hash: hash, shared: false}, nil
}

func (mc *MeshCache) releaseUpload(u meshUpload) {
	if u.shared {
		mc.releaseShared(u.hash)
		return
	}
	mc.uploader.Release(u.handle)
}

func (mc *MeshCache) releaseShared(hash uint64) {
	mc.dedupMu.Lock()
	su, ok := mc.dedup[hash]
	if ok {
		su.refs--
		if su.refs <= 0 {
			delete(mc.dedup, hash)
		} else {
			su = nil
		}
	}
	mc.dedupMu.Unlock()

	if ok && su != nil {
		mc.uploader.Release(su.handle)
	}
}

func geometryHash(m *MeshData) uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(m.Layout)})
	h.Write(m.Vertices)
	var b [4]byte
	for _, idx := range m.Indices {
		binary.LittleEndian.PutUint32(b[:], idx)
		h.Write(b[:])
	}
	return h.Sum64()
}

func indicesEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
