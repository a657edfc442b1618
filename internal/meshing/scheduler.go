package meshing

import (
	"fmt"
	"sync"
	"sync/atomic"

	"voxelmesh/internal/logger"
	"voxelmesh/internal/profiling"
	"voxelmesh/internal/world"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// BuildResult is one completed (or failed) mesh build, published to the
// render thread. Evict marks a chunk-unload notification instead of a build;
// the render thread responds by evicting the cache entry.
type BuildResult struct {
	Coord      world.ChunkCoord
	Meshes     []*MeshData
	Generation uint64
	Evict      bool
	Err        error
}

type jobState struct {
	gen       uint64
	cancelled atomic.Bool
}

// Scheduler runs mesh builds on a fixed-size worker pool. Per chunk
// coordinate it keeps at most one build in flight: submitting over a running
// build cancels it cooperatively and supersedes its result, so a stale mesh
// is never published over a newer one. A build that fails or panics is
// reported for its own coordinate only and never takes down the pool.
type Scheduler struct {
	ctx  *Context
	pool pond.Pool

	mu       sync.Mutex
	inflight map[world.ChunkCoord]*jobState
	latest   map[world.ChunkCoord]uint64
	gen      uint64

	store   *world.ChunkStore
	results chan BuildResult
	done    chan struct{}
	once    sync.Once

	qMu   sync.Mutex
	queue []BuildResult
	wake  chan struct{}
}

// NewScheduler creates a scheduler over ctx's settings (worker count, queue
// size).
func NewScheduler(ctx *Context) *Scheduler {
	ctx.Settings.Clamp()
	s := &Scheduler{
		ctx:      ctx,
		pool:     pond.NewPool(ctx.Settings.Workers),
		inflight: make(map[world.ChunkCoord]*jobState),
		latest:   make(map[world.ChunkCoord]uint64),
		results:  make(chan BuildResult, ctx.Settings.QueueSize),
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
	go s.pump()
	return s
}

// Submit schedules a mesh build for chunk, reading voxels through acc. The
// chunk is marked clean immediately so redundant submissions stop at the
// dirty check of the caller.
func (s *Scheduler) Submit(acc world.Accessor, c *world.Chunk) {
	if c == nil {
		return
	}
	coord := c.Coord()

	s.mu.Lock()
	if prev := s.inflight[coord]; prev != nil {
		prev.cancelled.Store(true)
	}
	s.gen++
	job := &jobState{gen: s.gen}
	s.inflight[coord] = job
	s.latest[coord] = job.gen
	s.mu.Unlock()

	c.SetClean()
	s.pool.Submit(func() {
		s.run(acc, c, coord, job)
	})
}

// CancelOutstanding cancels any in-flight build for coord. Cancellation is
// advisory; a job past its last checkpoint may still complete, but its
// result is discarded.
func (s *Scheduler) CancelOutstanding(coord world.ChunkCoord) {
	s.mu.Lock()
	if job := s.inflight[coord]; job != nil {
		job.cancelled.Store(true)
		s.gen++
		s.latest[coord] = s.gen
	}
	s.mu.Unlock()
}

func (s *Scheduler) run(acc world.Accessor, c *world.Chunk, coord world.ChunkCoord, job *jobState) {
	defer profiling.Track("meshing.job")()

	var meshes []*MeshData
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("mesh build panic: %v", r)
			}
		}()
		meshes, err = s.ctx.BuildChunk(acc, c, job.cancelled.Load)
	}()

	s.mu.Lock()
	stale := s.latest[coord] != job.gen
	if s.inflight[coord] == job {
		delete(s.inflight, coord)
		delete(s.latest, coord)
	}
	s.mu.Unlock()

	if stale || err == ErrCancelled {
		return
	}
	if err != nil {
		// degrade gracefully: the previous cached mesh, if any, stays valid
		logger.Log.Warn("mesh build failed",
			zap.Int("cx", coord.X), zap.Int("cy", coord.Y), zap.Int("cz", coord.Z),
			zap.Error(err))
	}
	for _, m := range meshes {
		m.Generation = job.gen
	}
	s.publish(BuildResult{Coord: coord, Meshes: meshes, Generation: job.gen, Err: err})
}

// publish hands a result to the pump without blocking. ChunkListener
// callbacks must not block, so a full results channel buffers here instead
// of stalling the caller.
func (s *Scheduler) publish(r BuildResult) {
	s.qMu.Lock()
	s.queue = append(s.queue, r)
	s.qMu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) pump() {
	for {
		s.qMu.Lock()
		var r BuildResult
		ok := len(s.queue) > 0
		if ok {
			r = s.queue[0]
			s.queue = s.queue[1:]
		}
		s.qMu.Unlock()

		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.results <- r:
		case <-s.done:
			return
		}
	}
}

// Results is the completion channel drained by the render thread.
func (s *Scheduler) Results() <-chan BuildResult {
	return s.results
}

// Drain applies all currently pending results without blocking. Call once
// per frame from the render thread.
func (s *Scheduler) Drain(apply func(BuildResult)) {
	for {
		select {
		case r := <-s.results:
			apply(r)
		default:
			return
		}
	}
}

// Attach subscribes the scheduler to the store's chunk lifecycle: loads and
// dirtying submit builds, unloads cancel and request eviction.
func (s *Scheduler) Attach(store *world.ChunkStore) {
	s.store = store
	store.AddListener(s)
}

// OnChunkLoaded implements world.ChunkListener.
func (s *Scheduler) OnChunkLoaded(coord world.ChunkCoord) {
	s.submitFromStore(coord)
}

// OnChunkDirtied implements world.ChunkListener.
func (s *Scheduler) OnChunkDirtied(coord world.ChunkCoord) {
	s.submitFromStore(coord)
}

// OnChunkUnloaded implements world.ChunkListener.
func (s *Scheduler) OnChunkUnloaded(coord world.ChunkCoord) {
	s.CancelOutstanding(coord)
	s.publish(BuildResult{Coord: coord, Evict: true})
}

func (s *Scheduler) submitFromStore(coord world.ChunkCoord) {
	if s.store == nil {
		return
	}
	if c := s.store.GetChunk(coord.X, coord.Y, coord.Z, false); c != nil {
		s.Submit(s.store, c)
	}
}

// Pending returns the number of builds currently in flight.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Shutdown stops accepting work and waits for in-flight builds to finish.
func (s *Scheduler) Shutdown() {
	s.once.Do(func() {
		close(s.done)
		s.pool.StopAndWait()
	})
}
