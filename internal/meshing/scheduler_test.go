package meshing

import (
	"testing"
	"time"

	"voxelmesh/internal/config"
	"voxelmesh/internal/world"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	ctx := testContext(func(s *config.Settings) { s.Workers = 2 })
	s := NewScheduler(ctx)
	t.Cleanup(s.Shutdown)
	return s
}

// waitResult blocks until a result matching ok arrives, skipping others.
func waitResult(t *testing.T, s *Scheduler, ok func(BuildResult) bool) BuildResult {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-s.Results():
			if ok(r) {
				return r
			}
		case <-deadline:
			t.Fatal("timed out waiting for build result")
		}
	}
}

// gateAccessor blocks the first voxel read until the gate opens, pinning a
// build mid-flight.
type gateAccessor struct {
	inner world.Accessor
	gate  chan struct{}
}

func (g *gateAccessor) Get(x, y, z int) world.BlockType {
	<-g.gate
	return g.inner.Get(x, y, z)
}

func (g *gateAccessor) IsAir(x, y, z int) bool {
	return g.Get(x, y, z) == world.BlockTypeAir
}

func TestSchedulerPublishesBuild(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	store.Set(1, 1, 1, world.BlockTypeStone)
	ch := store.GetChunk(0, 0, 0, false)

	s.Submit(store, ch)
	if ch.IsDirty() {
		t.Fatal("submit must mark the chunk clean")
	}

	r := waitResult(t, s, func(r BuildResult) bool { return !r.Evict })
	if r.Err != nil {
		t.Fatalf("build error: %v", r.Err)
	}
	if r.Coord != ch.Coord() {
		t.Fatalf("result coord %v, want %v", r.Coord, ch.Coord())
	}
	if len(r.Meshes) == 0 {
		t.Fatal("build produced no meshes")
	}
	if r.Generation == 0 {
		t.Fatal("result carries no generation")
	}
	for _, m := range r.Meshes {
		if m.Generation != r.Generation {
			t.Fatalf("mesh generation %d, result %d", m.Generation, r.Generation)
		}
	}
}

func TestSchedulerCancelDiscardsResult(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	store.Set(1, 1, 1, world.BlockTypeStone)
	ch := store.GetChunk(0, 0, 0, false)

	gate := &gateAccessor{inner: store, gate: make(chan struct{})}
	s.Submit(gate, ch)
	s.CancelOutstanding(ch.Coord())
	close(gate.gate)

	select {
	case r := <-s.Results():
		t.Fatalf("cancelled build published a result: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	// the scheduler stays usable for the same coordinate
	s.Submit(store, ch)
	r := waitResult(t, s, func(r BuildResult) bool { return !r.Evict })
	if r.Err != nil || len(r.Meshes) == 0 {
		t.Fatalf("resubmit after cancel: err=%v meshes=%d", r.Err, len(r.Meshes))
	}
}

func TestSchedulerResubmitSupersedes(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	store.Set(1, 1, 1, world.BlockTypeStone)
	ch := store.GetChunk(0, 0, 0, false)

	gate := &gateAccessor{inner: store, gate: make(chan struct{})}
	s.Submit(gate, ch)
	s.Submit(gate, ch)
	close(gate.gate)

	// exactly one result lands and it belongs to the second submission
	r := waitResult(t, s, func(r BuildResult) bool { return !r.Evict })
	if r.Generation != 2 {
		t.Fatalf("result generation %d, want 2", r.Generation)
	}
	select {
	case extra := <-s.Results():
		t.Fatalf("superseded build also published: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

// panicAccessor fails every voxel read; the build must surface the panic as
// an error for its own chunk without taking down the pool.
type panicAccessor struct{}

func (panicAccessor) Get(x, y, z int) world.BlockType { panic("accessor exploded") }
func (panicAccessor) IsAir(x, y, z int) bool          { panic("accessor exploded") }

func TestSchedulerIsolatesFailedBuild(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	store.Set(1, 1, 1, world.BlockTypeStone)
	bad := store.GetChunk(0, 0, 0, false)

	s.Submit(panicAccessor{}, bad)
	r := waitResult(t, s, func(r BuildResult) bool { return !r.Evict })
	if r.Err == nil {
		t.Fatal("panicking build must report an error")
	}
	if len(r.Meshes) != 0 {
		t.Fatal("failed build must not carry meshes")
	}

	// a healthy chunk still builds afterwards
	store.Set(world.ChunkSizeX+1, 1, 1, world.BlockTypeDirt)
	good := store.GetChunk(1, 0, 0, false)
	s.Submit(store, good)
	r = waitResult(t, s, func(r BuildResult) bool { return !r.Evict && r.Coord == good.Coord() })
	if r.Err != nil || len(r.Meshes) == 0 {
		t.Fatalf("healthy build after failure: err=%v meshes=%d", r.Err, len(r.Meshes))
	}
}

func TestSchedulerStoreLifecycle(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	s.Attach(store)

	// a block edit loads the chunk and triggers a build through the listener
	store.Set(1, 1, 1, world.BlockTypeStone)
	r := waitResult(t, s, func(r BuildResult) bool { return !r.Evict && len(r.Meshes) > 0 })
	if r.Coord != (world.ChunkCoord{}) {
		t.Fatalf("result coord %v, want origin chunk", r.Coord)
	}

	// unloading requests an eviction on the results channel
	store.RemoveChunk(world.ChunkCoord{})
	r = waitResult(t, s, func(r BuildResult) bool { return r.Evict })
	if r.Coord != (world.ChunkCoord{}) {
		t.Fatalf("evict coord %v, want origin chunk", r.Coord)
	}
}

func TestSchedulerRebuildOnDirty(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	s.Attach(store)

	store.Set(1, 1, 1, world.BlockTypeStone)
	waitResult(t, s, func(r BuildResult) bool { return !r.Evict && len(r.Meshes) > 0 })

	// a later edit dirties the clean chunk and schedules a rebuild
	store.Set(2, 1, 1, world.BlockTypeDirt)
	r := waitResult(t, s, func(r BuildResult) bool { return !r.Evict && len(r.Meshes) > 0 })
	total := 0
	for _, m := range r.Meshes {
		total += m.QuadCount
	}
	if total == 0 {
		t.Fatal("rebuild produced no geometry")
	}
}

// waitBookkeepingEmpty polls until the scheduler has dropped all per-chunk
// tracking state.
func waitBookkeepingEmpty(t *testing.T, s *Scheduler) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		s.mu.Lock()
		inflight, latest := len(s.inflight), len(s.latest)
		s.mu.Unlock()
		if inflight == 0 && latest == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("scheduler state not pruned: inflight=%d latest=%d", inflight, latest)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerBookkeepingPruned(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	s.Attach(store)

	const chunks = 8
	for i := 0; i < chunks; i++ {
		store.Set(i*world.ChunkSizeX+1, 1, 1, world.BlockTypeStone)
	}
	for i := 0; i < chunks; i++ {
		waitResult(t, s, func(r BuildResult) bool { return !r.Evict })
	}
	for i := 0; i < chunks; i++ {
		store.RemoveChunk(world.ChunkCoord{X: i})
	}
	for i := 0; i < chunks; i++ {
		waitResult(t, s, func(r BuildResult) bool { return r.Evict })
	}
	waitBookkeepingEmpty(t, s)
}

func TestSchedulerCancelledJobPrunesState(t *testing.T) {
	s := newTestScheduler(t)
	store := world.NewChunkStore()
	store.Set(1, 1, 1, world.BlockTypeStone)
	ch := store.GetChunk(0, 0, 0, false)

	gate := &gateAccessor{inner: store, gate: make(chan struct{})}
	s.Submit(gate, ch)
	s.CancelOutstanding(ch.Coord())
	close(gate.gate)

	// the cancelled job publishes nothing but still cleans up after itself
	waitBookkeepingEmpty(t, s)
}

func TestSchedulerUnloadNeverBlocks(t *testing.T) {
	s := newTestScheduler(t)

	// far more evictions than the results channel holds, with no consumer
	const evicts = 300
	done := make(chan struct{})
	go func() {
		for i := 0; i < evicts; i++ {
			s.OnChunkUnloaded(world.ChunkCoord{X: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("unload notification blocked on a full results channel")
	}

	for i := 0; i < evicts; i++ {
		r := waitResult(t, s, func(r BuildResult) bool { return r.Evict })
		if r.Coord.X != i {
			t.Fatalf("evict %d arrived out of order with coord %v", i, r.Coord)
		}
	}
}

func TestSchedulerShutdownIdempotent(t *testing.T) {
	ctx := testContext(nil)
	s := NewScheduler(ctx)
	s.Shutdown()
	s.Shutdown()

	// publishing after shutdown must not block
	done := make(chan struct{})
	go func() {
		s.OnChunkUnloaded(world.ChunkCoord{X: 9})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish after shutdown blocked")
	}
}
