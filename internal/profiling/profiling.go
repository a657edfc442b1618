package profiling

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Lightweight CPU timer for per-frame insight into build/upload cost.

var (
	mu     sync.Mutex
	totals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("meshing.BuildChunk")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		totals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears the current totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	for k := range totals {
		delete(totals, k)
	}
	mu.Unlock()
}

// Snapshot returns a sorted "name=duration" summary of the current frame.
func Snapshot() string {
	mu.Lock()
	defer mu.Unlock()

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return totals[names[i]] > totals[names[j]]
	})

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(totals[name].Round(time.Microsecond).String())
	}
	return b.String()
}
