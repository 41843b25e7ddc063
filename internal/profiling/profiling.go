package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler. Sections are timed from any goroutine
// and accumulated until the frame loop calls ResetFrame.

// Section is the accumulated cost of one named section.
type Section struct {
	Name  string
	Total time.Duration
	Calls int
}

var (
	mu       sync.Mutex
	sections = make(map[string]*Section)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("world.rebuildChunk")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		s, ok := sections[name]
		if !ok {
			s = &Section{Name: name}
			sections[name] = s
		}
		s.Total += d
		s.Calls++
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(sections)
	mu.Unlock()
}

// Snapshot returns the sections recorded since the last reset, most
// expensive first.
func Snapshot() []Section {
	mu.Lock()
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, *s)
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n most expensive sections of the current frame.
// Example: "world.FlushChunks:4.2ms(3), world.DrawChunks:2.1ms(1)"
func TopN(n int) string {
	list := Snapshot()
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for _, s := range list[:n] {
		ms := float64(s.Total.Microseconds()) / 1000.0
		parts = append(parts, s.Name+":"+strconv.FormatFloat(ms, 'f', 1, 64)+"ms("+strconv.Itoa(s.Calls)+")")
	}
	return strings.Join(parts, ", ")
}
