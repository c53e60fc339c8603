package reflection

import "sync"

// Allocator is the only path through which the package creates or releases
// objects. construct returns a pointer to a fresh zero value of the type.
type Allocator interface {
	New(t TypeRef, construct func() any) any
	Free(t TypeRef, object any)
}

// HeapAllocator allocates from the Go heap and leaves release to the GC.
type HeapAllocator struct{}

func (HeapAllocator) New(_ TypeRef, construct func() any) any { return construct() }

func (HeapAllocator) Free(TypeRef, any) {}

// TrackingAllocator counts live and total allocations per type name. It is
// safe for concurrent use.
type TrackingAllocator struct {
	mu    sync.Mutex
	live  map[string]int
	total map[string]int
}

// NewTrackingAllocator creates an empty tracking allocator.
func NewTrackingAllocator() *TrackingAllocator {
	return &TrackingAllocator{
		live:  make(map[string]int),
		total: make(map[string]int),
	}
}

func (a *TrackingAllocator) New(t TypeRef, construct func() any) any {
	a.mu.Lock()
	a.live[t.Name]++
	a.total[t.Name]++
	a.mu.Unlock()
	return construct()
}

func (a *TrackingAllocator) Free(t TypeRef, _ any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.live[t.Name] > 0 {
		a.live[t.Name]--
	}
}

// Live returns the number of unreleased objects of the named type.
func (a *TrackingAllocator) Live(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live[name]
}

// Total returns the number of objects of the named type ever allocated.
func (a *TrackingAllocator) Total(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total[name]
}

// LiveCount returns the number of unreleased objects across all types.
func (a *TrackingAllocator) LiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.live {
		n += c
	}
	return n
}

func allocatorOrDefault(a Allocator) Allocator {
	if a == nil {
		return HeapAllocator{}
	}
	return a
}
