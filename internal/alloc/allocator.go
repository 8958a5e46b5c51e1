package alloc

import (
	"sync"
)

// Allocator hands out zeroed byte buffers.
type Allocator interface {
	Alloc(n int) []byte
}

// Heap allocates from the Go heap.
type Heap struct{}

// Alloc returns a new zeroed buffer of length n.
func (Heap) Alloc(n int) []byte {
	return make([]byte, n)
}

// Allocation is one recorded request.
type Allocation struct {
	Size int
	Tag  string
}

// Stats summarizes the requests a Counting allocator has seen.
type Stats struct {
	TotalAllocations int
	TotalBytesAlloc  int64
	LargestAlloc     int
}

// Counting records every allocation before delegating to Next.
type Counting struct {
	Next Allocator // Heap when nil

	mu          sync.Mutex
	allocations []Allocation
	stats       Stats
}

// NewCounting creates a counting allocator over the heap.
func NewCounting() *Counting {
	return &Counting{Next: Heap{}}
}

// Alloc records the request and returns a buffer of length n.
func (c *Counting) Alloc(n int) []byte {
	return c.AllocTagged(n, "")
}

// AllocTagged records the request under a tag for debugging.
func (c *Counting) AllocTagged(n int, tag string) []byte {
	c.mu.Lock()
	c.allocations = append(c.allocations, Allocation{Size: n, Tag: tag})
	c.stats.TotalAllocations++
	c.stats.TotalBytesAlloc += int64(n)
	if n > c.stats.LargestAlloc {
		c.stats.LargestAlloc = n
	}
	c.mu.Unlock()

	next := c.Next
	if next == nil {
		next = Heap{}
	}
	return next.Alloc(n)
}

// Allocations returns a copy of the recorded requests.
func (c *Counting) Allocations() []Allocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]Allocation, len(c.allocations))
	copy(result, c.allocations)
	return result
}

// Stats returns the allocation statistics.
func (c *Counting) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Reset clears the recorded requests.
func (c *Counting) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allocations = nil
	c.stats = Stats{}
}

// Tagged allocates through a, tagging the request when a records tags.
func Tagged(a Allocator, n int, tag string) []byte {
	if c, ok := a.(*Counting); ok {
		return c.AllocTagged(n, tag)
	}
	return a.Alloc(n)
}
