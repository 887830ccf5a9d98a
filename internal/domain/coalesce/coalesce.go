// Package coalesce tracks pending embedding rebuild jobs so repeated
// requests for the same target collapse into a single queued job.
package coalesce

import (
	"context"
	"sync"
	"sync/atomic"
)

// Coalescer records pending job keys. A key stays recorded from
// enqueue until the worker finishes the job and releases it.
type Coalescer interface {
	// PendingOrRecord atomically checks if key is pending and records it
	// if not. Returns true if key was already pending, false if it was
	// newly recorded. Thread-safe and atomic.
	PendingOrRecord(ctx context.Context, key string) bool

	// Unrecord releases a key, allowing the target to be enqueued again.
	// Returns true if the key was pending.
	Unrecord(ctx context.Context, key string) bool

	Size() int64
}

// node represents a single entry in the linked list
type node struct {
	key  string
	next *node
}

// reset clears the node state for reuse
func (n *node) reset() {
	n.key = ""
	n.next = nil
}

// inMemoryCoalescer implements Coalescer with an in-memory linked list
// and LIFO eviction.
// For bounded mode (maxSize > 0): linked list with LIFO eviction and sync.Pool for nodes
// For unbounded mode (maxSize <= 0): simple map (no eviction, no size limit)
type inMemoryCoalescer struct {
	mu       sync.RWMutex
	pending  map[string]*node // key -> node pointer for bounded mode, nil for unbounded
	head     *node            // head of linked list (most recently added)
	maxSize  int              // maximum number of keys to keep (0 or negative = UNBOUNDED)
	size     atomic.Int64     // current number of entries (atomic)
	nodePool sync.Pool        // pool for reusing node objects
}

// NewInMemoryCoalescer creates a new in-memory coalescer with configuration options.
func NewInMemoryCoalescer(opts ...Option) Coalescer {
	c := &inMemoryCoalescer{
		maxSize: 10000, // default max size
	}

	for _, opt := range opts {
		opt(c)
	}

	c.pending = make(map[string]*node)

	if c.maxSize > 0 {
		c.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}

	return c
}

// PendingOrRecord atomically checks if key is pending and records it if not.
// Returns true if key was already pending, false if it was newly recorded.
func (c *inMemoryCoalescer) PendingOrRecord(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pending[key]; exists {
		return true // Already pending
	}

	if c.maxSize > 0 {
		// BOUNDED MODE: linked list with LIFO eviction.
		// Evicting a pending key means a duplicate could slip through
		// and rebuild twice; rebuilds are idempotent so that is safe.
		if len(c.pending) >= c.maxSize {
			c.evictLIFO()
		}

		n := c.nodePool.Get().(*node)
		n.key = key
		n.next = c.head

		c.head = n
		c.pending[key] = n
	} else {
		// UNBOUNDED MODE: just the map
		c.pending[key] = nil
	}
	c.size.Add(1)
	return false // Newly recorded
}

// Unrecord releases a key, allowing the target to be enqueued again.
func (c *inMemoryCoalescer) Unrecord(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 {
		// BOUNDED MODE: remove from linked list and map
		node, exists := c.pending[key]
		if !exists {
			return false
		}
		delete(c.pending, key)

		if c.head == node {
			c.head = node.next
		} else {
			current := c.head
			for current != nil && current.next != node {
				current = current.next
			}
			if current != nil {
				current.next = node.next
			}
		}

		node.reset()
		c.nodePool.Put(node)

		c.size.Add(-1)
		return true
	}

	// UNBOUNDED MODE: just remove from map
	if _, exists := c.pending[key]; exists {
		delete(c.pending, key)
		c.size.Add(-1)
		return true
	}
	return false
}

// evictLIFO removes the oldest entry (tail of list) from the map.
// Must be called with c.mu.Lock() held.
func (c *inMemoryCoalescer) evictLIFO() {
	if len(c.pending) == 0 || c.head == nil {
		return
	}

	var prev *node
	current := c.head

	// If there's only one node, remove it
	if current.next == nil {
		delete(c.pending, current.key)
		current.reset()
		c.nodePool.Put(current)
		c.head = nil
		c.size.Add(-1)
		return
	}

	// Find the second-to-last node
	for current.next != nil {
		prev = current
		current = current.next
	}

	// Remove the last node (tail)
	if prev != nil {
		prev.next = nil
		delete(c.pending, current.key)
		current.reset()
		c.nodePool.Put(current)
		c.size.Add(-1)
	}
}

// Size returns the current number of pending keys.
func (c *inMemoryCoalescer) Size() int64 {
	return c.size.Load()
}
