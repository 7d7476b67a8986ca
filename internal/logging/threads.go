package logging

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// ThreadRegistry hands out small sequential ids to logical threads of
// execution. An id is assigned on first use of a key and kept for the
// lifetime of the registry; ids are never reused.
type ThreadRegistry struct {
	mu   sync.Mutex
	next uint64
	ids  map[uint64]uint64
}

func NewThreadRegistry() *ThreadRegistry {
	return &ThreadRegistry{ids: make(map[uint64]uint64)}
}

// Assign returns the id bound to key, binding the next free id if the key
// has not been seen before.
func (r *ThreadRegistry) Assign(key uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[key]; ok {
		return id
	}
	id := r.next
	r.next++
	r.ids[key] = id
	return id
}

// Current returns the id of the calling goroutine.
func (r *ThreadRegistry) Current() uint64 {
	return r.Assign(goroutineID())
}

// goroutineID reads the runtime id from the first line of the goroutine's
// stack header ("goroutine 42 [running]:").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	end := bytes.IndexByte(line, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(line[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
