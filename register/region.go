/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package register implements the virtual register bank: sparse,
// mergeable byte regions with per-byte read/write hooks, grounded on
// the original sitcpy rbcp_server.py VirtualRegister/RbcpServer classes.
package register

// ReadHook is invoked with the absolute byte address being read,
// before the byte is returned to the caller.
type ReadHook func(address uint32)

// WriteHook is invoked with the absolute byte address and the new
// value being written, before the write is committed.
type WriteHook func(address uint32, value byte)

// Region is a contiguous span of addressable memory with optional
// per-byte hooks.
type Region struct {
	start      uint32
	data       []byte
	readHooks  map[uint32]ReadHook
	writeHooks map[uint32]WriteHook
}

// NewRegion allocates a zero-filled region of size bytes starting at start.
func NewRegion(start uint32, size int) *Region {
	return &Region{
		start:      start,
		data:       make([]byte, size),
		readHooks:  make(map[uint32]ReadHook),
		writeHooks: make(map[uint32]WriteHook),
	}
}

// CreateFromInitialData builds a region starting at start whose
// contents are a copy of data.
func CreateFromInitialData(start uint32, data []byte) *Region {
	r := &Region{
		start:      start,
		data:       make([]byte, len(data)),
		readHooks:  make(map[uint32]ReadHook),
		writeHooks: make(map[uint32]WriteHook),
	}
	copy(r.data, data)
	return r
}

// Start returns the region's first address.
func (r *Region) Start() uint32 { return r.start }

// End returns the address one past the region's last byte. For a
// region that reaches the top of the 32-bit address space this wraps
// to 0; range checks inside this package use end64 instead.
func (r *Region) End() uint32 { return r.start + uint32(len(r.data)) }

// end64 is End computed without 32-bit wraparound.
func (r *Region) end64() uint64 { return uint64(r.start) + uint64(len(r.data)) }

// Len returns the region's size in bytes.
func (r *Region) Len() int { return len(r.data) }

// Contains reports whether [address, address+length) lies entirely
// within this region.
func (r *Region) Contains(address uint32, length int) bool {
	if length < 0 {
		return false
	}
	end := uint64(address) + uint64(length)
	return address >= r.start && end <= r.end64()
}

// SetReadHook installs (or removes, with nil) the read hook for a byte.
func (r *Region) SetReadHook(address uint32, hook ReadHook) {
	if hook == nil {
		delete(r.readHooks, address)
		return
	}
	r.readHooks[address] = hook
}

// SetWriteHook installs (or removes, with nil) the write hook for a byte.
func (r *Region) SetWriteHook(address uint32, hook WriteHook) {
	if hook == nil {
		delete(r.writeHooks, address)
		return
	}
	r.writeHooks[address] = hook
}

// Read returns length bytes starting at address, firing any read
// hooks in ascending address order before returning. Caller must have
// verified Contains(address, length).
func (r *Region) Read(address uint32, length int) []byte {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		a := address + uint32(i)
		if hook, ok := r.readHooks[a]; ok {
			hook(a)
		}
		out[i] = r.data[a-r.start]
	}
	return out
}

// Write stores data starting at address, firing any write hooks
// before committing each byte. Caller must have verified
// Contains(address, len(data)).
func (r *Region) Write(address uint32, data []byte) {
	for i, b := range data {
		a := address + uint32(i)
		if hook, ok := r.writeHooks[a]; ok {
			hook(a, b)
		}
		r.data[a-r.start] = b
	}
}

// isIntersect reports whether r and other overlap.
func (r *Region) isIntersect(other *Region) bool {
	return uint64(r.start) < other.end64() && uint64(other.start) < r.end64()
}

// isNeighbor reports whether r and other are byte-adjacent (but not
// overlapping).
func (r *Region) isNeighbor(other *Region) bool {
	return r.end64() == uint64(other.start) || other.end64() == uint64(r.start)
}

// pasteRaw copies data into the region at address without invoking
// any write hooks, used internally by merge to build the union.
func (r *Region) pasteRaw(address uint32, data []byte) {
	copy(r.data[address-r.start:], data)
}

// mergeable reports whether r and other should be collapsed into one
// region by merge_all: overlapping or byte-adjacent.
func (r *Region) mergeable(other *Region) bool {
	return r.isIntersect(other) || r.isNeighbor(other)
}

// merge combines r and other into a single region spanning their
// union, with other's bytes winning on overlap. Hooks from both
// regions are carried over, keyed by absolute address; other's hooks
// win on a colliding address.
func (r *Region) merge(other *Region) *Region {
	start := r.start
	if other.start < start {
		start = other.start
	}
	end := r.end64()
	if other.end64() > end {
		end = other.end64()
	}

	out := NewRegion(start, int(end-uint64(start)))
	out.pasteRaw(r.start, r.data)
	out.pasteRaw(other.start, other.data)

	for addr, hook := range r.readHooks {
		out.readHooks[addr] = hook
	}
	for addr, hook := range r.writeHooks {
		out.writeHooks[addr] = hook
	}
	for addr, hook := range other.readHooks {
		out.readHooks[addr] = hook
	}
	for addr, hook := range other.writeHooks {
		out.writeHooks[addr] = hook
	}
	return out
}
