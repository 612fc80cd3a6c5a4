/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package register

import "sync"

// Bank is an ordered collection of regions forming the addressable
// register space of one device. Address resolution scans regions in
// insertion order; the first region that strictly contains the whole
// requested range services it.
type Bank struct {
	mu      sync.Mutex
	regions []*Region
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{}
}

// AddRegion appends region to the bank's scan order.
func (b *Bank) AddRegion(r *Region) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regions = append(b.regions, r)
}

// Regions returns a snapshot of the bank's current regions, in scan order.
func (b *Bank) Regions() []*Region {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Region, len(b.regions))
	copy(out, b.regions)
	return out
}

// Read returns length bytes from address, firing any per-byte read
// hooks along the way. Fails with ErrOutOfRange when no single
// region fully contains the requested span.
func (b *Bank) Read(address uint32, length int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.regions {
		if r.Contains(address, length) {
			return r.Read(address, length), nil
		}
	}
	return nil, &ErrOutOfRange{Address: address, Length: length}
}

// Write stores data at address, firing any per-byte write hooks
// along the way. Fails with ErrOutOfRange when no single region
// fully contains the requested span.
func (b *Bank) Write(address uint32, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.regions {
		if r.Contains(address, len(data)) {
			r.Write(address, data)
			return nil
		}
	}
	return &ErrOutOfRange{Address: address, Length: len(data)}
}

// MergeAll repeatedly collapses overlapping or byte-adjacent regions
// until no two remain mergeable. The region count strictly decreases
// on every merge, so the process terminates. Later regions win on
// byte overlap, matching insertion order semantics.
func (b *Bank) MergeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		merged := false
		for i := 0; i < len(b.regions); i++ {
			for j := i + 1; j < len(b.regions); j++ {
				if b.regions[i].mergeable(b.regions[j]) {
					combined := b.regions[i].merge(b.regions[j])
					b.regions = append(b.regions[:i], b.regions[i+1:]...)
					// j shifted left by one after removing i.
					j--
					b.regions = append(b.regions[:j], b.regions[j+1:]...)
					b.regions = append(b.regions, combined)
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
		if !merged {
			return
		}
	}
}

// Dump returns a snapshot of every region as (start, bytes) pairs, in
// scan order, for diagnostics.
func (b *Bank) Dump() []RegionSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RegionSnapshot, 0, len(b.regions))
	for _, r := range b.regions {
		data := make([]byte, len(r.data))
		copy(data, r.data)
		out = append(out, RegionSnapshot{Start: r.start, Data: data})
	}
	return out
}

// RegionSnapshot is a read-only copy of one region's extent and contents.
type RegionSnapshot struct {
	Start uint32
	Data  []byte
}
