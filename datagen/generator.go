/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package datagen implements the push-mode data-generator session: a
// variant of the session framework that ignores incoming bytes and
// continuously writes fabricated records while the socket is
// writable, grounded on the original sitcpy rbcp_server.py
// DataGenerator/SessionThreadGen classes and the templates/cui_project
// pseudo device's fixed-pattern generator.
package datagen

import "encoding/binary"

// Generator produces one burst of unitCount data units.
type Generator interface {
	// CreateData returns unitCount * DataUnit() bytes.
	CreateData(unitCount int) []byte

	// DataUnit returns the size in bytes of one record unit.
	DataUnit() int

	// UnitCount returns how many units the next burst should contain;
	// callers may change this between bursts (e.g. via a command).
	UnitCount() int

	// SetUnitCount changes the burst size for subsequent calls.
	SetUnitCount(n int)
}

// CounterGenerator is the default generator: each unit starts with an
// 0xA5 sentinel byte, and bytes 4-7 hold a big-endian counter that
// increments every unit and wraps at 2^32-1; all other bytes of the
// unit are zero. Units shorter than 8 bytes carry only the sentinel.
type CounterGenerator struct {
	dataUnit  int
	unitCount int
	counter   uint32
}

// NewCounterGenerator returns a CounterGenerator with the given unit
// size (default 8 when zero) and initial burst size (default 2 when zero).
func NewCounterGenerator(dataUnit, unitCount int) *CounterGenerator {
	if dataUnit <= 0 {
		dataUnit = 8
	}
	if unitCount <= 0 {
		unitCount = 2
	}
	return &CounterGenerator{dataUnit: dataUnit, unitCount: unitCount}
}

// NewCounterGeneratorAt is NewCounterGenerator with an explicit
// starting counter value, useful for exercising the wraparound edge.
func NewCounterGeneratorAt(dataUnit, unitCount int, counter uint32) *CounterGenerator {
	g := NewCounterGenerator(dataUnit, unitCount)
	g.counter = counter
	return g
}

func (g *CounterGenerator) DataUnit() int    { return g.dataUnit }
func (g *CounterGenerator) UnitCount() int   { return g.unitCount }
func (g *CounterGenerator) SetUnitCount(n int) { g.unitCount = n }

// CreateData fabricates unitCount units of sentinel+counter pattern.
func (g *CounterGenerator) CreateData(unitCount int) []byte {
	data := make([]byte, g.dataUnit*unitCount)
	for i := 0; i < unitCount; i++ {
		base := i * g.dataUnit
		data[base] = 0xA5
		if g.dataUnit >= 8 {
			binary.BigEndian.PutUint32(data[base+4:base+8], g.counter)
		}
		g.counter++
		if g.counter == 0xFFFFFFFF {
			g.counter = 0
		}
	}
	return data
}

// FixedPatternGenerator replays a fixed byte template once per unit,
// matching the pseudo device's deterministic demo pattern. A burst is
// len(pattern)*unitCount bytes: DataUnit() does not size the output,
// so it matches the unit length only for a DataUnit()-byte template.
type FixedPatternGenerator struct {
	dataUnit  int
	unitCount int
	pattern   []byte
}

// NewFixedPatternGenerator returns a generator that repeats pattern
// once per unit. dataUnit defaults to 8, unitCount to 2.
func NewFixedPatternGenerator(pattern []byte, dataUnit, unitCount int) *FixedPatternGenerator {
	if dataUnit <= 0 {
		dataUnit = 8
	}
	if unitCount <= 0 {
		unitCount = 2
	}
	p := make([]byte, len(pattern))
	copy(p, pattern)
	return &FixedPatternGenerator{dataUnit: dataUnit, unitCount: unitCount, pattern: p}
}

func (g *FixedPatternGenerator) DataUnit() int    { return g.dataUnit }
func (g *FixedPatternGenerator) UnitCount() int   { return g.unitCount }
func (g *FixedPatternGenerator) SetUnitCount(n int) { g.unitCount = n }

func (g *FixedPatternGenerator) CreateData(unitCount int) []byte {
	out := make([]byte, 0, len(g.pattern)*unitCount)
	for i := 0; i < unitCount; i++ {
		out = append(out, g.pattern...)
	}
	return out
}

// DefaultFixedPattern is the demo byte sequence used by the original
// pseudo device's PseudoDataGenerator.
var DefaultFixedPattern = []byte{0xF0, 0x10, 0x20, 0x00, 0x01, 0x02, 0x03, 0x04}
