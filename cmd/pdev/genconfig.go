/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package main

import (
	"sync"

	"github.com/BeeBeansTechnologies/sitcpy/datagen"
)

// genSettings holds the data-unit burst configuration shared between
// the command handler (which can change it at runtime via
// "dataunitcount") and the datagen.Server's per-connection factory
// (which reads it when building each new session's generator).
type genSettings struct {
	mu        sync.Mutex
	dataUnit  int
	unitCount int
}

func newGenSettings(dataUnit, unitCount int) *genSettings {
	return &genSettings{dataUnit: dataUnit, unitCount: unitCount}
}

func (g *genSettings) UnitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unitCount
}

func (g *genSettings) SetUnitCount(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unitCount = n
}

// NewGenerator builds a fresh CounterGenerator for one connection,
// using the currently configured burst size.
func (g *genSettings) NewGenerator() datagen.Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	return datagen.NewCounterGenerator(g.dataUnit, g.unitCount)
}
