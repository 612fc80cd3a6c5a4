/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package daq_test

import (
	"strings"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/daq"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stats", func() {
	It("reports not-started until Start is called", func() {
		var s daq.Stats
		lines := s.Lines()
		Expect(strings.Join(lines, "\n")).To(ContainSubstring("start time=not-started"))
		Expect(strings.Join(lines, "\n")).To(ContainSubstring("raw data save=off"))
	})

	It("computes cps from bytes-per-unit over elapsed seconds", func() {
		s := daq.Stats{DataUnit: 8}
		t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s.Start(t0)
		s.AddBytes(80, t0.Add(2*time.Second))

		Expect(s.CPS()).To(BeNumerically("~", 5, 0.001))
		Expect(s.Duration()).To(Equal(2 * time.Second))
	})

	It("freezes duration at Stop", func() {
		s := daq.Stats{DataUnit: 8}
		t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s.Start(t0)
		s.AddBytes(8, t0.Add(time.Second))
		s.Stop(t0.Add(3 * time.Second))
		s.Touch(t0.Add(10 * time.Second))

		Expect(s.Duration()).To(Equal(3 * time.Second))
	})

	It("reports queue depth when spooling is enabled", func() {
		s := daq.Stats{DataUnit: 8, SpoolOn: true, QueueSize: 7}
		Expect(strings.Join(s.Lines(), "\n")).To(ContainSubstring("raw data queue=7"))
	})
})
