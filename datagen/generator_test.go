/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package datagen_test

import (
	"github.com/BeeBeansTechnologies/sitcpy/datagen"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CounterGenerator", func() {
	It("produces a sentinel byte and incrementing counter per unit", func() {
		g := datagen.NewCounterGenerator(8, 3)
		data := g.CreateData(3)
		Expect(data).To(HaveLen(24))

		for i := 0; i < 3; i++ {
			base := i * 8
			Expect(data[base]).To(Equal(byte(0xA5)))
		}
		Expect(data[4:8]).To(Equal([]byte{0, 0, 0, 0}))
		Expect(data[12:16]).To(Equal([]byte{0, 0, 0, 1}))
		Expect(data[20:24]).To(Equal([]byte{0, 0, 0, 2}))
	})

	It("wraps the counter at 2^32-1", func() {
		g := datagen.NewCounterGeneratorAt(8, 1, 0xFFFFFFFE)
		data := g.CreateData(1)
		Expect(data[4:8]).To(Equal([]byte{0xFF, 0xFF, 0xFF, 0xFE}))

		data = g.CreateData(1)
		Expect(data[4:8]).To(Equal([]byte{0, 0, 0, 0}))
	})
})

var _ = Describe("FixedPatternGenerator", func() {
	It("repeats the pattern once per unit", func() {
		g := datagen.NewFixedPatternGenerator([]byte("AB"), 2, 3)
		data := g.CreateData(3)
		Expect(string(data)).To(Equal("ABABAB"))
	})

	It("defaults to the pseudo-device demo pattern", func() {
		g := datagen.NewFixedPatternGenerator(datagen.DefaultFixedPattern, 8, 1)
		Expect(g.CreateData(1)).To(Equal(datagen.DefaultFixedPattern))
	})
})
