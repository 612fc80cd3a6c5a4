/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package daq_test

import (
	"os"
	"path/filepath"

	"github.com/BeeBeansTechnologies/sitcpy/daq"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("run number persistence", func() {
	It("starts at zero when no file exists", func() {
		dir, err := os.MkdirTemp("", "daqrunno")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		n, err := daq.LoadRunNo(filepath.Join(dir, daq.DefaultRunNoFile))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))
	})

	It("round-trips through Save then Load", func() {
		dir, err := os.MkdirTemp("", "daqrunno")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, daq.DefaultRunNoFile)
		Expect(daq.SaveRunNo(path, 42)).To(Succeed())

		n, err := daq.LoadRunNo(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(42))

		Expect(daq.SaveRunNo(path, 43)).To(Succeed())
		n, err = daq.LoadRunNo(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(43))
	})
})
