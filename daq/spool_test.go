/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package daq_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/daq"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SpoolWorker", func() {
	It("drains enqueued records into a single run/sequence file", func() {
		dir, err := os.MkdirTemp("", "daqspool")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		w := daq.NewSpoolWorker(dir, 3, nil)
		w.Start()

		w.Enqueue([]byte("abc"))
		w.Enqueue([]byte("def"))

		w.Stop(2 * time.Second)

		data, err := os.ReadFile(filepath.Join(dir, "raw000003_000"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("abcdef"))
	})

	It("reports queue depth while records are pending", func() {
		dir, err := os.MkdirTemp("", "daqspool")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		w := daq.NewSpoolWorker(dir, 0, nil)
		w.Enqueue([]byte("x"))
		Expect(w.QueueDepth()).To(Equal(1))

		w.Start()
		Eventually(w.QueueDepth, time.Second).Should(Equal(0))
		w.Stop(2 * time.Second)
	})
})
