/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package datagen_test

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/datagen"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server", func() {
	It("streams 8-byte-aligned bursts to a connected client", func() {
		srv := datagen.NewServer(func() datagen.Generator {
			return datagen.NewCounterGenerator(8, 4)
		}, nil)

		ctx := context.Background()
		addr, err := srv.Start(ctx, "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Stop(stopCtx)
		}()

		conn, err := net.Dial("tcp", addr)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		buf := make([]byte, 1024)
		total := 0
		deadline := time.Now().Add(2 * time.Second)
		for total < 256 && time.Now().Before(deadline) {
			conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			n, err := conn.Read(buf)
			if err != nil && err != io.EOF {
				break
			}
			total += n
		}
		Expect(total % 8).To(Equal(0))
		Expect(total).To(BeNumerically(">", 0))
	})
})
