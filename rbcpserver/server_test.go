/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package rbcpserver_test

import (
	"context"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/rbcp"
	"github.com/BeeBeansTechnologies/sitcpy/rbcpserver"
	"github.com/BeeBeansTechnologies/sitcpy/register"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server", func() {
	var (
		bank   *register.Bank
		srv    *rbcpserver.Server
		client *rbcp.Client
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		bank = register.NewBank()
		bank.AddRegion(register.NewDefaultReservedRegion())
		srv = rbcpserver.New(bank, nil)

		ctx, cancel = context.WithCancel(context.Background())
		addr, err := srv.Start(ctx, "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		client, err = rbcp.Dial(addr)
		Expect(err).NotTo(HaveOccurred())
		client.SetTimeout(500 * time.Millisecond)
	})

	AfterEach(func() {
		client.Close()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
		defer stopCancel()
		srv.Stop(stopCtx)
		cancel()
	})

	It("services the read-modify-read scenario", func() {
		zeros, err := client.Read(ctx, 0xFFFFFF00, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(zeros).To(Equal(make([]byte, 8)))

		echoed, err := client.Write(ctx, 0xFFFFFF00, []byte{1, 2, 3, 4, 5, 6, 7, 8})
		Expect(err).NotTo(HaveOccurred())
		Expect(echoed).To(Equal([]byte{1, 2, 3, 4, 5, 6, 7, 8}))

		got, err := client.Read(ctx, 0xFFFFFF00, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	})

	It("replies with a bus error outside every region", func() {
		_, err := client.Read(ctx, 0xFE, 4)
		Expect(rbcp.IsBusError(err)).To(BeTrue())
	})

	It("tracks read/write success counters", func() {
		_, _ = client.Read(ctx, 0xFFFFFF00, 4)
		_, _ = client.Write(ctx, 0xFFFFFF00, []byte{1})
		stats := srv.Snapshot()
		Expect(stats.ReadOK).To(BeNumerically(">=", 1))
		Expect(stats.WriteOK).To(BeNumerically(">=", 1))
	})

	It("tracks out-of-range counters on bus errors", func() {
		_, _ = client.Read(ctx, 0xFE, 4)
		stats := srv.Snapshot()
		Expect(stats.ReadOutOfRange).To(BeNumerically(">=", 1))
	})
})
