/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package session_test

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/session"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CommandHandler over TCP", func() {
	var (
		srv  *session.Server
		addr string
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		srv = session.NewServer(func() session.Handler {
			h := session.NewCommandHandler("$ ", " ")
			h.SetServerInfo(srv)
			h.SetStatProvider(func() []string {
				return []string{"events=42", "bytes=1024"}
			})
			return h
		}, nil)

		var err error
		addr, err = srv.Start(ctx, "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(stopCtx)
	})

	It("drains the initial prompt on connect", func() {
		client, err := session.DialCommandClient(addr, "$ ")
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()
	})

	It("reports NG: for an unknown command", func() {
		client, err := session.DialCommandClient(addr, "$ ")
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		reply, err := client.SendCommand("bogus", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(ContainSubstring("NG:Unknown command [bogus]"))
	})

	It("answers help for named commands with their usage text", func() {
		client, err := session.DialCommandClient(addr, "$ ")
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		reply, err := client.SendCommand("help close exit", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(reply, "close:")).To(Equal(1))
		Expect(strings.Count(reply, "exit:")).To(Equal(1))
	})

	It("returns stat as json equal to the dict form of the plain lines", func() {
		client, err := session.DialCommandClient(addr, "$ ")
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		plain, err := client.SendCommand("stat", false)
		Expect(err).NotTo(HaveOccurred())

		jsonReply, err := client.SendCommand("stat j", false)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]string
		Expect(json.Unmarshal([]byte(strings.TrimSpace(jsonReply)), &got)).To(Succeed())

		want := map[string]string{}
		for _, line := range strings.Fields(plain) {
			kv := strings.SplitN(line, "=", 2)
			if len(kv) == 2 {
				want[kv[0]] = kv[1]
			}
		}
		Expect(got).To(Equal(want))
	})

	It("ends the session on close without stopping the server", func() {
		client, err := session.DialCommandClient(addr, "$ ")
		Expect(err).NotTo(HaveOccurred())

		_, err = client.SendCommand("close", true)
		Expect(err).NotTo(HaveOccurred())

		other, err := session.DialCommandClient(addr, "$ ")
		Expect(err).NotTo(HaveOccurred())
		defer other.Close()
	})

	It("supports a custom command registered outside the builtins", func() {
		srv2 := session.NewServer(func() session.Handler {
			h := session.NewCommandHandler("$ ", " ")
			h.Register("echo", "echo <text>: echoes text back.", func(s *session.Session, args []string) bool {
				h2 := &session.TextHandler{}
				h2.ReplyText(s, strings.Join(args[1:], " "), true)
				return true
			})
			return h
		}, nil)
		a2, err := srv2.Start(context.Background(), "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv2.Stop(stopCtx)
		}()

		client, err := session.DialCommandClient(a2, "$ ")
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		reply, err := client.SendCommand("echo hello world", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.TrimSpace(reply)).To(Equal("hello world"))
	})
})
