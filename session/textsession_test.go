/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package session_test

import (
	"net"

	"github.com/BeeBeansTechnologies/sitcpy/session"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TextHandler framing", func() {
	var fakeSession *session.Session

	BeforeEach(func() {
		c1, c2 := net.Pipe()
		DeferCleanup(func() {
			c1.Close()
			c2.Close()
		})
		fakeSession = session.NewSession(c1, &session.TextHandler{}, nil)
		_ = c2
	})

	DescribeTable("detects the first terminator and remembers it",
		func(input string, wantPos int, wantSep string) {
			h := &session.TextHandler{}
			pos := h.FindDelimiter(fakeSession, []byte(input))
			Expect(pos).To(Equal(wantPos))
			Expect(string(fakeSession.LineSeparator)).To(Equal(wantSep))
		},
		Entry("CRLF", "hello\r\nworld", 7, "\r\n"),
		Entry("LF", "hello\nworld", 6, "\n"),
		Entry("CR", "hello\rworld", 6, "\r"),
	)

	It("returns -1 when no terminator is present yet", func() {
		h := &session.TextHandler{}
		pos := h.FindDelimiter(fakeSession, []byte("partial without terminator"))
		Expect(pos).To(Equal(-1))
	})
})
