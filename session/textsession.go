/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package session

import "bytes"

// TextHandler is a Handler that frames incoming bytes on the first
// CR-LF, LF, or CR sequence, remembering which terminator a session
// used so replies can echo the same style back.
type TextHandler struct {
	NopHandler
}

// FindDelimiter scans buf for the first line terminator. It records
// the terminator it found on s.LineSeparator, and returns the offset
// one past the terminator (the message handed to OnData still carries
// it, matching the original framing contract).
func (h *TextHandler) FindDelimiter(s *Session, buf []byte) int {
	pos := bytes.IndexAny(buf, "\r\n")
	if pos < 0 {
		return -1
	}
	term := []byte{buf[pos]}
	if buf[pos] == '\r' && pos+1 < len(buf) && buf[pos+1] == '\n' {
		term = []byte("\r\n")
	}
	s.LineSeparator = term
	return pos + len(term)
}

// ReplyText writes text to the session, appending the session's
// current line separator unless addLineSep is false.
func (h *TextHandler) ReplyText(s *Session, text string, addLineSep bool) {
	if addLineSep {
		text += string(s.LineSeparator)
	}
	s.Write([]byte(text))
}
