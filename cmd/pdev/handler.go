/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BeeBeansTechnologies/sitcpy/register"
	"github.com/BeeBeansTechnologies/sitcpy/rbcpserver"
	"github.com/BeeBeansTechnologies/sitcpy/session"
)

// rbcpCommandHandler is the pseudo-device command set: register
// read/write/dump and init-file loading against the RBCP server's
// bank, plus control over the data generator's burst size, grounded
// on RbcpCommandHandler in the original pseudo-device sample.
type rbcpCommandHandler struct {
	*session.CommandHandler

	bank *register.Bank
	rbcp *rbcpserver.Server
	gen  *genSettings
}

func newRBCPCommandHandler(prompt string, bank *register.Bank, rbcp *rbcpserver.Server, gen *genSettings) *rbcpCommandHandler {
	h := &rbcpCommandHandler{
		CommandHandler: session.NewCommandHandler(prompt, " "),
		bank:           bank,
		rbcp:           rbcp,
		gen:            gen,
	}
	h.registerCommands()
	h.SetStatProvider(h.stats)
	return h
}

func (h *rbcpCommandHandler) stats() []string {
	snap := h.rbcp.Snapshot()
	return []string{
		fmt.Sprintf("read ok=%d", snap.ReadOK),
		fmt.Sprintf("write ok=%d", snap.WriteOK),
		fmt.Sprintf("read out of range=%d", snap.ReadOutOfRange),
		fmt.Sprintf("write out of range=%d", snap.WriteOutOfRange),
		fmt.Sprintf("unknown command=%d", snap.UnknownCommand),
		fmt.Sprintf("short packets=%d", snap.ShortPackets),
		fmt.Sprintf("bad version=%d", snap.BadVersion),
	}
}

func (h *rbcpCommandHandler) registerCommands() {
	h.Register("read", "read <address in hexadecimal> <length in decimal>: Read RBCP memory.",
		func(s *session.Session, args []string) bool {
			if len(args) != 3 {
				return h.badArgs(s, args)
			}
			address, err := strconv.ParseUint(args[1], 16, 32)
			if err != nil {
				h.ReplyText(s, fmt.Sprintf("NG:Invalid argument %s", err), true)
				return true
			}
			length, err := strconv.Atoi(args[2])
			if err != nil {
				h.ReplyText(s, fmt.Sprintf("NG:Invalid argument %s", err), true)
				return true
			}
			data, err := h.bank.Read(uint32(address), length)
			if err != nil {
				h.ReplyText(s, "NG:Bus error", true)
				return true
			}
			h.replyHexRows(s, data)
			return true
		})

	h.Register("write", "write <address in hexadecimal> <write data in hexadecimal 1byte> [<write data in hexadecimal 1byte> ..]",
		func(s *session.Session, args []string) bool {
			if len(args) < 3 {
				return h.badArgs(s, args)
			}
			address, err := strconv.ParseUint(args[1], 16, 32)
			if err != nil {
				h.ReplyText(s, fmt.Sprintf("NG:Invalid argument %s", err), true)
				return true
			}
			data := make([]byte, 0, len(args)-2)
			for _, tok := range args[2:] {
				b, err := strconv.ParseUint(tok, 16, 8)
				if err != nil {
					h.ReplyText(s, fmt.Sprintf("NG:Invalid argument %s", err), true)
					return true
				}
				data = append(data, byte(b))
			}
			if err := h.bank.Write(uint32(address), data); err != nil {
				h.ReplyText(s, "NG:Bus error", true)
				return true
			}
			h.ReplyText(s, fmt.Sprintf("write %d bytes.", len(data)), true)
			return true
		})

	h.Register("initreg", "initreg <file_path>: initialize registers from a file or directory of init files.",
		func(s *session.Session, args []string) bool {
			if len(args) != 2 {
				return h.badArgs(s, args)
			}
			info, err := os.Stat(args[1])
			if err != nil {
				h.ReplyText(s, fmt.Sprintf("NG:%s", err), true)
				return true
			}
			var paths []string
			if info.IsDir() {
				entries, err := os.ReadDir(args[1])
				if err != nil {
					h.ReplyText(s, fmt.Sprintf("NG:%s", err), true)
					return true
				}
				for _, e := range entries {
					paths = append(paths, args[1]+string(os.PathSeparator)+e.Name())
				}
			} else {
				paths = []string{args[1]}
			}
			for _, p := range paths {
				region, err := register.InitializeFromFile(p)
				if err != nil {
					h.ReplyText(s, fmt.Sprintf("NG:%s", err), true)
					return true
				}
				h.bank.AddRegion(region)
			}
			h.bank.MergeAll()
			h.ReplyText(s, "address area initialized", true)
			return true
		})

	h.Register("dump", "dump: Dump virtual registers.",
		func(s *session.Session, _ []string) bool {
			for _, r := range h.bank.Dump() {
				h.ReplyText(s, fmt.Sprintf("0x%08X: %s", r.Start, hexRow(r.Data)), true)
			}
			return true
		})

	h.Register("dataunitcount", "dataunitcount [<count>]: Get/set the data generator's burst size in units.",
		func(s *session.Session, args []string) bool {
			if h.gen == nil {
				h.ReplyText(s, "NG:Data generator is not set", true)
				return true
			}
			switch len(args) {
			case 1:
				h.ReplyText(s, strconv.Itoa(h.gen.UnitCount()), true)
			case 2:
				n, err := strconv.Atoi(args[1])
				if err != nil {
					h.ReplyText(s, fmt.Sprintf("NG:%s", err), true)
					return true
				}
				h.gen.SetUnitCount(n)
				h.ReplyText(s, fmt.Sprintf("set data unit count %d = %d", n, h.gen.UnitCount()), true)
			default:
				h.ReplyText(s, "NG:Too many arguments", true)
			}
			return true
		})
}

func (h *rbcpCommandHandler) badArgs(s *session.Session, args []string) bool {
	h.ReplyText(s, "NG:Invalid arguments", true)
	return true
}

// replyHexRows prints eight space-separated hex bytes per line,
// matching the original's 8-column read output.
func (h *rbcpCommandHandler) replyHexRows(s *session.Session, data []byte) {
	var row []string
	for i, b := range data {
		row = append(row, fmt.Sprintf("%02X", b))
		if (i+1)%8 == 0 {
			h.ReplyText(s, strings.Join(row, " "), true)
			row = nil
		}
	}
	if len(row) > 0 {
		h.ReplyText(s, strings.Join(row, " "), true)
	}
}

func hexRow(data []byte) string {
	row := make([]string, len(data))
	for i, b := range data {
		row[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(row, " ")
}
