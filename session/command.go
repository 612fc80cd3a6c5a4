/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

// CommandFunc handles one dispatched command. It returns whether the
// session should continue.
type CommandFunc func(s *Session, args []string) bool

// Command pairs a dispatch function with its help text, the Go
// analogue of the teacher's reflective on_cmd_* + docstring binding:
// here the binding is an explicit table built at construction time.
type Command struct {
	Func  CommandFunc
	Usage string
}

// ServerInfo is the subset of Server state the built-in "state"
// command reports.
type ServerInfo interface {
	BindAddr() string
	HandlerTag() string
	SessionPeers() []string
}

// StatProvider supplies the key=value lines the built-in "stat"
// command reports. Implementations embedding CommandHandler set this
// to expose their own counters.
type StatProvider func() []string

// CommandHandler is a TextHandler that splits each delimited message
// on ';' then on its separator characters, and dispatches the first token against a
// registered command table. Unknown commands and panics are reported
// with an "NG:" prefix rather than tearing down the process.
type CommandHandler struct {
	TextHandler

	prompt   string
	seps     string
	commands map[string]*Command
	exit     atomic.Bool
	server   ServerInfo
	stats    StatProvider
}

// NewCommandHandler returns a handler with every built-in command
// registered under prompt. seps defaults to a single space when empty.
func NewCommandHandler(prompt string, seps string) *CommandHandler {
	if seps == "" {
		seps = " "
	}
	h := &CommandHandler{
		prompt:   prompt,
		seps:     seps,
		commands: make(map[string]*Command),
	}
	h.registerBuiltins()
	return h
}

// SetServerInfo wires the server whose state the "state" command reports.
func (h *CommandHandler) SetServerInfo(s ServerInfo) { h.server = s }

// SetStatProvider wires the function that supplies "stat" lines.
func (h *CommandHandler) SetStatProvider(f StatProvider) { h.stats = f }

// Register adds or replaces the command named name.
func (h *CommandHandler) Register(name, usage string, fn CommandFunc) {
	h.commands[name] = &Command{Func: fn, Usage: usage}
}

// IsExit reports whether the built-in exit command has fired.
func (h *CommandHandler) IsExit() bool { return h.exit.Load() }

// SetExit records an exit request.
func (h *CommandHandler) SetExit(exit bool) { h.exit.Store(exit) }

// OnStart sends the prompt immediately, matching the teacher's
// put_prompt-on-connect behavior.
func (h *CommandHandler) OnStart(s *Session) {
	h.putPrompt(s)
}

func (h *CommandHandler) putPrompt(s *Session) {
	h.ReplyText(s, h.prompt, false)
}

// OnData splits msg on ';' then on the handler's separator characters
// (a single space unless configured otherwise), dispatches each
// resulting command, and replies with the prompt after a successful
// pass. A panic from a command handler is recovered, reported as
// "NG:Error occurred (...)", and ends the session.
func (h *CommandHandler) OnData(s *Session, msg []byte) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			h.ReplyText(s, fmt.Sprintf("NG:Error occurred (%v)", r), true)
			cont = false
		}
	}()

	text := strings.TrimSpace(string(msg))
	for _, part := range strings.Split(text, ";") {
		args := splitFields(part, h.seps)
		if len(args) == 0 {
			continue
		}
		if !h.dispatch(s, args) {
			return false
		}
	}
	h.putPrompt(s)
	return true
}

func splitFields(s, seps string) []string {
	out := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	return out
}

func (h *CommandHandler) dispatch(s *Session, args []string) bool {
	cmd, ok := h.commands[args[0]]
	if !ok {
		h.ReplyText(s, fmt.Sprintf("NG:Unknown command [%s]", args[0]), true)
		return true
	}
	return cmd.Func(s, args)
}

func (h *CommandHandler) printHelp(s *Session, name string, usageOnly bool) {
	cmd, ok := h.commands[name]
	if !ok {
		h.ReplyText(s, fmt.Sprintf("NG:Unknown command:%s", name), true)
		return
	}
	for _, line := range strings.Split(cmd.Usage, "\n") {
		h.ReplyText(s, strings.TrimSpace(line), true)
		if usageOnly {
			break
		}
	}
}

func (h *CommandHandler) registerBuiltins() {
	h.Register("help", "help [<command>...]: Display usage of all commands.\nwith argument <command> shows details of that command.",
		func(s *Session, args []string) bool {
			if len(args) >= 2 {
				for _, key := range args[1:] {
					h.printHelp(s, key, false)
				}
				return true
			}
			names := make([]string, 0, len(h.commands))
			for name := range h.commands {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				h.printHelp(s, name, true)
			}
			return true
		})

	h.Register("state", "state: Show state of server.",
		func(s *Session, _ []string) bool {
			if h.server == nil {
				h.ReplyText(s, "No state information.", true)
				return true
			}
			h.ReplyText(s, fmt.Sprintf("Server address: %s", h.server.BindAddr()), true)
			h.ReplyText(s, fmt.Sprintf("Handler: %s", h.server.HandlerTag()), true)
			peers := h.server.SessionPeers()
			h.ReplyText(s, fmt.Sprintf("Sessions: %d", len(peers)), true)
			for i, peer := range peers {
				h.ReplyText(s, fmt.Sprintf("Session[%d]: %s", i, peer), true)
			}
			return true
		})

	h.Register("stat", "stat [j]: Returns statistics of this process.\nj: Returns statistics as json.",
		func(s *Session, args []string) bool {
			if len(args) > 1 && !(len(args) == 2 && args[1] == "j") {
				h.ReplyText(s, fmt.Sprintf("NG:Unknown argument %v", args[1:]), true)
				return true
			}
			var lines []string
			if h.stats != nil {
				lines = h.stats()
			}
			if len(args) == 2 && args[1] == "j" {
				dict := make(map[string]string, len(lines))
				for _, l := range lines {
					kv := strings.SplitN(l, "=", 2)
					if len(kv) == 2 {
						dict[kv[0]] = kv[1]
					}
				}
				encoded, _ := json.Marshal(dict)
				h.ReplyText(s, string(encoded), true)
			} else {
				for _, l := range lines {
					h.ReplyText(s, l, true)
				}
			}
			return true
		})

	h.Register("pwd", "pwd: Returns current directory.",
		func(s *Session, args []string) bool {
			if len(args) != 1 {
				h.ReplyText(s, "NG:Too many arguments", true)
				return true
			}
			dir, err := os.Getwd()
			if err != nil {
				h.ReplyText(s, fmt.Sprintf("NG:Error occurred (%v)", err), true)
				return true
			}
			h.ReplyText(s, dir, true)
			return true
		})

	h.Register("ls", "ls [path]: Returns files in the server's current directory or the specified path.",
		func(s *Session, args []string) bool {
			dir := "."
			switch {
			case len(args) == 1:
			case len(args) == 2:
				dir = args[1]
			default:
				h.ReplyText(s, "NG:Too many arguments", true)
				return true
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				h.ReplyText(s, fmt.Sprintf("NG:Error occurred (%v)", err), true)
				return true
			}
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name()
			}
			h.ReplyText(s, strings.Join(names, string(s.LineSeparator)), true)
			return true
		})

	h.Register("close", "close: Close the session. The server will not terminate. To exit the server, use the 'exit' command.",
		func(s *Session, _ []string) bool {
			h.ReplyText(s, "closing this session", true)
			s.Close()
			return false
		})

	h.Register("exit", "exit: Exit the server. To close the session, use the 'close' command.",
		func(s *Session, _ []string) bool {
			h.ReplyText(s, "exiting server", true)
			s.Close()
			h.SetExit(true)
			return false
		})
}
