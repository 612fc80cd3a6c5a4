/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/daq"
	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/metrics"
	"github.com/BeeBeansTechnologies/sitcpy/session"
)

// daqCommandHandler is the acquisition-host command console: run/stop
// a DAQ acquisition, toggle raw-data saving, and inspect/advance the
// run number, grounded on DaqCommandHandler in the original
// templates/cui_project/daq.py sample.
type daqCommandHandler struct {
	*session.CommandHandler

	targetAddr string
	dataUnit   int
	baseDir    string
	runNoPath  string
	log        logging.Logger
	metrics    *metrics.Set

	mu      sync.Mutex
	client  *daq.Client
	spool   *daq.SpoolWorker
	rawSave bool
	runNo   int
}

func newDAQCommandHandler(prompt, targetAddr string, dataUnit int, baseDir, runNoPath string, log logging.Logger, m *metrics.Set) *daqCommandHandler {
	runNo, _ := daq.LoadRunNo(runNoPath)
	h := &daqCommandHandler{
		CommandHandler: session.NewCommandHandler(prompt, " "),
		targetAddr:     targetAddr,
		dataUnit:       dataUnit,
		baseDir:        baseDir,
		runNoPath:      runNoPath,
		log:            log,
		metrics:        m,
		runNo:          runNo,
	}
	h.registerCommands()
	h.SetStatProvider(h.stats)
	return h
}

func (h *daqCommandHandler) stats() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	lines := []string{fmt.Sprintf("run no=%d", h.runNo)}
	if h.client == nil {
		lines = append(lines, "daq=stop")
		return lines
	}
	lines = append(lines, "daq=running")
	s := h.client.Stats()
	s.SpoolOn = h.rawSave
	if h.spool != nil {
		s.QueueSize = h.spool.QueueDepth()
	}
	lines = append(lines, s.Lines()...)
	return lines
}

func (h *daqCommandHandler) registerCommands() {
	h.Register("run", "run: Run daq.",
		func(s *session.Session, args []string) bool {
			if len(args) != 1 {
				h.ReplyText(s, "NG:Too many arguments", true)
				return true
			}
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.client != nil {
				h.ReplyText(s, "NG:Run command status mismatch", true)
				return true
			}

			if h.rawSave {
				h.spool = daq.NewSpoolWorkerWithMetrics(h.baseDir, h.runNo, h.log, h.metrics)
				h.spool.Start()
			}

			handler := &daqRunHandler{h: h}
			h.client = daq.NewClientWithMetrics(h.targetAddr, h.dataUnit, handler, h.log, h.metrics)
			go h.client.Run(context.Background())

			h.ReplyText(s, "OK:daq started", true)
			return true
		})

	h.Register("stop", "stop: Stop current run.",
		func(s *session.Session, args []string) bool {
			if len(args) != 1 {
				h.ReplyText(s, "NG:Too many arguments", true)
				return true
			}
			h.mu.Lock()
			client := h.client
			spool := h.spool
			rawSave := h.rawSave
			h.mu.Unlock()

			if client == nil {
				h.ReplyText(s, "NG:stop command status mismatch", true)
				return true
			}
			if rawSave {
				h.ReplyText(s, "waiting for raw data writing...", true)
			}
			client.Stop()
			if spool != nil {
				spool.Stop(10 * time.Second)
			}

			h.mu.Lock()
			h.client = nil
			h.spool = nil
			h.runNo++
			h.mu.Unlock()
			daq.SaveRunNo(h.runNoPath, h.runNo)

			h.ReplyText(s, "OK:stopped", true)
			return true
		})

	h.Register("rawsave", "rawsave [on|off]: Set the raw event data save function on/off.",
		func(s *session.Session, args []string) bool {
			h.mu.Lock()
			defer h.mu.Unlock()
			switch len(args) {
			case 1:
				if h.rawSave {
					h.ReplyText(s, "on", true)
				} else {
					h.ReplyText(s, "off", true)
				}
			case 2:
				switch args[1] {
				case "on":
					if err := os.MkdirAll(h.baseDir, 0o755); err != nil {
						h.ReplyText(s, fmt.Sprintf("NG:Could not create logging dir %s. %s", h.baseDir, err), true)
						return true
					}
					h.rawSave = true
					h.ReplyText(s, "OK:on", true)
				default:
					h.rawSave = false
					h.ReplyText(s, "OK:off", true)
				}
			default:
				h.ReplyText(s, "NG:Too many arguments", true)
			}
			return true
		})

	h.Register("runno", "runno [<runno>]: Set/show the run number.",
		func(s *session.Session, args []string) bool {
			h.mu.Lock()
			defer h.mu.Unlock()
			switch len(args) {
			case 1:
				h.ReplyText(s, strconv.Itoa(h.runNo), true)
			case 2:
				n, err := strconv.Atoi(args[1])
				if err != nil {
					h.ReplyText(s, fmt.Sprintf("NG:Error occurred (%s)", err), true)
					return true
				}
				h.runNo = n
				daq.SaveRunNo(h.runNoPath, h.runNo)
				h.ReplyText(s, fmt.Sprintf("OK:%d", n), true)
			default:
				h.ReplyText(s, "NG:Too many arguments", true)
			}
			return true
		})
}

// daqRunHandler adapts the session-scoped daqCommandHandler into a
// daq.Handler: records are fed to its spool worker and connect
// failures are logged. Other lifecycle callbacks are no-ops; the stat
// lines read the client's own Stats.
type daqRunHandler struct {
	daq.NopHandler
	h *daqCommandHandler
}

func (d *daqRunHandler) OnDaqData(c *daq.Client, data []byte) {
	d.h.mu.Lock()
	spool := d.h.spool
	d.h.mu.Unlock()
	if spool != nil {
		spool.Enqueue(data)
	}
}

func (d *daqRunHandler) OnDaqError(c *daq.Client, err error) {
	d.h.log.Error("daq connect failed", logging.Fields{"error": err.Error()})
}
