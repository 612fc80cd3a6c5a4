/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package daq implements the TCP DAQ client: a record-unit-aligned
// stream consumer with live throughput stats and a bounded spool
// worker that rotates raw capture files, grounded on the original
// sitcpy daq_client.py DaqHandler/DaqClient classes.
package daq

import (
	"fmt"
	"time"
)

// Stats tracks the timing and byte-count information a DAQ session
// reports through create_stat_list/stat.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Current   time.Time
	DataBytes uint64
	DataUnit  int
	QueueSize int
	SpoolOn   bool
}

// Start resets the stats to the beginning of a new acquisition.
func (s *Stats) Start(now time.Time) {
	s.Current = now
	s.StartTime = now
	s.EndTime = time.Time{}
	s.DataBytes = 0
}

// Stop records the acquisition end time.
func (s *Stats) Stop(now time.Time) {
	s.EndTime = now
}

// AddBytes records newly received bytes and advances Current.
func (s *Stats) AddBytes(n int, now time.Time) {
	s.DataBytes += uint64(n)
	s.Current = now
}

// Touch advances Current without adding bytes, used by the periodic
// on_daq_running callback.
func (s *Stats) Touch(now time.Time) { s.Current = now }

// Duration returns end-start if the run has ended, else current-start.
func (s *Stats) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	end := s.Current
	if !s.EndTime.IsZero() {
		end = s.EndTime
	}
	return end.Sub(s.StartTime)
}

// CPS returns counts-per-second: (bytes/data_unit) / elapsed seconds.
func (s *Stats) CPS() float64 {
	secs := s.Duration().Seconds()
	if secs <= 0 || s.DataUnit <= 0 {
		return 0
	}
	return float64(s.DataBytes/uint64(s.DataUnit)) / secs
}

// Lines renders the stats as human-readable key=value pairs, matching
// DaqHandler.create_stat_list.
func (s *Stats) Lines() []string {
	start := "not-started"
	end := "not-started"
	duration := "0s"
	var cps float64

	if !s.StartTime.IsZero() {
		start = s.StartTime.Format(time.RFC3339Nano)
		if s.Current.After(s.StartTime) {
			duration = s.Current.Sub(s.StartTime).String()
			cps = s.CPS()
		}
	}
	if !s.EndTime.IsZero() {
		end = s.EndTime.Format(time.RFC3339Nano)
		duration = s.EndTime.Sub(s.StartTime).String()
	}

	events := uint64(0)
	if s.DataUnit > 0 {
		events = s.DataBytes / uint64(s.DataUnit)
	}

	lines := []string{
		fmt.Sprintf("start time=%s", start),
		fmt.Sprintf("end time=%s", end),
		fmt.Sprintf("duration=%s", duration),
		fmt.Sprintf("events=%d", events),
		fmt.Sprintf("cps=%g", cps),
		fmt.Sprintf("bytes=%d", s.DataBytes),
	}
	if s.SpoolOn {
		lines = append(lines, fmt.Sprintf("raw data queue=%d", s.QueueSize))
	} else {
		lines = append(lines, "raw data save=off")
	}
	return lines
}
