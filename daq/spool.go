/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package daq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/metrics"
	"github.com/nabbar/golib/runner/startStop"
)

// RotationThresholdBytes is the default cumulative size at which the
// spool worker closes the current file and opens the next sequence
// number, matching the original's 1024 MiB divide unit.
const RotationThresholdBytes = 1024 * 1024 * 1024

const spoolQueueCapacity = 4096

// spoolQueue is a bounded single-producer single-consumer FIFO of raw
// byte slices. A full queue drops the newest record and reports it,
// rather than blocking the DAQ read loop.
type spoolQueue struct {
	ch chan []byte
}

func newSpoolQueue() *spoolQueue {
	return &spoolQueue{ch: make(chan []byte, spoolQueueCapacity)}
}

// Put enqueues data, returning false if the queue was full (the
// record is dropped).
func (q *spoolQueue) Put(data []byte) bool {
	select {
	case q.ch <- data:
		return true
	default:
		return false
	}
}

// Get dequeues the next record, blocking up to timeout.
func (q *spoolQueue) Get(timeout time.Duration) ([]byte, bool) {
	select {
	case data := <-q.ch:
		return data, true
	case <-time.After(timeout):
		return nil, false
	}
}

// Len reports the queue's current depth.
func (q *spoolQueue) Len() int { return len(q.ch) }

// SpoolWorker drains a spoolQueue to sequentially numbered files under
// baseDir, rotating once the current file reaches RotationThresholdBytes.
// Its own background goroutine is owned by a startStop.Runner rather
// than a hand-rolled go statement, so Start/Stop/IsRunning compose with
// the same lifecycle runner the rest of the ecosystem uses for a
// single start-func/stop-func worker.
type SpoolWorker struct {
	baseDir   string
	runNo     int
	threshold int64
	log       logging.Logger
	metrics   *metrics.Set

	queue   *spoolQueue
	done    chan struct{}
	stopped chan struct{}
	runner  startStop.Runner
}

// NewSpoolWorker returns a worker writing raw<runNo:06d>_<seq:03d>
// files under baseDir. A nil *metrics.Set disables instrumentation.
func NewSpoolWorker(baseDir string, runNo int, log logging.Logger) *SpoolWorker {
	return NewSpoolWorkerWithMetrics(baseDir, runNo, log, nil)
}

// NewSpoolWorkerWithMetrics is NewSpoolWorker with an explicit metrics.Set.
func NewSpoolWorkerWithMetrics(baseDir string, runNo int, log logging.Logger, m *metrics.Set) *SpoolWorker {
	if log == nil {
		log = logging.Discard()
	}
	w := &SpoolWorker{
		baseDir:   baseDir,
		runNo:     runNo,
		threshold: RotationThresholdBytes,
		log:       log,
		metrics:   m,
		queue:     newSpoolQueue(),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	w.runner = startStop.New(
		func(context.Context) error {
			w.run()
			return nil
		},
		func(context.Context) error {
			return nil
		},
	)
	return w
}

// Enqueue offers data to the worker; a full queue drops and logs.
func (w *SpoolWorker) Enqueue(data []byte) {
	if !w.queue.Put(data) {
		w.log.Error("raw spool queue full, dropping record", logging.Fields{"bytes": len(data)})
	}
	w.metrics.SetSpoolQueueDepth(w.queue.Len())
}

// QueueDepth reports how many records are waiting to be written.
func (w *SpoolWorker) QueueDepth() int { return w.queue.Len() }

// Start spawns the draining goroutine via the worker's startStop.Runner.
func (w *SpoolWorker) Start() {
	_ = w.runner.Start(context.Background())
}

// IsRunning reports whether the draining goroutine is active.
func (w *SpoolWorker) IsRunning() bool { return w.runner.IsRunning() }

// Stop signals the worker to drain remaining queued records then
// exit, and waits up to timeout for it to finish.
func (w *SpoolWorker) Stop(timeout time.Duration) {
	for w.queue.Len() > 0 {
		w.log.Info("waiting for raw data writing", logging.Fields{"queued": w.queue.Len()})
		time.Sleep(20 * time.Millisecond)
	}
	close(w.done)
	select {
	case <-w.stopped:
	case <-time.After(timeout):
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = w.runner.Stop(ctx)
}

func (w *SpoolWorker) run() {
	defer close(w.stopped)

	seq := 0
	for {
		select {
		case <-w.done:
			return
		default:
		}

		name := fmt.Sprintf("raw%06d_%03d", w.runNo, seq)
		path := filepath.Join(w.baseDir, name)
		if !w.drainToFile(path) {
			return
		}
		seq++
	}
}

// drainToFile writes records into one file until the rotation
// threshold is reached or Stop is signaled, returning false only when
// the worker should exit entirely (stop with an empty queue).
func (w *SpoolWorker) drainToFile(path string) bool {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		w.log.Error("could not open raw spool file", logging.Fields{"path": path, "error": err.Error()})
		return false
	}
	defer f.Close()
	w.log.Info("raw data file opened", logging.Fields{"path": path})

	var written int64
	for {
		select {
		case <-w.done:
			w.drainRemaining(f, &written)
			return false
		default:
		}

		data, ok := w.queue.Get(10 * time.Millisecond)
		if !ok {
			continue
		}
		w.metrics.SetSpoolQueueDepth(w.queue.Len())
		n, err := f.Write(data)
		if err != nil {
			w.log.Error("raw spool write error", logging.Fields{"error": err.Error()})
			continue
		}
		written += int64(n)
		if written >= w.threshold {
			return true
		}
	}
}

// drainRemaining flushes whatever is already queued before the
// worker's goroutine exits for good.
func (w *SpoolWorker) drainRemaining(f *os.File, written *int64) {
	for {
		data, ok := w.queue.Get(time.Millisecond)
		if !ok {
			return
		}
		n, err := f.Write(data)
		if err != nil {
			w.log.Error("raw spool write error", logging.Fields{"error": err.Error()})
			continue
		}
		*written += int64(n)
	}
}
