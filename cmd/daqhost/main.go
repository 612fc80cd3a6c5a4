/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Command daqhost is the acquisition host: a command console that
// drives a daq.Client against a remote data-generator port, grounded
// on the original templates/cui_project/daq.py sample.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/daq"
	"github.com/BeeBeansTechnologies/sitcpy/internal/initcmd"
	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/internal/metricshttp"
	"github.com/BeeBeansTechnologies/sitcpy/metrics"
	"github.com/BeeBeansTechnologies/sitcpy/session"
	"github.com/BeeBeansTechnologies/sitcpy/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var host string
	var port int
	var targetHost string
	var targetPort int
	var dataUnit int
	var logDir string
	var source string
	var command string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "daqhost",
		Short: "Acquisition host: command console driving a DAQ client.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(host, port, targetHost, targetPort, dataUnit, logDir, source, command, metricsAddr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&host, "host", "a", "0.0.0.0", "bind address for the command console")
	flags.IntVarP(&port, "port", "p", 0, "command console port (0 for an ephemeral port)")
	flags.StringVar(&targetHost, "target-host", "127.0.0.1", "DAQ source host")
	flags.IntVarP(&targetPort, "dataport", "d", 24242, "DAQ source TCP port")
	flags.IntVar(&dataUnit, "data-unit", 8, "record size in bytes")
	flags.StringVar(&logDir, "log-dir", ".", "base directory for raw spool files and the run-number file")
	flags.StringVarP(&source, "source", "s", "", "file of newline-separated initial commands")
	flags.StringVarP(&command, "command", "x", "", "semicolon-separated initial commands")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "bind address for a /metrics endpoint (empty disables it)")

	return cmd
}

func run(host string, port int, targetHost string, targetPort, dataUnit int, logDir, source, command, metricsAddr string) error {
	log := logging.New()

	reg := prometheus.NewRegistry()
	var m *metrics.Set
	if metricsAddr != "" {
		m = metrics.NewSet(reg, "daqhost")
	}
	metricsSrv := metricshttp.Serve(metricsAddr, reg)

	targetAddr := fmt.Sprintf("%s:%d", targetHost, targetPort)
	runNoPath := filepath.Join(logDir, daq.DefaultRunNoFile)
	prompt := "daq$ "

	var cmdSrv *session.Server
	factory := func() session.Handler {
		h := newDAQCommandHandler(prompt, targetAddr, dataUnit, logDir, runNoPath, log, m)
		h.SetServerInfo(cmdSrv)
		return h
	}
	cmdSrv = session.NewServer(factory, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdAddr, err := cmdSrv.Start(ctx, fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("daqhost: start command server: %w", err)
	}
	log.Info("daqhost started", logging.Fields{"command": cmdAddr, "target": targetAddr})

	if err := initcmd.Run(cmdAddr, prompt, source, command); err != nil {
		log.Error("daqhost: initial commands failed", logging.Fields{"error": err.Error()})
	}

	cmdStopped := make(chan struct{})
	go func() {
		cmdSrv.State().Wait(context.Background(), state.Stopped)
		close(cmdStopped)
	}()

	select {
	case <-ctx.Done():
	case <-cmdStopped:
		log.Info("daqhost: command console requested shutdown", nil)
	}
	log.Info("daqhost shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = cmdSrv.Stop(shutdownCtx)
	metricshttp.Shutdown(shutdownCtx, metricsSrv)
	return err
}
