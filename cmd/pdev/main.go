/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Command pdev is the pseudo-device emulator: an RBCP register server,
// its command console, and a push-mode data-generator port, grounded
// on the original sitcpy rbcp_server.py PseudoDevice sample.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/datagen"
	"github.com/BeeBeansTechnologies/sitcpy/internal/initcmd"
	"github.com/BeeBeansTechnologies/sitcpy/internal/logging"
	"github.com/BeeBeansTechnologies/sitcpy/internal/metricshttp"
	"github.com/BeeBeansTechnologies/sitcpy/metrics"
	"github.com/BeeBeansTechnologies/sitcpy/rbcpserver"
	"github.com/BeeBeansTechnologies/sitcpy/register"
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
	var rbcpPort int
	var dataPort int
	var source string
	var command string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "pdev",
		Short: "Pseudo SiTCP device: RBCP server, command console, and data generator.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(host, port, rbcpPort, dataPort, source, command, metricsAddr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&host, "host", "a", "0.0.0.0", "bind address")
	flags.IntVarP(&port, "port", "p", 9090, "command server port")
	flags.IntVar(&rbcpPort, "rbcp-port", rbcpserver.DefaultPort, "RBCP UDP port")
	flags.IntVarP(&dataPort, "dataport", "d", datagen.DefaultPort, "data generator TCP port")
	flags.StringVarP(&source, "source", "s", "", "file of newline-separated initial commands")
	flags.StringVarP(&command, "command", "x", "", "semicolon-separated initial commands")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "bind address for a /metrics endpoint (empty disables it)")

	return cmd
}

func run(host string, port, rbcpPort, dataPort int, source, command, metricsAddr string) error {
	log := logging.New()

	reg := prometheus.NewRegistry()
	var m *metrics.Set
	if metricsAddr != "" {
		m = metrics.NewSet(reg, "pdev")
	}
	metricsSrv := metricshttp.Serve(metricsAddr, reg)

	bank := register.NewBank()
	bank.AddRegion(register.NewDefaultReservedRegion())

	rbcpSrv := rbcpserver.NewWithMetrics(bank, log, m)
	genCfg := newGenSettings(8, 2)
	dataSrv := datagen.NewServer(genCfg.NewGenerator, log)

	var cmdSrv *session.Server
	prompt := "pdev$ "
	factory := func() session.Handler {
		h := newRBCPCommandHandler(prompt, bank, rbcpSrv, genCfg)
		h.SetServerInfo(cmdSrv)
		return h
	}
	cmdSrv = session.NewServer(factory, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rbcpAddr, err := rbcpSrv.Start(ctx, fmt.Sprintf("%s:%d", host, rbcpPort))
	if err != nil {
		return fmt.Errorf("pdev: start rbcp server: %w", err)
	}
	dataAddr, err := dataSrv.Start(ctx, fmt.Sprintf("%s:%d", host, dataPort))
	if err != nil {
		return fmt.Errorf("pdev: start data generator: %w", err)
	}
	cmdAddr, err := cmdSrv.Start(ctx, fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("pdev: start command server: %w", err)
	}
	log.Info("pdev started", logging.Fields{"rbcp": rbcpAddr, "data": dataAddr, "command": cmdAddr})

	if err := initcmd.Run(cmdAddr, prompt, source, command); err != nil {
		log.Error("pdev: initial commands failed", logging.Fields{"error": err.Error()})
	}

	cmdStopped := make(chan struct{})
	go func() {
		cmdSrv.State().Wait(context.Background(), state.Stopped)
		close(cmdStopped)
	}()

	select {
	case <-ctx.Done():
	case <-cmdStopped:
		log.Info("pdev: command console requested shutdown", nil)
	}
	log.Info("pdev shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cmdSrv.Stop(shutdownCtx)
	dataSrv.Stop(shutdownCtx)
	rbcpSrv.Stop(shutdownCtx)
	metricshttp.Shutdown(shutdownCtx, metricsSrv)
	return nil
}
