/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

// Package metricshttp serves the Prometheus /metrics endpoint the
// cmd/* binaries optionally expose, separate from the command
// console's own TCP port.
package metricshttp

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve starts an HTTP server on addr exposing reg's collectors at
// /metrics, returning immediately. A nil *http.Server is returned
// when addr is empty (instrumentation disabled).
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go srv.ListenAndServe()
	return srv
}

// Shutdown is a nil-safe wrapper around http.Server.Shutdown.
func Shutdown(ctx context.Context, srv *http.Server) {
	if srv == nil {
		return
	}
	srv.Shutdown(ctx)
}
