// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gargoilxd/pie/internal/config"
	"github.com/gargoilxd/pie/internal/engine"
	"github.com/gargoilxd/pie/internal/loader"
	"github.com/gargoilxd/pie/internal/logging"
	"github.com/gargoilxd/pie/internal/term"
)

const (
	defaultServeAddr     = ":9090"
	serveShutdownTimeout = 5 * time.Second
)

// NewServeCmd builds "pie serve", exposing /metrics and a minimal /query
// HTTP endpoint over a KB loaded once at startup.
func NewServeCmd() *cobra.Command {
	var addr, file string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /metrics and /query over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr, file)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVarP(&file, "file", "f", defaultFile, "path to knowledge base file")
	return cmd
}

func runServe(cmd *cobra.Command, addr, file string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_LOAD_ERROR").Wrap(err)
	}
	logger := logging.Setup("pie-serve", version, cfg.LogFormat, cfg.LogLevel, os.Stderr)

	kbase, err := loader.LoadFile(file)
	if err != nil {
		return oops.Code("LOADER_IO_ERROR").With("path", file).Wrapf(err, "loading %q", file)
	}
	e := engine.New(kbase, cfg.EngineOptions(logger))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := e.Infer(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/query", queryHandler(e))

	server := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.InfoContext(ctx, "pie serve listening", "addr", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.InfoContext(ctx, "received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return oops.Code("SERVE_FAILED").Wrapf(err, "http server error")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func queryHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pattern := r.URL.Query().Get("pattern")
		if pattern == "" {
			http.Error(w, "missing required query parameter 'pattern'", http.StatusBadRequest)
			return
		}
		t, err := term.Parse(pattern)
		if err != nil {
			http.Error(w, "invalid pattern: "+err.Error(), http.StatusBadRequest)
			return
		}
		results := e.Query(r.Context(), t)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Result string `json:"result"`
		}{Result: engine.FormatQueryResult(t, results)})
	}
}
