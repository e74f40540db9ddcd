// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Kropatz/kop-audio/talk/config"
	"github.com/Kropatz/kop-audio/talk/relay"
	"github.com/Kropatz/kop-audio/udp"
)

const metricsShutdownTimeout = 5 * time.Second

func runServer(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	addr, err := net.ResolveUDPAddr("udp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to resolve listen address %q: %w", cfg.Listen, err)
	}

	srv := udp.NewServer()
	srv.SetVoiceQoS(cfg.VoiceQoS)
	srv.SetHandleError(func(err error) {
		log.With("err", err.Error()).Warn("udp server error")
	})

	opts := []func(*relay.Relay){
		relay.WithLogger(log),
		relay.WithSweepEvery(cfg.SweepEvery),
		relay.WithPeerTimeout(cfg.PeerTimeout),
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		opts = append(opts, relay.WithMetrics(relay.NewMetrics(reg)))

		httpSrv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.With("addr", cfg.MetricsAddr).Info("serving metrics")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics endpoint: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	r := relay.New(srv, opts...)

	g.Go(func() error {
		return r.Start(ctx, addr)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info("relay stopped")
		return nil
	}

	return err
}
