// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kropatz/kop-audio/talk/config"
)

type options struct {
	server bool
	client bool
	noTUI  bool
	ip     string
	debug  bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "kop-audio",
		Short:         "Low-latency group voice chat over UDP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.server, "server", false, "run the relay server")
	cmd.Flags().BoolVar(&opts.client, "client", false, "run a client (default)")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "run the client without the console UI")
	cmd.Flags().StringVar(&opts.ip, "ip", "", "host:port of the relay (client) or the address to listen on (server)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.MarkFlagsMutuallyExclusive("server", "client")

	return cmd
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if opts.debug {
		cfg.LogLevel = "debug"
	}

	withConsole := !opts.server && !opts.noTUI

	logOut, closeLog, err := logOutput(cfg, opts.debug, withConsole)
	if err != nil {
		return err
	}
	defer closeLog()

	log, err := config.NewLogger(cfg.LogLevel, logOut)
	if err != nil {
		return err
	}

	slog.SetDefault(log)

	if opts.server {
		if opts.ip != "" {
			cfg.Listen = opts.ip
		}
		return runServer(ctx, cfg, log)
	}

	if opts.ip != "" {
		cfg.Server = opts.ip
	}

	return runClient(ctx, cfg, withConsole, stdout, log)
}

// logOutput keeps the terminal free for the console UI: the log goes to a file in debug mode
// and nowhere otherwise.
func logOutput(cfg *config.Config, debug, withConsole bool) (io.Writer, func(), error) {
	if !withConsole {
		return os.Stderr, func() {}, nil
	}

	if !debug {
		return io.Discard, func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
