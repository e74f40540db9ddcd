// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Kropatz/kop-audio/talk/audio"
	"github.com/Kropatz/kop-audio/talk/client"
	"github.com/Kropatz/kop-audio/talk/config"
	"github.com/Kropatz/kop-audio/talk/event"
	"github.com/Kropatz/kop-audio/talk/ui"
)

// exitGrace is how long the session gets to say goodbye after an interrupt.
const exitGrace = 2 * time.Second

func runClient(ctx context.Context, cfg *config.Config, withConsole bool, stdout io.Writer, log *slog.Logger) error {
	conn, err := client.Dial(cfg.Server, cfg.VoiceQoS, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	opts := []func(*client.Session){
		client.WithLogger(log),
		client.WithName(cfg.Name),
		client.WithKeepAlive(cfg.KeepAlive),
	}

	if cfg.CaptureFile != "" {
		f, err := os.Open(cfg.CaptureFile)
		if err != nil {
			return fmt.Errorf("failed to open capture file: %w", err)
		}
		defer f.Close()

		opts = append(opts, client.WithCapture(audio.NewReaderCapture(f)))
	}

	if cfg.PlaybackFile != "" {
		f, err := os.Create(cfg.PlaybackFile)
		if err != nil {
			return fmt.Errorf("failed to create playback file: %w", err)
		}
		defer f.Close()

		opts = append(opts, client.WithPlayback(audio.NewWriterPlayback(f)))
	}

	bus := event.NewBus()
	defer bus.Close()

	session := client.NewSession(conn, bus, opts...)

	log.With("relay", cfg.Server, "name", session.Name()).Info("connecting")

	// An interrupt asks the session to leave the relay instead of cancelling it outright.
	sessionCtx, cancelSession := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelSession()

	go func() {
		select {
		case <-sessionCtx.Done():
		case <-ctx.Done():
			bus.Exit()
			select {
			case <-sessionCtx.Done():
			case <-time.After(exitGrace):
				cancelSession()
			}
		}
	}()

	uiCtx, cancelUI := context.WithCancel(sessionCtx)
	uiDone := make(chan error, 1)

	go func() {
		if withConsole {
			uiDone <- ui.NewConsole(bus, os.Stdin, stdout, log).Run(uiCtx)
			return
		}
		uiDone <- ui.NewHeadless(bus, log).Run(uiCtx)
	}()

	err = session.Run(sessionCtx)

	cancelUI()
	<-uiDone

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
