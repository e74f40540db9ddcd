// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package ui

import (
	"context"
	"log/slog"

	"github.com/Kropatz/kop-audio/talk/event"
)

// Headless consumes the UI events of a session without a terminal and logs the interesting ones.
type Headless struct {
	bus   *event.Bus
	state State
	log   *slog.Logger
}

func NewHeadless(bus *event.Bus, log *slog.Logger) *Headless {
	if log == nil {
		log = slog.Default()
	}

	return &Headless{bus: bus, log: log}
}

func (h *Headless) State() State {
	return h.state
}

// Run returns ctx.Err() when ctx is done.
func (h *Headless) Run(ctx context.Context) error {
	for {
		events, err := h.bus.UI.Wait(ctx)
		if err != nil {
			return err
		}

		for _, e := range events {
			h.apply(e)
		}
	}
}

func (h *Headless) apply(e event.Event) {
	if !h.state.Apply(e) {
		return
	}

	switch e.(type) {
	case event.NewPeer, event.DeletePeer, event.Disconnect:
		h.log.With("event", e.String(), "peers", len(h.state.Peers)).Info("session changed")
	case event.Connect:
		h.log.Info("connected")
	case event.CaptureFailed:
		h.log.Warn("capture failed, not transmitting")
	default:
		h.log.With("event", e.String()).Debug("session changed")
	}
}
