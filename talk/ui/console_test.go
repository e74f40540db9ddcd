// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Kropatz/kop-audio/talk/event"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func eventStrings(events []event.Event) []string {
	list := make([]string, len(events))
	for i, e := range events {
		list[i] = e.String()
	}
	return list
}

func TestConsoleKeys(t *testing.T) {
	bus := event.NewBus()
	var out bytes.Buffer

	c := NewConsole(bus, strings.NewReader("m\n\nx\nD\nq\nm\n"), &out, quietLog)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"toggle-mute", "exit"}, eventStrings(bus.Send.Drain())); diff != "" {
		t.Errorf("send inbox mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"toggle-deafen", "exit"}, eventStrings(bus.Receive.Drain())); diff != "" {
		t.Errorf("receive inbox mismatch (-want +got):\n%s", diff)
	}

	state := c.State()
	if !state.Muted || !state.Deafened || !state.Exit {
		t.Errorf("unexpected state: %+v", state)
	}

	if s := out.String(); strings.Count(s, help) != 2 || !strings.Contains(s, "[muted]") {
		t.Errorf("unexpected output:\n%s", s)
	}
}

func TestConsoleCanceled(t *testing.T) {
	bus := event.NewBus()
	r, w := io.Pipe()
	defer w.Close()

	c := NewConsole(bus, r, io.Discard, quietLog)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := c.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got: %v", err)
	}
}

func TestHeadless(t *testing.T) {
	bus := event.NewBus()

	bus.UI.Publish(event.Connect{})
	bus.UI.Publish(event.NewPeer{Addr: addr1})
	bus.UI.Publish(event.TransmitAudio{On: true})
	bus.UI.Publish(event.NewPeer{Addr: addr2})
	bus.UI.Publish(event.DeletePeer{Addr: addr1})

	h := NewHeadless(bus, quietLog)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := h.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got: %v", err)
	}

	exp := State{Connected: true, Sending: true, Peers: []netip.AddrPort{addr2}}
	if diff := cmp.Diff(exp, h.State(), cmpAddr); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	if n := bus.UI.Len(); n != 0 {
		t.Errorf("events left in inbox: %d", n)
	}
}
