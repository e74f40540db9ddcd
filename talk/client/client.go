// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package client implements the voice chat client: the send and receive audio pipelines
// and the session that runs them against a relay.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/Kropatz/kop-audio/talk/audio"
	"github.com/Kropatz/kop-audio/udp"
)

// ErrClosed is returned by the pipelines when the session ended on request: an Exit event
// or a Bye from the relay.
var ErrClosed = errors.New("client: session closed")

type Sender interface {
	Send(data []byte) error
}

// Conn is a socket connected to the relay. Send must be safe for concurrent use with Listen.
type Conn interface {
	Sender
	Listen(ctx context.Context, processFn func(data []byte)) error
	SetBreakHandler(breakFn func())
}

var _ Conn = (*udp.Client)(nil)

// Dial resolves the relay address and connects a UDP socket to it.
// The returned client polls for control events once per audio frame while no datagram arrives.
// Non-fatal socket errors are logged to log.
func Dial(server string, voiceQoS bool, log *slog.Logger) (*udp.Client, error) {
	if log == nil {
		log = slog.Default()
	}

	serverAddr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, fmt.Errorf("client: failed to resolve relay address %q: %w", server, err)
	}

	conn := udp.NewClient(*serverAddr)
	conn.SetBreakPeriod(audio.FrameDuration)
	conn.SetVoiceQoS(voiceQoS)
	conn.SetHandleError(func(err error) {
		log.With("err", err.Error()).Warn("udp client error")
	})

	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("client: failed to connect to %s: %w", serverAddr.String(), err)
	}

	return conn, nil
}
