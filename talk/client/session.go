// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Kropatz/kop-audio/talk/audio"
	"github.com/Kropatz/kop-audio/talk/event"
	"github.com/Kropatz/kop-audio/talk/gate"
	"github.com/Kropatz/kop-audio/talk/util"
)

// Session runs the receive pipeline, the send pipeline and the keepalive against one relay.
type Session struct {
	conn      Conn
	bus       *event.Bus
	name      string
	codec     audio.Codec
	capture   audio.Capture
	playback  audio.Playback
	gate      *gate.Gate
	keepAlive time.Duration
	log       *slog.Logger
}

func NewSession(conn Conn, bus *event.Bus, opts ...func(*Session)) *Session {
	s := &Session{
		conn:      conn,
		bus:       bus,
		codec:     audio.PCMCodec{},
		capture:   &audio.Silence{},
		playback:  audio.Discard{},
		keepAlive: DefaultKeepAlive,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.name == "" {
		s.name = DefaultName()
	}

	if s.gate == nil {
		s.gate = gate.New()
	}

	return s
}

var WithLogger = func(log *slog.Logger) func(*Session) {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithName sets the name announced in Hello.
var WithName = func(name string) func(*Session) {
	return func(s *Session) {
		s.name = name
	}
}

var WithCodec = func(codec audio.Codec) func(*Session) {
	return func(s *Session) {
		if codec != nil {
			s.codec = codec
		}
	}
}

var WithCapture = func(capture audio.Capture) func(*Session) {
	return func(s *Session) {
		if capture != nil {
			s.capture = capture
		}
	}
}

var WithPlayback = func(playback audio.Playback) func(*Session) {
	return func(s *Session) {
		if playback != nil {
			s.playback = playback
		}
	}
}

var WithGate = func(g *gate.Gate) func(*Session) {
	return func(s *Session) {
		s.gate = g
	}
}

// WithKeepAlive sets the ping period. Zero disables pings.
var WithKeepAlive = func(period time.Duration) func(*Session) {
	return func(s *Session) {
		if period >= 0 {
			s.keepAlive = period
		}
	}
}

// DefaultName returns a random name of the form "kop-xxxxxxxx".
func DefaultName() string {
	return "kop-" + uuid.NewString()[:8]
}

func (s *Session) Name() string {
	return s.name
}

// Run blocks until the session ends. It returns nil if the session was closed by an Exit event
// or by the relay, and ctx.Err() if ctx was cancelled first.
// The send pipeline is not waited for: a capture device may block in Read long after the
// session has ended. It observes the end of the session on its next frame.
// A failing capture device stops only the send pipeline; the session keeps receiving
// and the UI is told with CaptureFailed.
func (s *Session) Run(ctx context.Context) error {
	log := s.log.With("name", s.name)

	receive := NewReceivePipeline(s.conn, s.codec, s.playback, s.bus.Receive, s.bus.UI, s.name, log)
	send := NewSendPipeline(s.conn, s.capture, s.codec, s.gate, s.bus.Send, s.bus.UI, log)

	g, ctx := errgroup.WithContext(ctx)

	go func() {
		defer util.Recover(log)

		err := send.Run(ctx)
		if err != nil && !errors.Is(err, ErrClosed) && ctx.Err() == nil {
			log.With("err", err.Error()).Error("send pipeline stopped")
			s.bus.UI.Publish(event.CaptureFailed{})
		}
	}()

	g.Go(func() error {
		return receive.Run(ctx)
	})

	if s.keepAlive > 0 {
		g.Go(func() error {
			return keepAliveService{conn: s.conn, period: s.keepAlive, log: log}.Start(ctx)
		})
	}

	log.Info("session started")

	err := g.Wait()
	if errors.Is(err, ErrClosed) {
		log.Info("session closed")
		return nil
	}

	return err
}
