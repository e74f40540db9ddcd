// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Kropatz/kop-audio/talk/audio"
	"github.com/Kropatz/kop-audio/talk/event"
	"github.com/Kropatz/kop-audio/talk/gate"
	"github.com/Kropatz/kop-audio/talk/message"
)

// SendPipeline captures frames, drops them while muted or silent, encodes the rest
// and sends each one as an Audio datagram.
type SendPipeline struct {
	conn    Sender
	capture audio.Capture
	codec   audio.Codec
	gate    *gate.Gate
	inbox   *event.Inbox
	ui      event.Publisher

	muted        bool
	transmitting bool

	frame   []byte
	samples []int16
	buffer  [message.MaxMessageSize]byte

	log *slog.Logger
}

func NewSendPipeline(
	conn Sender,
	capture audio.Capture,
	codec audio.Codec,
	g *gate.Gate,
	inbox *event.Inbox,
	ui event.Publisher,
	log *slog.Logger,
) *SendPipeline {
	if g == nil {
		g = gate.New()
	}
	if ui == nil {
		ui = event.Discard
	}
	if log == nil {
		log = slog.Default()
	}

	return &SendPipeline{
		conn:    conn,
		capture: capture,
		codec:   codec,
		gate:    g,
		inbox:   inbox,
		ui:      ui,
		frame:   make([]byte, audio.FrameBytes),
		samples: make([]int16, 0, audio.FrameSamples),
		log:     log,
	}
}

// Run loops until an Exit event (ErrClosed), ctx cancellation, or a capture failure.
// Nothing else stops it: a frame that cannot be encoded or sent is dropped.
func (p *SendPipeline) Run(ctx context.Context) error {
	defer p.setTransmitting(false)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.pollInbox() {
			return ErrClosed
		}

		if err := p.capture.Read(p.frame); err != nil {
			return fmt.Errorf("send pipeline: %w", err)
		}

		p.handleFrame(p.frame)
	}
}

func (p *SendPipeline) Muted() bool {
	return p.muted
}

// pollInbox applies all pending control events and reports whether the pipeline must stop.
func (p *SendPipeline) pollInbox() bool {
	for _, e := range p.inbox.Drain() {
		switch e.(type) {
		case event.ToggleMute:
			p.muted = !p.muted
			if p.muted {
				p.gate.Reset()
			}
			p.log.With("muted", p.muted).Debug("mute toggled")
		case event.Exit:
			return true
		default:
			p.log.With("event", e.String()).Debug("send pipeline ignores event")
		}
	}

	return false
}

func (p *SendPipeline) handleFrame(frame []byte) {
	if p.muted {
		p.setTransmitting(false)
		return
	}

	samples, err := audio.AppendSamples(p.samples[:0], frame)
	if err != nil {
		p.log.With("err", err.Error()).Warn("dropping malformed frame")
		return
	}

	if !p.gate.Pass(samples) {
		p.setTransmitting(false)
		return
	}

	encoded, err := p.codec.Encode(samples)
	if err != nil {
		p.log.With("err", err.Error()).Warn("failed to encode frame")
		return
	}

	if len(encoded) > message.MaxPayloadSize {
		p.log.With("size", len(encoded)).Warn("encoded frame too large")
		return
	}

	size := message.Put(p.buffer[:], message.KindAudio, encoded)

	if err := p.conn.Send(p.buffer[:size]); err != nil {
		p.log.With("err", err.Error()).Debug("dropping frame")
		return
	}

	p.setTransmitting(true)
}

func (p *SendPipeline) setTransmitting(on bool) {
	if p.transmitting == on {
		return
	}

	p.transmitting = on
	p.ui.Publish(event.TransmitAudio{On: on})
}
