// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"log/slog"

	"github.com/Kropatz/kop-audio/talk/audio"
	"github.com/Kropatz/kop-audio/talk/event"
	"github.com/Kropatz/kop-audio/talk/message"
	"github.com/Kropatz/kop-audio/talk/util"
)

// ReceivePipeline announces the client to the relay, then plays received audio
// and turns relay notifications into events for the UI.
type ReceivePipeline struct {
	conn     Conn
	codec    audio.Codec
	playback audio.Playback
	inbox    *event.Inbox
	ui       event.Publisher
	name     string

	deafened bool

	cancel context.CancelFunc
	err    error

	pcm    []byte
	buffer [message.MaxMessageSize]byte

	log *slog.Logger
}

func NewReceivePipeline(
	conn Conn,
	codec audio.Codec,
	playback audio.Playback,
	inbox *event.Inbox,
	ui event.Publisher,
	name string,
	log *slog.Logger,
) *ReceivePipeline {
	if ui == nil {
		ui = event.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	if len(name) > message.MaxPayloadSize {
		name = name[:message.MaxPayloadSize]
	}

	return &ReceivePipeline{
		conn:     conn,
		codec:    codec,
		playback: playback,
		inbox:    inbox,
		ui:       ui,
		name:     name,
		pcm:      make([]byte, 0, audio.FrameBytes),
		log:      log,
	}
}

// Run sends Hello and handles datagrams until an Exit event or a Bye from the relay (ErrClosed),
// or until ctx is done. The inbox is polled for every datagram and every idle read break.
func (p *ReceivePipeline) Run(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	defer p.cancel()

	p.conn.SetBreakHandler(p.handleBreak)

	p.send(message.KindHello, []byte(p.name))

	err := p.conn.Listen(ctx, p.handleDatagram)
	if p.err != nil {
		return p.err
	}

	return err
}

func (p *ReceivePipeline) Deafened() bool {
	return p.deafened
}

func (p *ReceivePipeline) handleBreak() {
	if p.err != nil {
		return
	}

	p.pollInbox()
}

func (p *ReceivePipeline) handleDatagram(data []byte) {
	defer util.Recover(p.log)

	if p.err != nil {
		return
	}

	if p.pollInbox(); p.err != nil {
		return
	}

	msg := message.Decode(data)

	switch msg.Kind {
	case message.KindAudio:
		if p.deafened {
			break
		}

		samples, err := p.codec.Decode(msg.Payload)
		if err != nil {
			p.log.With("size", len(msg.Payload), "err", err.Error()).Warn("failed to decode frame")
			return
		}

		p.pcm = audio.AppendPCM(p.pcm[:0], samples)

		if err := p.playback.Write(p.pcm); err != nil {
			p.log.With("err", err.Error()).Warn("failed to play frame")
			return
		}

	case message.KindNewClient:
		addr, err := msg.Addr()
		if err != nil {
			p.log.With("err", err.Error()).Warn("invalid new client notification")
			return
		}
		p.ui.Publish(event.NewPeer{Addr: addr})

	case message.KindDeleteClient:
		addr, err := msg.Addr()
		if err != nil {
			p.log.With("err", err.Error()).Warn("invalid delete client notification")
			return
		}
		p.ui.Publish(event.DeletePeer{Addr: addr})

	case message.KindBye:
		p.log.Info("relay closed the session")
		p.ui.Publish(event.Disconnect{})
		p.stop()
		return

	case message.KindHello:
		p.log.Debug("relay acknowledged hello")

	case message.KindPing:
		p.log.Debug("received ping")

	default:
		p.log.With("tag", msg.Tag, "size", len(data)).Warn("received message of unknown kind")
	}

	p.ui.Publish(event.Connect{})
}

func (p *ReceivePipeline) pollInbox() {
	for _, e := range p.inbox.Drain() {
		switch e.(type) {
		case event.ToggleDeafen:
			p.deafened = !p.deafened
			p.log.With("deafened", p.deafened).Debug("deafen toggled")
		case event.Exit:
			p.send(message.KindBye, nil)
			p.ui.Publish(event.Disconnect{})
			p.stop()
			return
		default:
			p.log.With("event", e.String()).Debug("receive pipeline ignores event")
		}
	}
}

func (p *ReceivePipeline) stop() {
	p.err = ErrClosed
	p.cancel()
}

// send is best effort: a failed control datagram is logged and forgotten.
func (p *ReceivePipeline) send(kind message.Kind, payload []byte) {
	size := message.Put(p.buffer[:], kind, payload)
	if err := p.conn.Send(p.buffer[:size]); err != nil {
		p.log.With("kind", kind.String(), "err", err.Error()).Warn("failed to send")
	}
}
