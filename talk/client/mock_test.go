// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/Kropatz/kop-audio/talk/audio"
	"github.com/Kropatz/kop-audio/talk/event"
	"github.com/Kropatz/kop-audio/talk/message"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockConn records sent datagrams. Its Listen delivers the scripted datagrams in order;
// a nil entry stands for a read break without a datagram.
type mockConn struct {
	mx      sync.Mutex
	sent    [][]byte
	script  [][]byte
	breakFn func()
}

func (c *mockConn) Send(data []byte) error {
	c.mx.Lock()
	c.sent = append(c.sent, bytes.Clone(data))
	c.mx.Unlock()
	return nil
}

func (c *mockConn) SetBreakHandler(breakFn func()) {
	c.breakFn = breakFn
}

func (c *mockConn) Listen(ctx context.Context, processFn func([]byte)) error {
	for _, data := range c.script {
		if data == nil {
			c.breakFn()
		} else {
			processFn(data)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}

func (c *mockConn) kinds() []message.Kind {
	c.mx.Lock()
	defer c.mx.Unlock()

	kinds := make([]message.Kind, len(c.sent))
	for i, data := range c.sent {
		kinds[i] = message.Decode(data).Kind
	}

	return kinds
}

// frameCapture returns its frames in order, then io.EOF.
type frameCapture struct {
	frames [][]byte
	reads  int
}

func (c *frameCapture) Read(frame []byte) error {
	if c.reads >= len(c.frames) {
		return io.EOF
	}
	copy(frame, c.frames[c.reads])
	c.reads++
	return nil
}

type playbackRecorder struct {
	mx     sync.Mutex
	frames [][]byte
}

func (p *playbackRecorder) Write(pcm []byte) error {
	p.mx.Lock()
	p.frames = append(p.frames, bytes.Clone(pcm))
	p.mx.Unlock()
	return nil
}

func (p *playbackRecorder) count() int {
	p.mx.Lock()
	defer p.mx.Unlock()
	return len(p.frames)
}

var errCodec = errors.New("codec failure")

type failingCodec struct{}

func (failingCodec) Encode([]int16) ([]byte, error) { return nil, errCodec }
func (failingCodec) Decode([]byte) ([]int16, error) { return nil, errCodec }

func sineFrame(amplitude float64) []byte {
	samples := make([]int16, audio.FrameSamples)
	for i := range audio.FrameSize {
		v := int16(amplitude * math.Sin(2*math.Pi*440*float64(i)/audio.SampleRate))
		samples[2*i] = v
		samples[2*i+1] = v
	}
	return audio.EncodeSamples(samples)
}

func loudFrame() []byte   { return sineFrame(10000) }
func silentFrame() []byte { return make([]byte, audio.FrameBytes) }

func frames(frame []byte, n int) [][]byte {
	list := make([][]byte, n)
	for i := range list {
		list[i] = frame
	}
	return list
}

func eventStrings(events []event.Event) []string {
	list := make([]string, len(events))
	for i, e := range events {
		list[i] = e.String()
	}
	return list
}
