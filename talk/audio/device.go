// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package audio

import (
	"fmt"
	"io"
	"time"
)

var (
	_ Capture  = (*ReaderCapture)(nil)
	_ Capture  = (*Silence)(nil)
	_ Playback = (*WriterPlayback)(nil)
	_ Playback = Discard{}
)

// ReaderCapture reads raw s16le stereo PCM from r, one frame per Read.
// Reads are paced to real time, like a capture device would deliver them.
// The end of the stream is a capture failure.
type ReaderCapture struct {
	r      io.Reader
	pace   time.Duration
	ticker *time.Ticker
}

func NewReaderCapture(r io.Reader) *ReaderCapture {
	return &ReaderCapture{r: r, pace: FrameDuration}
}

// SetPace changes the delay between frames. Zero or negative disables pacing.
func (c *ReaderCapture) SetPace(pace time.Duration) {
	c.pace = pace
}

func (c *ReaderCapture) Read(frame []byte) error {
	if len(frame) != FrameBytes {
		return fmt.Errorf("%w: capture buffer is %d bytes, want %d", ErrFrameSize, len(frame), FrameBytes)
	}

	if c.pace > 0 {
		if c.ticker == nil {
			c.ticker = time.NewTicker(c.pace)
		}
		<-c.ticker.C
	}

	if _, err := io.ReadFull(c.r, frame); err != nil {
		if c.ticker != nil {
			c.ticker.Stop()
			c.ticker = nil
		}
		return fmt.Errorf("audio capture: failed to read frame: %w", err)
	}

	return nil
}

// Silence is a capture that produces all-zero frames in real time.
type Silence struct {
	ticker *time.Ticker
}

func (s *Silence) Read(frame []byte) error {
	if s.ticker == nil {
		s.ticker = time.NewTicker(FrameDuration)
	}
	<-s.ticker.C

	clear(frame)

	return nil
}

// WriterPlayback writes raw PCM to w, e.g. into a recording that can be opened
// as signed 16-bit, 48 kHz, stereo raw audio.
type WriterPlayback struct {
	w io.Writer
}

func NewWriterPlayback(w io.Writer) *WriterPlayback {
	return &WriterPlayback{w: w}
}

func (p *WriterPlayback) Write(pcm []byte) error {
	if _, err := p.w.Write(pcm); err != nil {
		return fmt.Errorf("audio playback: failed to write frame: %w", err)
	}
	return nil
}

// Discard is a playback that drops everything.
type Discard struct{}

func (Discard) Write([]byte) error { return nil }
