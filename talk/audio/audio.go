// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package audio defines the capabilities the voice pipelines consume: capture, playback and codec.
// Real devices and perceptual codecs live outside this module; the implementations here cover
// raw PCM streams, which is what recordings, tests and headless runs need.
package audio

import (
	"errors"
	"time"
)

const (
	SampleRate    = 48000
	Channels      = 2
	FrameDuration = 20 * time.Millisecond

	// FrameSize is the number of samples per channel in one frame.
	FrameSize = SampleRate / 1000 * int(FrameDuration/time.Millisecond)

	// FrameSamples is the number of interleaved samples in one frame.
	FrameSamples = FrameSize * Channels

	// FrameBytes is the size of one frame of signed 16-bit little-endian PCM.
	FrameBytes = FrameSamples * 2
)

var ErrFrameSize = errors.New("audio: invalid frame size")

// Capture produces PCM. Read fills frame with exactly one frame of interleaved s16le samples.
// Read blocks until a frame is available. An error is fatal for the capture stream.
type Capture interface {
	Read(frame []byte) error
}

// Playback consumes PCM. Write accepts one frame of interleaved s16le samples. It may block.
type Playback interface {
	Write(pcm []byte) error
}

// Codec compresses and decompresses single frames. Both directions may fail on malformed input.
type Codec interface {
	Encode(samples []int16) ([]byte, error)
	Decode(data []byte) ([]int16, error)
}
