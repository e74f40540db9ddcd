// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package audio

import (
	"bytes"
	"errors"
	"io"
	"math"
	"slices"
	"testing"

	"github.com/Kropatz/kop-audio/talk/message"
)

func TestFrameConstants(t *testing.T) {
	if want, got := 960, FrameSize; want != got {
		t.Errorf("frame size: want=%d got=%d", want, got)
	}
	if want, got := 3840, FrameBytes; want != got {
		t.Errorf("frame bytes: want=%d got=%d", want, got)
	}
	if FrameBytes > message.MaxPayloadSize {
		t.Errorf("a raw frame (%d bytes) does not fit a datagram payload (%d bytes)",
			FrameBytes, message.MaxPayloadSize)
	}
}

func TestDecodeSamples(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []int16
		wantErr bool
	}{
		{name: "empty", data: nil, want: nil},
		{name: "one", data: []byte{0x01, 0x00}, want: []int16{1}},
		{name: "negative", data: []byte{0xff, 0xff, 0x00, 0x80}, want: []int16{-1, math.MinInt16}},
		{name: "max", data: []byte{0xff, 0x7f}, want: []int16{math.MaxInt16}},
		{name: "odd", data: []byte{0x01, 0x00, 0x02}, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DecodeSamples(test.data)
			if test.wantErr {
				if !errors.Is(err, ErrFrameSize) {
					t.Errorf("expected ErrFrameSize, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err.Error())
			}
			if !slices.Equal(test.want, got) {
				t.Errorf("want=%v got=%v", test.want, got)
			}
		})
	}
}

func TestEncodeSamples(t *testing.T) {
	samples := []int16{0, 1, -1, math.MaxInt16, math.MinInt16, 12345}

	data := EncodeSamples(samples)
	if want, got := len(samples)*2, len(data); want != got {
		t.Fatalf("size: want=%d got=%d", want, got)
	}

	back, err := DecodeSamples(data)
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	if !slices.Equal(samples, back) {
		t.Errorf("want=%v got=%v", samples, back)
	}
}

func TestPCMCodec(t *testing.T) {
	codec := PCMCodec{}

	samples := make([]int16, FrameSamples)
	for i := range samples {
		samples[i] = int16(i - FrameSamples/2)
	}

	data, err := codec.Encode(samples)
	if err != nil {
		t.Fatalf("encode failed: %s", err.Error())
	}
	if want, got := FrameBytes, len(data); want != got {
		t.Errorf("encoded size: want=%d got=%d", want, got)
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %s", err.Error())
	}
	if !slices.Equal(samples, decoded) {
		t.Error("decoded samples differ")
	}

	if _, err := codec.Encode(samples[:10]); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize for a short frame, got %v", err)
	}
	if _, err := codec.Decode(data[:11]); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize for malformed data, got %v", err)
	}
}

func TestReaderCapture(t *testing.T) {
	stream := bytes.Repeat([]byte{1, 2, 3, 4}, FrameBytes/4*2)

	capture := NewReaderCapture(bytes.NewReader(stream))
	capture.SetPace(0)

	frame := make([]byte, FrameBytes)
	for i := 0; i < 2; i++ {
		if err := capture.Read(frame); err != nil {
			t.Fatalf("read %d failed: %s", i, err.Error())
		}
		if !bytes.Equal(stream[:FrameBytes], frame) {
			t.Errorf("frame %d differs", i)
		}
	}

	if err := capture.Read(frame); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF at the end of the stream, got %v", err)
	}

	if err := capture.Read(make([]byte, 10)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}
}

func TestWriterPlayback(t *testing.T) {
	var buf bytes.Buffer

	playback := NewWriterPlayback(&buf)
	if err := playback.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("write failed: %s", err.Error())
	}
	if err := playback.Write([]byte{5, 6}); err != nil {
		t.Fatalf("write failed: %s", err.Error())
	}

	if want, got := []byte{1, 2, 3, 4, 5, 6}, buf.Bytes(); !bytes.Equal(want, got) {
		t.Errorf("want=%v got=%v", want, got)
	}
}
