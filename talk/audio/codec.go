// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package audio

import "fmt"

var _ Codec = PCMCodec{}

// PCMCodec transmits frames uncompressed as s16le. A full frame is exactly MaxPayloadSize bytes,
// so it fits a single datagram.
type PCMCodec struct{}

func (PCMCodec) Encode(samples []int16) ([]byte, error) {
	if len(samples) != FrameSamples {
		return nil, fmt.Errorf("%w: encode got %d samples, want %d", ErrFrameSize, len(samples), FrameSamples)
	}
	return EncodeSamples(samples), nil
}

func (PCMCodec) Decode(data []byte) ([]int16, error) {
	if len(data) != FrameBytes {
		return nil, fmt.Errorf("%w: decode got %d bytes, want %d", ErrFrameSize, len(data), FrameBytes)
	}
	return DecodeSamples(data)
}
