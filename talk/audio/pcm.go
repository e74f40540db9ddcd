// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package audio

import (
	"encoding/binary"
	"fmt"
)

// DecodeSamples converts interleaved little-endian 16-bit PCM into samples.
func DecodeSamples(data []byte) ([]int16, error) {
	return AppendSamples(nil, data)
}

// AppendSamples decodes data like DecodeSamples and appends the result to dst.
func AppendSamples(dst []int16, data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return dst, fmt.Errorf("%w: odd byte count %d", ErrFrameSize, len(data))
	}

	for i := 0; i+1 < len(data); i += 2 {
		dst = append(dst, int16(binary.LittleEndian.Uint16(data[i:i+2])))
	}

	return dst, nil
}

// EncodeSamples converts samples into interleaved little-endian 16-bit PCM.
func EncodeSamples(samples []int16) []byte {
	return AppendPCM(make([]byte, 0, len(samples)*2), samples)
}

// AppendPCM encodes samples like EncodeSamples and appends the result to dst.
func AppendPCM(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}
