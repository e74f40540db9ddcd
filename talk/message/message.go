// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

import (
	"fmt"
	"net/netip"
	"strings"
)

const (
	// MaxPayloadSize is the largest payload a datagram carries: one frame of raw PCM,
	// which bounds any encoded frame as well.
	MaxPayloadSize = 3840

	// MaxMessageSize is MaxPayloadSize plus the kind tag. Receive buffers must be at least this large.
	MaxMessageSize = MaxPayloadSize + 1
)

// Message is a decoded datagram. There is no length field: a message is always exactly one datagram.
type Message struct {
	Kind Kind

	// Tag is the raw first byte of the datagram. It differs from Kind only for unknown messages.
	Tag byte

	// Payload aliases the decoded buffer. Copy it if it must outlive the buffer.
	Payload []byte
}

// Encode returns a new datagram made of the kind tag followed by the payload.
func Encode(kind Kind, payload []byte) []byte {
	buf := make([]byte, 1+len(payload))
	Put(buf, kind, payload)
	return buf
}

// Put writes the datagram into buf and returns its size.
// It panics if buf has no room for 1+len(payload) bytes.
func Put(buf []byte, kind Kind, payload []byte) int {
	if len(buf) < 1+len(payload) {
		panic(fmt.Sprintf("message: buffer of %d bytes is too small for a %s with %d bytes of payload",
			len(buf), kind, len(payload)))
	}

	buf[0] = byte(kind)
	return 1 + copy(buf[1:], payload)
}

// Decode parses a datagram. It never fails: empty datagrams and unrecognized tags yield KindUnknown.
func Decode(data []byte) Message {
	if len(data) == 0 {
		return Message{Kind: KindUnknown, Payload: data}
	}

	tag := data[0]
	kind := Kind(tag)
	if !kind.Known() {
		kind = KindUnknown
	}

	return Message{
		Kind:    kind,
		Tag:     tag,
		Payload: data[1:],
	}
}

// Text returns the payload as UTF-8 text. Invalid sequences are replaced with U+FFFD.
func (m Message) Text() string {
	return strings.ToValidUTF8(string(m.Payload), "�")
}

// Addr parses the payload of a NewClient or DeleteClient message as a peer address.
func (m Message) Addr() (netip.AddrPort, error) {
	addr, err := netip.ParseAddrPort(m.Text())
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("message: invalid peer address in %s: %w", m.Kind, err)
	}

	return addr, nil
}

func (m Message) String() string {
	if m.Kind == KindUnknown {
		return fmt.Sprintf("unknown(%d) %d bytes", m.Tag, len(m.Payload))
	}
	return fmt.Sprintf("%s %d bytes", m.Kind, len(m.Payload))
}
