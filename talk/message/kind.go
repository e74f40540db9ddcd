// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

// Kind is the one-byte tag placed at the start of every datagram.
type Kind byte

const (
	// KindUnknown is never sent. Decode returns it for empty datagrams and unrecognized tags.
	KindUnknown Kind = iota
	KindAudio
	KindPing
	KindHello
	KindBye
	KindNewClient
	KindDeleteClient
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindPing:
		return "ping"
	case KindHello:
		return "hello"
	case KindBye:
		return "bye"
	case KindNewClient:
		return "new-client"
	case KindDeleteClient:
		return "delete-client"
	}
	return "unknown"
}

// Known reports whether k is one of the kinds defined by the protocol.
func (k Kind) Known() bool {
	return k >= KindAudio && k <= KindDeleteClient
}
