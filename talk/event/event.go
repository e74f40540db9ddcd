// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package event carries control events between the voice pipelines and the presentation layer.
// Events are values; publishing one hands it over to the consumer.
package event

import (
	"net/netip"
	"strconv"
)

// Event is one of the control events defined in this package.
type Event interface {
	String() string
	event()
}

type (
	// Connect is published by the receive pipeline after every processed datagram.
	Connect struct{}

	// Disconnect is published when the session stops talking to the relay.
	Disconnect struct{}

	// ToggleMute asks the send pipeline to flip its mute flag.
	ToggleMute struct{}

	// ToggleDeafen asks the receive pipeline to flip its deafen flag.
	ToggleDeafen struct{}

	// TransmitAudio reports whether the send pipeline is currently putting audio on the wire.
	TransmitAudio struct {
		On bool
	}

	// NewPeer reports a peer announced by the relay.
	NewPeer struct {
		Addr netip.AddrPort
	}

	// DeletePeer reports a peer that left or was evicted by the relay.
	DeletePeer struct {
		Addr netip.AddrPort
	}

	// CaptureFailed reports that the capture device failed and nothing more will be transmitted.
	CaptureFailed struct{}

	// Exit asks a pipeline to stop.
	Exit struct{}
)

func (Connect) event()       {}
func (Disconnect) event()    {}
func (ToggleMute) event()    {}
func (ToggleDeafen) event()  {}
func (TransmitAudio) event() {}
func (NewPeer) event()       {}
func (DeletePeer) event()    {}
func (CaptureFailed) event() {}
func (Exit) event()          {}

func (Connect) String() string         { return "connect" }
func (Disconnect) String() string      { return "disconnect" }
func (ToggleMute) String() string      { return "toggle-mute" }
func (ToggleDeafen) String() string    { return "toggle-deafen" }
func (e TransmitAudio) String() string { return "transmit-audio(" + strconv.FormatBool(e.On) + ")" }
func (e NewPeer) String() string       { return "new-peer(" + e.Addr.String() + ")" }
func (e DeletePeer) String() string    { return "delete-peer(" + e.Addr.String() + ")" }
func (CaptureFailed) String() string   { return "capture-failed" }
func (Exit) String() string            { return "exit" }
