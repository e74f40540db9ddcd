// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package ui presents the state of a client session and turns user input into control events.
package ui

import (
	"net/netip"
	"slices"
	"strings"

	"github.com/Kropatz/kop-audio/talk/event"
)

// State is what the user sees. Muted, Deafened and Exit follow the events the UI itself emits,
// the rest follows the events published by the pipelines.
type State struct {
	Connected bool
	Sending   bool
	Muted     bool
	Deafened  bool
	Exit      bool
	Peers     []netip.AddrPort

	// CaptureFailed is set once the capture device failed. Nothing is transmitted after that.
	CaptureFailed bool
}

// Apply updates the state and reports whether it changed.
func (s *State) Apply(e event.Event) bool {
	switch e := e.(type) {
	case event.Connect:
		return set(&s.Connected, true)
	case event.Disconnect:
		changed := set(&s.Connected, false)
		return set(&s.Sending, false) || changed
	case event.TransmitAudio:
		return set(&s.Sending, e.On)
	case event.ToggleMute:
		s.Muted = !s.Muted
		return true
	case event.ToggleDeafen:
		s.Deafened = !s.Deafened
		return true
	case event.CaptureFailed:
		changed := set(&s.CaptureFailed, true)
		return set(&s.Sending, false) || changed
	case event.Exit:
		return set(&s.Exit, true)
	case event.NewPeer:
		idx, found := slices.BinarySearchFunc(s.Peers, e.Addr, netip.AddrPort.Compare)
		if found {
			return false
		}
		s.Peers = slices.Insert(s.Peers, idx, e.Addr)
		return true
	case event.DeletePeer:
		idx, found := slices.BinarySearchFunc(s.Peers, e.Addr, netip.AddrPort.Compare)
		if !found {
			return false
		}
		s.Peers = slices.Delete(s.Peers, idx, idx+1)
		return true
	}

	return false
}

func (s *State) String() string {
	var sb strings.Builder

	flag := func(on bool, name string) {
		if on {
			sb.WriteString("[" + name + "] ")
		} else {
			sb.WriteString("[" + strings.Repeat(" ", len(name)) + "] ")
		}
	}

	flag(s.Connected, "connected")
	flag(s.Sending, "sending")
	flag(s.Muted, "muted")
	flag(s.Deafened, "deafened")

	sb.WriteString("peers:")
	if len(s.Peers) == 0 {
		sb.WriteString(" none")
	}
	for _, addr := range s.Peers {
		sb.WriteString(" " + addr.String())
	}

	if s.CaptureFailed {
		sb.WriteString(" (capture failed, not transmitting)")
	}

	return sb.String()
}

func set(field *bool, value bool) bool {
	if *field == value {
		return false
	}
	*field = value
	return true
}
