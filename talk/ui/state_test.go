// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package ui

import (
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Kropatz/kop-audio/talk/event"
)

var (
	addr1 = netip.MustParseAddrPort("10.0.0.1:4000")
	addr2 = netip.MustParseAddrPort("10.0.0.2:4000")
)

var cmpAddr = cmp.Comparer(func(a, b netip.AddrPort) bool { return a == b })

func TestStateApply(t *testing.T) {
	tests := []struct {
		name      string
		events    []event.Event
		exp       State
		expChange []bool
	}{
		{
			name:      "connect",
			events:    []event.Event{event.Connect{}, event.Connect{}},
			exp:       State{Connected: true},
			expChange: []bool{true, false},
		},
		{
			name:      "disconnect-stops-sending",
			events:    []event.Event{event.Connect{}, event.TransmitAudio{On: true}, event.Disconnect{}},
			exp:       State{},
			expChange: []bool{true, true, true},
		},
		{
			name:      "toggles",
			events:    []event.Event{event.ToggleMute{}, event.ToggleDeafen{}, event.ToggleMute{}},
			exp:       State{Deafened: true},
			expChange: []bool{true, true, true},
		},
		{
			name: "peers",
			events: []event.Event{
				event.NewPeer{Addr: addr2},
				event.NewPeer{Addr: addr1},
				event.NewPeer{Addr: addr2},
				event.DeletePeer{Addr: addr2},
				event.DeletePeer{Addr: addr2},
			},
			exp:       State{Peers: []netip.AddrPort{addr1}},
			expChange: []bool{true, true, false, true, false},
		},
		{
			name:      "capture-failed",
			events:    []event.Event{event.TransmitAudio{On: true}, event.CaptureFailed{}, event.CaptureFailed{}},
			exp:       State{CaptureFailed: true},
			expChange: []bool{true, true, false},
		},
		{
			name:      "exit",
			events:    []event.Event{event.Exit{}, event.Exit{}},
			exp:       State{Exit: true},
			expChange: []bool{true, false},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var s State
			changes := make([]bool, len(test.events))
			for i, e := range test.events {
				changes[i] = s.Apply(e)
			}

			if diff := cmp.Diff(test.exp, s, cmpAddr); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(test.expChange, changes); diff != "" {
				t.Errorf("changes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	s := State{Connected: true, Muted: true, Peers: []netip.AddrPort{addr1, addr2}}

	exp := "[connected] [       ] [muted] [        ] peers: 10.0.0.1:4000 10.0.0.2:4000"
	if got := s.String(); got != exp {
		t.Errorf("want=%q got=%q", exp, got)
	}

	failed := State{CaptureFailed: true}
	if got := failed.String(); got != "[         ] [       ] [     ] [        ] peers: none (capture failed, not transmitting)" {
		t.Errorf("unexpected failed state: %q", got)
	}

	if got := (&State{}).String(); got != "[         ] [       ] [     ] [        ] peers: none" {
		t.Errorf("unexpected empty state: %q", got)
	}
}
