// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package event

// Bus groups the independent one-directional inboxes of a client session.
type Bus struct {
	// Send is read by the send pipeline: ToggleMute, Exit.
	Send *Inbox

	// Receive is read by the receive pipeline: ToggleDeafen, Exit.
	Receive *Inbox

	// UI is read by the presentation layer: Connect, Disconnect, TransmitAudio, NewPeer, DeletePeer.
	UI *Inbox
}

func NewBus() *Bus {
	return &Bus{
		Send:    NewInbox(),
		Receive: NewInbox(),
		UI:      NewInbox(),
	}
}

// Exit asks both pipelines to stop.
func (b *Bus) Exit() {
	b.Send.Publish(Exit{})
	b.Receive.Publish(Exit{})
}

func (b *Bus) Close() {
	b.Send.Close()
	b.Receive.Close()
	b.UI.Close()
}
