// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package udp wraps UDP sockets with context-aware receive loops.
package udp

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// bufferSize covers the largest datagram the voice protocol sends, with room to spare.
const bufferSize = 4 << 10

// dscpEF is the DiffServ code point for expedited forwarding, the class used for voice.
const dscpEF = 46

// SetVoiceQoS marks datagrams sent through conn with DSCP EF. It succeeds if either
// the IPv4 TOS or the IPv6 traffic class could be set.
func SetVoiceQoS(conn *net.UDPConn) error {
	if conn == nil {
		return ErrNotConnected
	}

	tos := dscpEF << 2

	err4 := ipv4.NewConn(conn).SetTOS(tos)
	err6 := ipv6.NewConn(conn).SetTrafficClass(tos)
	if err4 != nil && err6 != nil {
		return fmt.Errorf("udp: failed to set voice qos (ipv4: %w, ipv6: %w)", err4, err6)
	}

	return nil
}

func isConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
