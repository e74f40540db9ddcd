// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package udp

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

var _ = interface {
	Connect() error
	Listen(ctx context.Context, processFn func(data []byte)) error
	Send(data []byte) error
	Close() error
}((*Client)(nil))

// Client is a UDP socket connected to a single remote address.
// Send may be called concurrently with Listen: every datagram is a single write.
type Client struct {
	serverAddr  net.UDPAddr
	localAddr   *net.UDPAddr
	connection  *net.UDPConn
	durBreak    time.Duration
	breakFn     func()
	handleError func(error)
	voiceQoS    bool
	setQoS      func(*net.UDPConn) error
	mx          sync.Mutex
}

func NewClientLocalAddr(serverAddr net.UDPAddr, localAddr *net.UDPAddr) *Client {
	return &Client{
		serverAddr: serverAddr,
		localAddr:  localAddr,
		durBreak:   durBreakDefault,
		handleError: func(err error) {
			log.Println(err)
		},
		setQoS: SetVoiceQoS,
	}
}

// SetHandleError sets the function that receives non-fatal errors, such as a failure to set the traffic class.
func (c *Client) SetHandleError(handleError func(error)) {
	if handleError == nil {
		c.handleError = func(err error) {
			log.Println(err)
		}
		return
	}

	c.handleError = handleError
}

func NewClient(serverAddr net.UDPAddr) *Client {
	return NewClientLocalAddr(serverAddr, nil)
}

func (c *Client) SetBreakPeriod(durBreak time.Duration) {
	if durBreak <= 0 {
		c.durBreak = durBreakDefault
		return
	}

	c.durBreak = durBreak
}

// SetBreakHandler sets a function that Listen calls whenever a break period passes without a datagram.
func (c *Client) SetBreakHandler(breakFn func()) {
	c.breakFn = breakFn
}

// SetVoiceQoS makes Connect mark outgoing datagrams for expedited forwarding.
func (c *Client) SetVoiceQoS(enabled bool) {
	c.voiceQoS = enabled
}

func (c *Client) Connect() error {
	connection, err := net.DialUDP("udp", c.localAddr, &c.serverAddr)
	if err != nil {
		return fmt.Errorf("udp client: failed to dial: %w", err)
	}

	if c.voiceQoS {
		// not fatal, not every platform allows changing the traffic class
		if err := c.setQoS(connection); err != nil {
			c.handleError(fmt.Errorf("udp client: %w", err))
		}
	}

	c.mx.Lock()
	c.connection = connection
	c.mx.Unlock()

	return nil
}

func (c *Client) LocalAddr() *net.UDPAddr {
	connection := c.getConnection()
	if connection == nil {
		return nil
	}

	addr, _ := connection.LocalAddr().(*net.UDPAddr)
	return addr
}

// Listen calls processFn for every datagram received from the remote address, until ctx is done.
// The data slice is reused between calls.
func (c *Client) Listen(ctx context.Context, processFn func(data []byte)) (err error) {
	connection := c.getConnection()
	if connection == nil {
		return ErrNotConnected
	}

	var buffer [bufferSize]byte

	err = connection.SetReadDeadline(time.Now().Add(c.durBreak))
	if err != nil {
		return fmt.Errorf("udp client: failed to set read deadline: %w", err)
	}

	for {
		var n int

		n, err = connection.Read(buffer[:])

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if errTimeout, ok := err.(net.Error); ok && errTimeout.Timeout() {
			if c.breakFn != nil {
				c.breakFn()
			}

			err = connection.SetReadDeadline(time.Now().Add(c.durBreak))
			if err != nil {
				return fmt.Errorf("udp client: failed to set read deadline: %w", err)
			}

			continue
		}

		if err != nil {
			// ICMP port unreachable surfaces as a read error on a connected socket; the relay may come back.
			if isConnRefused(err) {
				continue
			}
			return fmt.Errorf("udp client: failed to read udp message: %w", err)
		}

		processFn(buffer[:n])
	}
}

func (c *Client) Send(data []byte) error {
	connection := c.getConnection()
	if connection == nil {
		return ErrNotConnected
	}

	if _, err := connection.Write(data); err != nil {
		return fmt.Errorf("udp client: failed to send message: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	c.mx.Lock()
	connection := c.connection
	c.connection = nil
	c.mx.Unlock()

	if connection == nil {
		return nil
	}

	if err := connection.Close(); err != nil {
		return fmt.Errorf("udp client: failed to close connection: %w", err)
	}

	return nil
}

func (c *Client) getConnection() *net.UDPConn {
	c.mx.Lock()
	defer c.mx.Unlock()

	return c.connection
}
