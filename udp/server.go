// Copyright (c) 2023, 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package udp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

var _ = interface {
	Listen(ctx context.Context, addr *net.UDPAddr, processFn func(data []byte, addr net.UDPAddr) []byte) error
	Send(data []byte, addr net.UDPAddr) error
	Ready() <-chan struct{}
	LocalAddr() *net.UDPAddr
}((*Server)(nil))

const durBreakDefault = 5 * time.Second

var ErrNotConnected = errors.New("udp: not connected")

type Server struct {
	connection     *net.UDPConn
	connectingDone chan struct{}
	durBreak       time.Duration
	handleError    func(error)
	voiceQoS       bool
	mx             sync.Mutex
}

func NewServer() *Server {
	return &Server{
		connectingDone: make(chan struct{}),
		durBreak:       durBreakDefault,
		handleError: func(err error) {
			log.Println(err)
		},
	}
}

func (s *Server) SetHandleError(handleError func(error)) {
	if handleError == nil {
		s.handleError = func(err error) {
			log.Println(err)
		}
		return
	}

	s.handleError = handleError
}

func (s *Server) SetBreakPeriod(durBreak time.Duration) {
	if durBreak <= 0 {
		s.durBreak = durBreakDefault
		return
	}

	s.durBreak = durBreak
}

// SetVoiceQoS makes the server mark outgoing datagrams for expedited forwarding.
func (s *Server) SetVoiceQoS(enabled bool) {
	s.voiceQoS = enabled
}

// Ready is closed once Listen has bound the socket, or has failed to.
func (s *Server) Ready() <-chan struct{} {
	return s.connectingDone
}

// LocalAddr returns the bound address, or nil if the server is not listening.
func (s *Server) LocalAddr() *net.UDPAddr {
	connection := s.getConnection()
	if connection == nil {
		return nil
	}

	addr, _ := connection.LocalAddr().(*net.UDPAddr)
	return addr
}

// Listen binds addr and calls processFn for every received datagram, one at a time, on the calling goroutine.
// A non-nil result of processFn is sent back to the sender. The data slice is reused between calls.
// Listen returns when ctx is done, within one break period.
func (s *Server) Listen(ctx context.Context, addr *net.UDPAddr, processFn func(data []byte, addr net.UDPAddr) []byte) (err error) {
	connection, err := net.ListenUDP("udp", addr)
	if err != nil {
		close(s.connectingDone)
		return fmt.Errorf("udp server: failed to listen: %w", FailedToStartError{err})
	}

	if s.voiceQoS {
		if errQoS := SetVoiceQoS(connection); errQoS != nil {
			s.handleError(errQoS)
		}
	}

	s.mx.Lock()
	s.connection = connection
	s.mx.Unlock()

	close(s.connectingDone)

	defer func() {
		s.mx.Lock()
		s.connection = nil
		s.mx.Unlock()

		errClose := connection.Close()
		if errClose != nil {
			errClose = fmt.Errorf("udp server: failed to close listener: %w", errClose)
			if err == nil {
				err = errClose
			}
		}
	}()

	if err := connection.SetReadDeadline(time.Now().Add(s.durBreak)); err != nil {
		return fmt.Errorf("udp server: failed to set read deadline: %w", err)
	}

	var buffer [bufferSize]byte

	for {
		n, clientAddr, err := connection.ReadFromUDP(buffer[:])

		if err := ctx.Err(); err != nil {
			return err
		}

		if errTimeout, ok := err.(net.Error); ok && errTimeout.Timeout() {
			if err := connection.SetReadDeadline(time.Now().Add(s.durBreak)); err != nil {
				return fmt.Errorf("udp server: failed to set read deadline: %w", err)
			}

			continue
		}
		if err != nil {
			s.handleError(fmt.Errorf("udp server: failed to read: %w", err))
			continue
		}

		data := buffer[:n]
		response := processFn(data, *clientAddr)
		if response == nil {
			continue
		}

		if _, err := connection.WriteToUDP(response, clientAddr); err != nil {
			s.handleError(fmt.Errorf("udp server: failed to respond to %s: %w", clientAddr.String(), err))
			continue
		}
	}
}

// Send writes one datagram to addr. It is safe to call from processFn and from other goroutines.
func (s *Server) Send(data []byte, addr net.UDPAddr) error {
	connection := s.getConnection()
	if connection == nil {
		return ErrNotConnected
	}

	if _, err := connection.WriteToUDP(data, &addr); err != nil {
		return fmt.Errorf("udp server: failed to send message to %s: %w", addr.String(), err)
	}

	return nil
}

func (s *Server) getConnection() *net.UDPConn {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.connection
}

type FailedToStartError struct {
	inner error
}

func (e FailedToStartError) Error() string { return e.inner.Error() }
func (e FailedToStartError) Unwrap() error { return e.inner }
