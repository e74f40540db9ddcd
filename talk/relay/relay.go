// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package relay implements the voice chat server: a registry of peers keyed by their UDP address
// that fans audio out to everyone else and announces peers joining and leaving.
package relay

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"slices"
	"time"

	"github.com/Kropatz/kop-audio/talk/message"
	"github.com/Kropatz/kop-audio/talk/util"
)

const (
	// DefaultSweepEvery is the number of received datagrams between two liveness sweeps.
	DefaultSweepEvery = 100

	// DefaultPeerTimeout is the inactivity after which a sweep evicts a peer.
	DefaultPeerTimeout = 500 * time.Second
)

type Sender interface {
	Send(data []byte, addr net.UDPAddr) error
}

type Connection interface {
	Sender
	Listen(ctx context.Context, addr *net.UDPAddr, processFn func(data []byte, addr net.UDPAddr) []byte) error
}

// Relay owns the peer registry. All of its methods must be called from a single goroutine,
// which Start guarantees by handling every datagram inline in the receive loop.
type Relay struct {
	conn        Connection
	peers       map[netip.AddrPort]*peer
	received    uint64
	sweepEvery  uint64
	peerTimeout time.Duration
	now         func() time.Time
	metrics     *Metrics
	buffer      [message.MaxMessageSize]byte
	log         *slog.Logger
}

type peer struct {
	addr       netip.AddrPort
	lastActive time.Time
	announced  bool
}

func New(conn Connection, opts ...func(*Relay)) *Relay {
	r := &Relay{
		conn:        conn,
		peers:       make(map[netip.AddrPort]*peer),
		sweepEvery:  DefaultSweepEvery,
		peerTimeout: DefaultPeerTimeout,
		now:         time.Now,
		log:         slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var WithLogger = func(log *slog.Logger) func(*Relay) {
	return func(r *Relay) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSweepEvery sets the liveness sweep cadence in received datagrams. Zero disables the sweep.
var WithSweepEvery = func(n int) func(*Relay) {
	return func(r *Relay) {
		if n >= 0 {
			r.sweepEvery = uint64(n)
		}
	}
}

var WithPeerTimeout = func(timeout time.Duration) func(*Relay) {
	return func(r *Relay) {
		if timeout > 0 {
			r.peerTimeout = timeout
		}
	}
}

var WithMetrics = func(metrics *Metrics) func(*Relay) {
	return func(r *Relay) {
		r.metrics = metrics
	}
}

var WithClock = func(now func() time.Time) func(*Relay) {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

// Start listens on addr and relays datagrams until ctx is done.
// A bind failure is returned wrapped in udp.FailedToStartError.
func (r *Relay) Start(ctx context.Context, addr *net.UDPAddr) error {
	r.log.With("addr", addr.String()).Info("relay listening")

	return r.conn.Listen(ctx, addr, func(data []byte, addr net.UDPAddr) []byte {
		r.HandleDatagram(data, addrPort(addr))
		return nil
	})
}

// HandleDatagram processes one datagram received from addr.
func (r *Relay) HandleDatagram(data []byte, addr netip.AddrPort) {
	defer util.Recover(r.log)

	msg := message.Decode(data)
	r.metrics.received(msg.Kind)

	switch msg.Kind {
	case message.KindUnknown:
		r.log.With("addr", addr.String(), "tag", msg.Tag, "size", len(data)).
			Warn("received message of unknown kind")

	case message.KindBye:
		r.handleBye(addr)

	default:
		p := r.touch(addr)

		switch msg.Kind {
		case message.KindAudio:
			r.broadcast(data, addr)
			r.metrics.forward()
		case message.KindHello:
			r.handleHello(p, msg)
		case message.KindPing:
			r.log.With("addr", addr.String()).Debug("received ping")
		default:
			r.log.With("addr", addr.String(), "kind", msg.Kind.String()).
				Warn("ignoring server-only message sent by a client")
		}
	}

	r.received++
	if r.sweepEvery > 0 && r.received%r.sweepEvery == 0 {
		r.sweep()
	}
}

// Peers returns the addresses of all active peers, sorted.
func (r *Relay) Peers() []netip.AddrPort {
	addrs := make([]netip.AddrPort, 0, len(r.peers))
	for addr := range r.peers {
		addrs = append(addrs, addr)
	}

	slices.SortFunc(addrs, netip.AddrPort.Compare)

	return addrs
}

// touch returns the entry for addr, creating it if needed, and refreshes its activity time.
func (r *Relay) touch(addr netip.AddrPort) *peer {
	p, ok := r.peers[addr]
	if !ok {
		p = &peer{addr: addr}
		r.peers[addr] = p
		r.metrics.setPeers(len(r.peers))
		r.log.With("addr", addr.String()).Debug("peer registered")
	}

	p.lastActive = r.now()

	return p
}

func (r *Relay) handleHello(newcomer *peer, msg message.Message) {
	name := msg.Payload
	if len(name) > message.MaxPayloadSize {
		name = name[:message.MaxPayloadSize]
	}

	r.send(message.KindHello, name, newcomer.addr)

	if newcomer.announced {
		r.log.With("addr", newcomer.addr.String()).Debug("repeated hello")
		return
	}

	newcomer.announced = true

	r.log.With("addr", newcomer.addr.String(), "name", msg.Text()).Info("peer joined")

	newcomerText := []byte(newcomer.addr.String())

	for addr := range r.peers {
		if addr == newcomer.addr {
			continue
		}

		r.send(message.KindNewClient, []byte(addr.String()), newcomer.addr)
		r.send(message.KindNewClient, newcomerText, addr)
	}
}

func (r *Relay) handleBye(addr netip.AddrPort) {
	if _, ok := r.peers[addr]; !ok {
		r.log.With("addr", addr.String()).Debug("bye from unknown peer")
		return
	}

	r.log.With("addr", addr.String()).Info("peer left")

	r.remove(addr)
}

func (r *Relay) sweep() {
	now := r.now()

	for addr, p := range r.peers {
		if now.Sub(p.lastActive) < r.peerTimeout {
			continue
		}

		r.log.With("addr", addr.String(), "idle", now.Sub(p.lastActive).String()).Info("peer timed out")

		r.remove(addr)
		r.metrics.evicted()
	}
}

// remove deletes addr from the registry, says Bye to it and notifies the remaining peers.
// A peer that left and a peer that timed out are removed the same way.
func (r *Relay) remove(addr netip.AddrPort) {
	delete(r.peers, addr)
	r.metrics.setPeers(len(r.peers))

	r.send(message.KindBye, nil, addr)

	size := message.Put(r.buffer[:], message.KindDeleteClient, []byte(addr.String()))
	r.broadcast(r.buffer[:size], addr)
}

// broadcast sends data to every active peer except the one at from.
func (r *Relay) broadcast(data []byte, from netip.AddrPort) {
	for addr := range r.peers {
		if addr == from {
			continue
		}
		r.sendRaw(data, addr)
	}
}

func (r *Relay) send(kind message.Kind, payload []byte, addr netip.AddrPort) {
	size := message.Put(r.buffer[:], kind, payload)
	r.sendRaw(r.buffer[:size], addr)
}

func (r *Relay) sendRaw(data []byte, addr netip.AddrPort) {
	if err := r.conn.Send(data, *net.UDPAddrFromAddrPort(addr)); err != nil {
		r.metrics.sendFailed()
		r.log.With("addr", addr.String(), "err", err.Error()).Warn("failed to send")
	}
}

// addrPort converts a socket address to the registry key. IPv4 peers received on a dual-stack
// socket arrive as IPv4-mapped IPv6 addresses and are unmapped so that each peer has one key.
func addrPort(addr net.UDPAddr) netip.AddrPort {
	ap := addr.AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}
