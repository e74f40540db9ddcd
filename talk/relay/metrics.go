// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Kropatz/kop-audio/talk/message"
)

const namespace = "kop_relay"

// Metrics holds the relay's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	datagrams *prometheus.CounterVec
	forwarded prometheus.Counter
	sendFails prometheus.Counter
	evictions prometheus.Counter
	peers     prometheus.Gauge
}

// NewMetrics creates the relay collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		datagrams: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_total",
			Help:      "Datagrams received by the relay, by message kind.",
		}, []string{"kind"}),
		forwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_forwarded_total",
			Help:      "Audio datagrams forwarded to peers.",
		}),
		sendFails: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Datagrams the relay failed to send.",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Peers removed by the liveness sweep.",
		}),
		peers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers",
			Help:      "Currently active peers.",
		}),
	}
}

func (m *Metrics) received(kind message.Kind) {
	if m == nil {
		return
	}
	m.datagrams.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) forward() {
	if m == nil {
		return
	}
	m.forwarded.Inc()
}

func (m *Metrics) sendFailed() {
	if m == nil {
		return
	}
	m.sendFails.Inc()
}

func (m *Metrics) evicted() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) setPeers(n int) {
	if m == nil {
		return
	}
	m.peers.Set(float64(n))
}
