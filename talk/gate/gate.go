// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package gate implements the voice activity gate applied to every captured frame before it is encoded.
package gate

import "math"

const (
	// DefaultThreshold is the RMS energy below which a frame is considered silent.
	DefaultThreshold = 200.0

	// DefaultHangover is the number of silent frames still transmitted after speech stops.
	DefaultHangover = 10
)

// RMS returns the root-mean-square energy of the samples. RMS of no samples is zero.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// IsSilent reports whether the RMS energy of the samples is below the threshold.
func IsSilent(samples []int16, threshold float64) bool {
	return len(samples) == 0 || RMS(samples) < threshold
}

// Gate decides per frame whether it should be transmitted.
// It keeps transmitting for a few frames after speech drops below the threshold,
// so the trailing edge of speech is not clipped.
// A Gate is not safe for concurrent use; it belongs to a single send pipeline.
type Gate struct {
	threshold float64
	limit     int
	hangover  int
}

func New(opts ...func(*Gate)) *Gate {
	g := &Gate{
		threshold: DefaultThreshold,
		limit:     DefaultHangover,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func WithThreshold(threshold float64) func(*Gate) {
	return func(g *Gate) {
		if threshold > 0 {
			g.threshold = threshold
		}
	}
}

func WithHangover(frames int) func(*Gate) {
	return func(g *Gate) {
		if frames >= 0 {
			g.limit = frames
		}
	}
}

// Pass evaluates one frame and reports whether it should be transmitted.
func (g *Gate) Pass(samples []int16) bool {
	if !IsSilent(samples, g.threshold) {
		g.hangover = g.limit
		return true
	}

	if g.hangover == 0 {
		return false
	}

	g.hangover--

	return true
}

// Reset drops any pending hangover, so the next silent frame is suppressed.
func (g *Gate) Reset() {
	g.hangover = 0
}

// Hangover returns the number of silent frames that would still be transmitted.
func (g *Gate) Hangover() int {
	return g.hangover
}
