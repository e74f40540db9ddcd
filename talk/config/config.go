// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

// Package config reads the settings of both the relay and the client from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// Server is the relay address a client connects to.
	Server string `env:"KOP_SERVER, default=localhost:1234"`

	// Listen is the address the relay binds.
	Listen string `env:"KOP_LISTEN, default=:1234"`

	LogLevel string `env:"KOP_LOG, default=info"`

	// LogFile receives the log in debug mode while the console UI owns the terminal.
	LogFile string `env:"KOP_LOG_FILE, default=kop-audio.log"`

	// Name is announced to the relay. Empty means a random name.
	Name string `env:"KOP_NAME"`

	KeepAlive   time.Duration `env:"KOP_KEEPALIVE, default=30s"`
	PeerTimeout time.Duration `env:"KOP_PEER_TIMEOUT, default=500s"`
	SweepEvery  int           `env:"KOP_SWEEP_EVERY, default=100"`

	// MetricsAddr is where the relay serves Prometheus metrics. Empty disables the endpoint.
	MetricsAddr string `env:"KOP_METRICS_ADDR"`

	VoiceQoS bool `env:"KOP_QOS, default=true"`

	// CaptureFile and PlaybackFile replace the audio devices with raw s16le 48 kHz stereo PCM files.
	CaptureFile  string `env:"KOP_CAPTURE_FILE"`
	PlaybackFile string `env:"KOP_PLAYBACK_FILE"`
}

// Load reads an optional .env file from the working directory and then the process environment.
// Variables already set in the environment take precedence over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SweepEvery < 0 {
		return fmt.Errorf("config: KOP_SWEEP_EVERY must not be negative: %d", c.SweepEvery)
	}
	if c.PeerTimeout <= 0 {
		return fmt.Errorf("config: KOP_PEER_TIMEOUT must be positive: %s", c.PeerTimeout)
	}
	if c.KeepAlive < 0 {
		return fmt.Errorf("config: KOP_KEEPALIVE must not be negative: %s", c.KeepAlive)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel accepts debug, info, warn and error, in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w.
func NewLogger(level string, w io.Writer) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
