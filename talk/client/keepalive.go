// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kropatz/kop-audio/talk/message"
)

// DefaultKeepAlive is well below the relay's peer timeout, so that a client that only listens stays registered.
const DefaultKeepAlive = 30 * time.Second

type keepAliveService struct {
	conn   Sender
	period time.Duration
	log    *slog.Logger
}

func (s keepAliveService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	ping := message.Encode(message.KindPing, nil)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := s.conn.Send(ping); err != nil {
				s.log.With("err", err.Error()).Debug("failed to send ping")
			}
		}
	}
}
