// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Kropatz/kop-audio/talk/event"
)

const help = "keys: m+enter mute, d+enter deafen, q+enter quit"

// Console prints a status line whenever the session state changes and reads
// single-letter commands, one per line.
type Console struct {
	bus   *event.Bus
	in    io.Reader
	out   io.Writer
	state State
	log   *slog.Logger
}

func NewConsole(bus *event.Bus, in io.Reader, out io.Writer, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}

	return &Console{
		bus: bus,
		in:  in,
		out: out,
		log: log,
	}
}

func (c *Console) State() State {
	return c.state
}

// Run returns nil after the user quits, or ctx.Err() when ctx is done.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(c.out, help)
	c.render()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.bus.UI.C():
			changed := false
			for _, e := range c.bus.UI.Drain() {
				changed = c.state.Apply(e) || changed
			}
			if changed {
				c.render()
			}

		case line, ok := <-lines:
			if !ok {
				// input closed, keep showing state until the session ends
				lines = nil
				continue
			}

			if c.handleKey(line) {
				return nil
			}
		}
	}
}

// handleKey publishes the event bound to the key and reports whether the user quit.
func (c *Console) handleKey(line string) bool {
	var e event.Event

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "m":
		e = event.ToggleMute{}
		c.bus.Send.Publish(e)
	case "d":
		e = event.ToggleDeafen{}
		c.bus.Receive.Publish(e)
	case "q":
		e = event.Exit{}
		c.bus.Exit()
	case "":
		return false
	default:
		fmt.Fprintln(c.out, help)
		return false
	}

	c.log.With("event", e.String()).Debug("user input")

	if c.state.Apply(e) {
		c.render()
	}

	return c.state.Exit
}

func (c *Console) render() {
	fmt.Fprintln(c.out, c.state.String())
}
