// Copyright (c) 2023-2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package util

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover must be deferred directly. It logs a recovered panic with its stack instead of crashing the process.
func Recover(log *slog.Logger) {
	if r := recover(); r != nil {
		message := fmt.Sprintf("panic:\n[%T] %v\n%s\n", r, r, debug.Stack())
		log.Error(message)
	}
}
