// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package panicsafe launches goroutines that recover from panics instead of
// crashing the process, logging the recovered value and stack trace. A
// misbehaving controller plugin or collaborator implementation must not be
// able to take down a host process that embeds the trajectory execution
// manager.
package panicsafe

import (
	"runtime/debug"

	"github.com/nexus-robotics/trajexec/txlog"
)

var log = txlog.New("%s ", "panicsafe")

// Go runs fn in a new goroutine, recovering any panic raised within it and
// calling done (if non-nil) exactly once when fn returns or panics.
func Go(fn func(), done func()) {
	go func() {
		if done != nil {
			defer done()
		}
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("recovered panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
