// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package txlog provides conditional logging for the trajectory execution
// manager's components. Logging is opt-in: by default nothing is printed
// except Errorf output, so embedding applications are not forced to see
// per-waypoint chatter unless they ask for it.
package txlog

import (
	"fmt"
	"log"
)

var enabled = false

// Enable turns on conditional log output for every Logger in the process.
func Enable() {
	enabled = true
}

// Disable turns conditional log output back off.
func Disable() {
	enabled = false
}

// A Logger logs output in the manner of the standard logger but can be
// conditionally silenced. Errorf output is never silenced.
type Logger struct {
	logger *log.Logger
}

// New creates a Logger with the given prefix, e.g. New("%s ", "registry").
func New(prefixFormat string, prefixArgs ...any) *Logger {
	return &Logger{
		log.New(
			log.Default().Writer(),
			fmt.Sprintf(prefixFormat, prefixArgs...),
			log.Ldate|log.Ltime|log.Lmicroseconds|log.Lmsgprefix,
		),
	}
}

// Printf logs output conditionally (if Enable has been called).
func (l *Logger) Printf(format string, a ...any) {
	if !enabled {
		return
	}
	l.logger.Printf(format, a...)
}

// Errorf logs output unconditionally, in the manner of log.Printf.
func (l *Logger) Errorf(format string, a ...any) {
	l.logger.Printf(format, a...)
}
