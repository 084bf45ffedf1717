// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package eventbus implements the event bus adapter (C8): it subscribes to
// a named text topic and maps recognised messages to executor operations.
package eventbus

import (
	"context"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/panicsafe"
	"github.com/nexus-robotics/trajexec/txlog"
)

// ExecutionEventTopic is the single well-known topic name the core
// subscribes to (§6.4).
const ExecutionEventTopic = "trajexec.execution"

// StopEvent is the only recognised message; anything else is logged and
// ignored (extensibility hook, §4.8).
const StopEvent = "stop"

// Stopper is the subset of the façade the adapter can drive.
type Stopper interface {
	StopExecution(autoClear bool)
}

// Adapter subscribes to ExecutionEventTopic and invokes StopExecution on the
// given Stopper whenever a "stop" message arrives.
type Adapter struct {
	topic  collab.EventTopic
	target Stopper
	logger *txlog.Logger
}

// New creates an Adapter. Call Start to begin delivering events.
func New(topic collab.EventTopic, target Stopper) *Adapter {
	return &Adapter{topic: topic, target: target, logger: txlog.New("%s ", "eventbus")}
}

// Start subscribes to the topic and processes events until ctx is done.
func (a *Adapter) Start(ctx context.Context) error {
	events, err := a.topic.Subscribe(ctx, ExecutionEventTopic)
	if err != nil {
		return err
	}

	panicsafe.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-events:
				if !ok {
					return
				}
				a.handle(msg)
			}
		}
	}, nil)

	return nil
}

func (a *Adapter) handle(msg string) {
	switch msg {
	case StopEvent:
		a.logger.Printf("received %q event, stopping execution", msg)
		a.target.StopExecution(true)
	default:
		a.logger.Printf("ignoring unrecognised event %q", msg)
	}
}
