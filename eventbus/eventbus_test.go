// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-robotics/trajexec/collab/fakes"
)

type fakeStopper struct {
	calls chan bool
}

func (f *fakeStopper) StopExecution(autoClear bool) {
	f.calls <- autoClear
}

func TestAdapterStopsExecutionOnStopEvent(t *testing.T) {
	topic := fakes.NewEventTopic()
	target := &fakeStopper{calls: make(chan bool, 1)}
	a := New(topic, target)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	topic.Publish(ExecutionEventTopic, StopEvent)

	select {
	case autoClear := <-target.calls:
		assert.True(t, autoClear)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for StopExecution to be called")
	}
}

func TestAdapterIgnoresUnrecognisedEvents(t *testing.T) {
	topic := fakes.NewEventTopic()
	target := &fakeStopper{calls: make(chan bool, 1)}
	a := New(topic, target)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	topic.Publish(ExecutionEventTopic, "unknown")

	select {
	case <-target.calls:
		t.Fatal("StopExecution should not be called for unrecognised events")
	case <-time.After(50 * time.Millisecond):
	}
}
