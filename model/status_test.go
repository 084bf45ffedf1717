// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateStatusAllSucceeded(t *testing.T) {
	assert.Equal(t, Succeeded, AggregateStatus([]ExecutionStatus{Succeeded, Succeeded}))
}

func TestAggregateStatusFirstFailureWins(t *testing.T) {
	assert.Equal(t, TimedOut, AggregateStatus([]ExecutionStatus{Succeeded, TimedOut, Aborted}))
}

func TestAggregateStatusEmpty(t *testing.T) {
	assert.Equal(t, Succeeded, AggregateStatus(nil))
}

func TestExecutionStatusTerminal(t *testing.T) {
	assert.False(t, Unknown.Terminal())
	assert.False(t, Running.Terminal())
	assert.True(t, Succeeded.Terminal())
	assert.True(t, Aborted.Terminal())
}
