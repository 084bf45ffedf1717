// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControllerInfoLessOrdersBySizeThenName(t *testing.T) {
	small := NewControllerInfo("b_controller", []string{"j1"})
	bigA := NewControllerInfo("a_controller", []string{"j1", "j2"})
	bigB := NewControllerInfo("b_controller", []string{"j1", "j2"})

	assert.True(t, small.Less(bigA))
	assert.True(t, small.Less(bigB))
	assert.True(t, bigA.Less(bigB))
	assert.False(t, bigB.Less(bigA))
}

func TestControllerInfoOverlaps(t *testing.T) {
	a := NewControllerInfo("a", []string{"j1", "j2"})
	b := NewControllerInfo("b", []string{"j2", "j3"})
	c := NewControllerInfo("c", []string{"j4"})

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c))
	assert.False(t, a.Overlaps(a))
}

func TestControllerInfoCovers(t *testing.T) {
	a := NewControllerInfo("a", []string{"j1", "j2", "j3"})
	assert.True(t, a.Covers(map[string]struct{}{"j1": {}, "j2": {}}))
	assert.False(t, a.Covers(map[string]struct{}{"j1": {}, "j9": {}}))
}
