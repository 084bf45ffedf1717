// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-robotics/trajexec/collab/fakes"
)

func TestReloadPopulatesControllersInOrder(t *testing.T) {
	mgr := fakes.NewControllerManager().
		AddController("arm", []string{"j1", "j2"}, false).
		AddController("wrist", []string{"j3"}, true)

	reg := New(mgr)
	require.NoError(t, reg.Reload(context.Background()))

	controllers := reg.Controllers()
	require.Len(t, controllers, 2)
	assert.Equal(t, "wrist", controllers[0].Name) // smaller joint set sorts first
	assert.Equal(t, "arm", controllers[1].Name)
	assert.True(t, reg.IsActive("wrist"))
	assert.False(t, reg.IsActive("arm"))
}

func TestReloadComputesOverlapGraph(t *testing.T) {
	mgr := fakes.NewControllerManager().
		AddController("arm", []string{"j1", "j2"}, false).
		AddController("wrist", []string{"j2", "j3"}, false).
		AddController("gripper", []string{"j4"}, false)

	reg := New(mgr)
	require.NoError(t, reg.Reload(context.Background()))

	arm, ok := reg.Controller("arm")
	require.True(t, ok)
	_, overlaps := arm.Overlapping["wrist"]
	assert.True(t, overlaps)
	_, overlapsGripper := arm.Overlapping["gripper"]
	assert.False(t, overlapsGripper)
}

func TestEnsureActiveWithManageControllersFalseRequiresAlreadyActive(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, false)
	reg := New(mgr)
	require.NoError(t, reg.Reload(context.Background()))

	err := reg.EnsureActive(context.Background(), []string{"arm"}, false)
	assert.Error(t, err)

	mgr2 := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	reg2 := New(mgr2)
	require.NoError(t, reg2.Reload(context.Background()))
	assert.NoError(t, reg2.EnsureActive(context.Background(), []string{"arm"}, false))
}

func TestEnsureActiveDeactivatesOverlappingController(t *testing.T) {
	mgr := fakes.NewControllerManager().
		AddController("arm_position", []string{"j1", "j2"}, true).
		AddController("arm_velocity", []string{"j1", "j2"}, false)
	reg := New(mgr)
	require.NoError(t, reg.Reload(context.Background()))

	require.NoError(t, reg.EnsureActive(context.Background(), []string{"arm_velocity"}, true))
	assert.True(t, reg.IsActive("arm_velocity"))
	assert.False(t, reg.IsActive("arm_position"))
}

func TestEnsureActiveNoOpWhenAlreadyCorrect(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	reg := New(mgr)
	require.NoError(t, reg.Reload(context.Background()))
	assert.NoError(t, reg.EnsureActive(context.Background(), []string{"arm"}, true))
}

func TestRefreshIfOlderThanSkipsWhenFresh(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	reg := New(mgr)
	require.NoError(t, reg.Reload(context.Background()))
	require.NoError(t, reg.RefreshIfOlderThan(context.Background(), DefaultMaxAge))
	assert.Len(t, reg.Controllers(), 1)
}
