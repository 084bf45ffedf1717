// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-robotics/trajexec/collab/fakes"
	"github.com/nexus-robotics/trajexec/model"
	"github.com/nexus-robotics/trajexec/registry"
)

func newTestDeps(t *testing.T, mgr *fakes.ControllerManager) (Deps, *registry.Registry) {
	t.Helper()
	reg := registry.New(mgr)
	require.NoError(t, reg.Reload(context.Background()))
	sm := fakes.NewStateMonitor()
	sm.Set("j1", 0, 0)
	sm.Set("j2", 0, 0)
	rm := fakes.NewRobotModel().AddJoint("j1", model.Revolute).AddJoint("j2", model.Revolute)
	cfg := model.NewConfig()
	return Deps{Registry: reg, Manager: mgr, RobotM: rm, State: sm, Config: cfg}, reg
}

func oneControllerContext(t *testing.T) *model.TrajectoryContext {
	t.Helper()
	source := model.RobotTrajectory{JointTrajectory: model.JointTrajectory{
		JointNames: []string{"j1"},
		Points:     []model.JointTrajectoryPoint{{Positions: []float64{0}}, {Positions: []float64{1}, TimeFromStart: 50 * time.Millisecond}},
	}}
	parts := []model.RobotTrajectory{source}
	ctxt, err := model.NewTrajectoryContext(source, []string{"arm"}, parts)
	require.NoError(t, err)
	return ctxt
}

func TestSequentialExecuteAndWaitSucceeds(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetOutcome("arm", 20*time.Millisecond, model.Succeeded)
	deps, _ := newTestDeps(t, mgr)

	s := New(deps)
	require.NoError(t, s.Push(oneControllerContext(t)))

	status, err := s.ExecuteAndWait(false)
	require.NoError(t, err)
	assert.Equal(t, model.Succeeded, status)
}

func TestSequentialIsIdleBeforeAndAfter(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetOutcome("arm", 10*time.Millisecond, model.Succeeded)
	deps, _ := newTestDeps(t, mgr)

	s := New(deps)
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Push(oneControllerContext(t)))
	_, err := s.ExecuteAndWait(true)
	require.NoError(t, err)
	assert.False(t, s.IsRunning())
	idx, _ := s.Status()
	assert.Equal(t, -1, idx)
}

func TestSequentialExecuteWhileRunningFails(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetOutcome("arm", 100*time.Millisecond, model.Succeeded)
	deps, _ := newTestDeps(t, mgr)

	s := New(deps)
	require.NoError(t, s.Push(oneControllerContext(t)))
	require.NoError(t, s.Execute(nil, nil, true))
	defer s.WaitForExecution()

	err := s.Execute(nil, nil, true)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSequentialStopPreemptsInFlightBatch(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetOutcome("arm", 2*time.Second, model.Succeeded)
	deps, _ := newTestDeps(t, mgr)

	s := New(deps)
	require.NoError(t, s.Push(oneControllerContext(t)))
	require.NoError(t, s.Execute(nil, nil, true))

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	idx, status := s.Status()
	assert.Equal(t, -1, idx)
	assert.Equal(t, model.Preempted, status)
}

func TestSequentialAbortsOnDispatchFailure(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetHandleError("arm", assert.AnError)
	deps, _ := newTestDeps(t, mgr)

	s := New(deps)
	require.NoError(t, s.Push(oneControllerContext(t)))
	status, err := s.ExecuteAndWait(true)
	require.NoError(t, err)
	assert.Equal(t, model.Aborted, status)
}

// TestSequentialDeadlineExceededTimesOut exercises §8 S3: a handle that
// outruns its scaled-expected-duration-plus-margin deadline is cancelled and
// the batch reports TimedOut.
func TestSequentialDeadlineExceededTimesOut(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetOutcome("arm", 2*time.Second, model.Succeeded)
	deps, _ := newTestDeps(t, mgr)
	deps.Config.SetAllowedExecutionDurationScaling(1.2)
	deps.Config.SetAllowedGoalDurationMargin(10 * time.Millisecond)

	s := New(deps)
	require.NoError(t, s.Push(oneControllerContext(t)))

	status, err := s.ExecuteAndWait(true)
	require.NoError(t, err)
	assert.Equal(t, model.TimedOut, status)
	assert.True(t, mgr.WasCanceled("arm"))
}

// TestSequentialZeroDurationTrajectoryDoesNotTimeOut guards against a
// degenerate deadline: a single-waypoint trajectory with TimeFromStart 0 and
// the default zero margin computes a zero deadline, which must be treated as
// "no deadline" rather than a timer that fires instantly.
func TestSequentialZeroDurationTrajectoryDoesNotTimeOut(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetOutcome("arm", 10*time.Millisecond, model.Succeeded)
	deps, _ := newTestDeps(t, mgr)

	source := model.RobotTrajectory{JointTrajectory: model.JointTrajectory{
		JointNames: []string{"j1"},
		Points:     []model.JointTrajectoryPoint{{Positions: []float64{0}}},
	}}
	ctxt, err := model.NewTrajectoryContext(source, []string{"arm"}, []model.RobotTrajectory{source})
	require.NoError(t, err)

	s := New(deps)
	require.NoError(t, s.Push(ctxt))

	status, err := s.ExecuteAndWait(true)
	require.NoError(t, err)
	assert.Equal(t, model.Succeeded, status)
}

func TestSequentialClearFailsWhileRunning(t *testing.T) {
	mgr := fakes.NewControllerManager().AddController("arm", []string{"j1"}, true)
	mgr.SetOutcome("arm", 200*time.Millisecond, model.Succeeded)
	deps, _ := newTestDeps(t, mgr)

	s := New(deps)
	require.NoError(t, s.Push(oneControllerContext(t)))
	require.NoError(t, s.Execute(nil, nil, true))
	defer s.Stop()

	assert.Error(t, s.Clear())
}
