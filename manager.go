// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package trajexec is the public façade (C9) of the trajectory execution
// manager: it wires the controller registry, selector, distributor,
// validator, sequential and continuous executors and the event bus adapter
// behind the operations push/execute/waitForExecution/pushAndExecute/
// stop/clear described in §4.9.
package trajexec

import (
	"context"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/distributor"
	"github.com/nexus-robotics/trajexec/eventbus"
	"github.com/nexus-robotics/trajexec/executor"
	"github.com/nexus-robotics/trajexec/model"
	"github.com/nexus-robotics/trajexec/registry"
	"github.com/nexus-robotics/trajexec/selector"
	"github.com/nexus-robotics/trajexec/txlog"
)

// Manager is the entry point applications embed. A zero-value Manager is
// not usable; construct one with New.
type Manager struct {
	registry   *registry.Registry
	sequential *executor.Sequential
	continuous *executor.Continuous
	bus        *eventbus.Adapter
	cfg        *model.Config
	logger     *txlog.Logger

	busCancel context.CancelFunc
}

// New constructs a Manager from its five external collaborators (§6) and a
// Config. Per-controller scaling/margin overrides are read once from
// params, falling back to whatever cfg already carries.
func New(ctx context.Context, mgr collab.ControllerManager, rm collab.RobotModel, sm collab.StateMonitor, topic collab.EventTopic, params collab.ParamSource, cfg *model.Config) (*Manager, error) {
	if cfg == nil {
		cfg = model.NewConfig()
	}

	reg := registry.New(mgr)
	if err := reg.Reload(ctx); err != nil {
		return nil, err
	}
	applyParamOverrides(cfg, reg, params)

	deps := executor.Deps{Registry: reg, Manager: mgr, RobotM: rm, State: sm, Config: cfg}
	m := &Manager{
		registry:   reg,
		sequential: executor.New(deps),
		continuous: executor.NewContinuous(deps),
		cfg:        cfg,
		logger:     txlog.New("%s ", "trajexec"),
	}
	m.continuous.Start()

	busCtx, cancel := context.WithCancel(ctx)
	m.busCancel = cancel
	m.bus = eventbus.New(topic, m)
	if err := m.bus.Start(busCtx); err != nil {
		m.logger.Errorf("failed starting event bus adapter: %v", err)
	}

	return m, nil
}

func applyParamOverrides(cfg *model.Config, reg *registry.Registry, params collab.ParamSource) {
	if params == nil {
		return
	}
	for _, info := range reg.Controllers() {
		if scale, ok := params.DurationScaling(info.Name); ok {
			cfg.SetControllerScaling(info.Name, scale)
		}
		if margin, ok := params.GoalDurationMargin(info.Name); ok {
			cfg.SetControllerMargin(info.Name, margin)
		}
	}
}

// Config returns the manager's configuration for in-place mutation via its
// setters.
func (m *Manager) Config() *model.Config {
	return m.cfg
}

// Push configures a new context via the selector and distributor and
// appends it to the sequential queue. Fails if traj has no joints, if no
// cover exists, if distribution leaves joints unassigned, or if the
// executor is past IDLE.
func (m *Manager) Push(ctx context.Context, traj model.RobotTrajectory, controllers []string) error {
	if m.sequential.IsRunning() {
		return &model.PreconditionError{Reason: "cannot push while executing"}
	}
	ctxt, err := m.configureContext(ctx, traj, controllers)
	if err != nil {
		return err
	}
	return m.sequential.Push(ctxt)
}

// Execute starts the sequential executor on a worker goroutine and returns
// immediately.
func (m *Manager) Execute(callback func(model.ExecutionStatus), partCallback func(int), autoClear bool) error {
	return m.sequential.Execute(callback, partCallback, autoClear)
}

// ExecuteAndWait runs Execute then WaitForExecution.
func (m *Manager) ExecuteAndWait(autoClear bool) (model.ExecutionStatus, error) {
	if err := m.sequential.Execute(nil, nil, autoClear); err != nil {
		return model.Unknown, err
	}
	return m.WaitForExecution(), nil
}

// WaitForExecution blocks until the sequential executor is IDLE, returning
// its last status. As documented in §4.6 point 5, calling this while the
// continuous executor is active stops it first.
func (m *Manager) WaitForExecution() model.ExecutionStatus {
	m.continuous.Stop()
	return m.sequential.WaitForExecution()
}

// PushAndExecute configures a context exactly like Push but enqueues it on
// the continuous executor instead, waking it immediately.
func (m *Manager) PushAndExecute(ctx context.Context, traj model.RobotTrajectory, controllers []string) error {
	ctxt, err := m.configureContext(ctx, traj, controllers)
	if err != nil {
		return err
	}
	m.continuous.Push(ctxt)
	return nil
}

// PushAndExecuteJointState normalises a single joint-position target into a
// one-waypoint trajectory at t=0 and behaves like PushAndExecute.
func (m *Manager) PushAndExecuteJointState(ctx context.Context, positions map[string]float64, controllers []string) error {
	names := make([]string, 0, len(positions))
	values := make([]float64, 0, len(positions))
	for name, pos := range positions {
		names = append(names, name)
		values = append(values, pos)
	}
	traj := model.RobotTrajectory{
		JointTrajectory: model.JointTrajectory{
			JointNames: names,
			Points:     []model.JointTrajectoryPoint{{Positions: values, TimeFromStart: 0}},
		},
	}
	return m.PushAndExecute(ctx, traj, controllers)
}

// StopExecution cancels whichever executor is currently active. Never
// returns an error: cancellation is best-effort by design (§5). Per §4.8,
// the event bus adapter calls this with autoClear=true. autoClear=true
// clears the sequential queue even if Execute was started with
// autoClear=false; autoClear=false does not keep a queue that Execute was
// told to auto-clear, since the executor clears it when the batch ends.
func (m *Manager) StopExecution(autoClear bool) {
	if m.sequential.IsRunning() {
		m.sequential.Stop()
	}
	if autoClear {
		_ = m.sequential.Clear()
	}
	m.continuous.Stop()
}

// Clear deletes the sequential queue. Legal only when IDLE.
func (m *Manager) Clear() error {
	return m.sequential.Clear()
}

// CurrentExpectedTrajectoryIndex returns (ctx_index, waypoint_index) for the
// sequential executor, or (-1, -1) if idle or if only the continuous
// executor is active.
func (m *Manager) CurrentExpectedTrajectoryIndex() (int, int) {
	return m.sequential.CurrentExpectedTrajectoryIndex()
}

// Status returns a read-only observability snapshot of the sequential
// executor (§2's "observable status").
func (m *Manager) Status() (currentContextIndex int, lastStatus model.ExecutionStatus) {
	return m.sequential.Status()
}

// ContinuousStatus returns the status of the most recently completed (or
// in-flight) push-and-execute context.
func (m *Manager) ContinuousStatus() model.ExecutionStatus {
	return m.continuous.Status()
}

// Close stops both executors and joins their worker goroutines. Go has no
// destructors, so embedding applications must call this explicitly during
// shutdown (§5's "destructor calls stopExecution(true) and joins both
// worker threads").
func (m *Manager) Close() {
	if m.busCancel != nil {
		m.busCancel()
	}
	m.sequential.Stop()
	m.continuous.Shutdown()
}

// configureContext runs C2 (selection) then C3 (distribution) on traj,
// restricted to availableControllers if non-empty.
func (m *Manager) configureContext(ctx context.Context, traj model.RobotTrajectory, availableControllers []string) (*model.TrajectoryContext, error) {
	if traj.Empty() {
		return nil, &model.ConfigurationError{Reason: "trajectory has no joints"}
	}

	if err := m.registry.RefreshIfOlderThan(ctx, registry.DefaultMaxAge); err != nil {
		m.logger.Errorf("registry refresh failed: %v", err)
	}

	available := m.registry.Controllers()
	if len(availableControllers) > 0 {
		allowed := make(map[string]struct{}, len(availableControllers))
		for _, n := range availableControllers {
			allowed[n] = struct{}{}
		}
		filtered := available[:0:0]
		for _, info := range available {
			if _, ok := allowed[info.Name]; ok {
				filtered = append(filtered, info)
			}
		}
		available = filtered
	}

	selected, err := selector.Select(available, traj.ActuatedJoints())
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.ControllerInfo, len(available))
	for _, info := range available {
		byName[info.Name] = info
	}
	infos := make([]*model.ControllerInfo, len(selected))
	for i, name := range selected {
		infos[i] = byName[name]
	}

	parts, err := distributor.Split(traj, infos)
	if err != nil {
		return nil, err
	}

	return model.NewTrajectoryContext(traj, selected, parts)
}
