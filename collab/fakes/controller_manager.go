// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/model"
)

// ControllerManager is a fake controller-manager plugin (§6.3). Controllers
// are registered up front with their joint sets; each controller's next
// dispatched part runs for a configurable simulated duration and yields a
// configurable terminal status, so tests can script timeouts and failures
// deterministically.
type ControllerManager struct {
	mu          sync.Mutex
	joints      map[string][]string
	active      map[string]bool
	defaultCtrl map[string]bool
	runFor      map[string]time.Duration
	yields      map[string]model.ExecutionStatus
	switchErr   error
	handleErr   map[string]error
	lastHandle  map[string]*controllerHandle
}

func NewControllerManager() *ControllerManager {
	return &ControllerManager{
		joints:      make(map[string][]string),
		active:      make(map[string]bool),
		defaultCtrl: make(map[string]bool),
		runFor:      make(map[string]time.Duration),
		yields:      make(map[string]model.ExecutionStatus),
		handleErr:   make(map[string]error),
		lastHandle:  make(map[string]*controllerHandle),
	}
}

// WasCanceled reports whether Cancel was observed on the most recently
// dispatched handle for name.
func (m *ControllerManager) WasCanceled(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.lastHandle[name]
	return ok && h.wasCanceled()
}

// AddController registers a controller actuating joints, initially active or
// not as given.
func (m *ControllerManager) AddController(name string, joints []string, active bool) *ControllerManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joints[name] = joints
	m.active[name] = active
	return m
}

// SetOutcome scripts every handle obtained for name from now on to run for d
// before reporting status, until SetOutcome is called again.
func (m *ControllerManager) SetOutcome(name string, d time.Duration, status model.ExecutionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runFor[name] = d
	m.yields[name] = status
}

// SetSwitchError forces the next SwitchControllers call to fail with err.
func (m *ControllerManager) SetSwitchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switchErr = err
}

// SetHandleError forces the next ControllerHandle(name) call to fail with err.
func (m *ControllerManager) SetHandleError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handleErr[name] = err
}

func (m *ControllerManager) ControllersList(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.joints))
	for n := range m.joints {
		names = append(names, n)
	}
	return names, nil
}

func (m *ControllerManager) ControllerJoints(ctx context.Context, name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.joints[name]
	if !ok {
		return nil, fmt.Errorf("fakes: unknown controller %q", name)
	}
	return j, nil
}

func (m *ControllerManager) ControllerState(ctx context.Context, name string) (active, isDefault bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[name], m.defaultCtrl[name], nil
}

func (m *ControllerManager) SwitchControllers(ctx context.Context, activate, deactivate []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.switchErr != nil {
		err := m.switchErr
		m.switchErr = nil
		return err
	}
	for _, c := range activate {
		m.active[c] = true
	}
	for _, c := range deactivate {
		m.active[c] = false
	}
	return nil
}

func (m *ControllerManager) ControllerHandle(ctx context.Context, name string) (collab.ControllerHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.handleErr[name]; ok && err != nil {
		delete(m.handleErr, name)
		return nil, err
	}
	runFor := m.runFor[name]
	yield := m.yields[name]
	if yield == model.Unknown {
		yield = model.Succeeded
	}
	h := newControllerHandle(name, runFor, yield)
	m.lastHandle[name] = h
	return h, nil
}

// controllerHandle simulates an in-flight part on one controller.
type controllerHandle struct {
	name string

	mu       sync.Mutex
	status   model.ExecutionStatus
	cancel   chan struct{}
	canceled bool
	done     chan struct{}
}

func newControllerHandle(name string, runFor time.Duration, yield model.ExecutionStatus) *controllerHandle {
	h := &controllerHandle{
		name:   name,
		status: model.Unknown,
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go func() {
		timer := time.NewTimer(runFor)
		defer timer.Stop()
		select {
		case <-timer.C:
			h.mu.Lock()
			h.status = yield
			h.mu.Unlock()
		case <-h.cancel:
			h.mu.Lock()
			h.status = model.Preempted
			h.mu.Unlock()
		}
		close(h.done)
	}()
	return h
}

func (h *controllerHandle) SendTrajectory(part model.RobotTrajectory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == model.Unknown {
		h.status = model.Running
	}
	return nil
}

func (h *controllerHandle) Cancel() {
	h.mu.Lock()
	if h.canceled {
		h.mu.Unlock()
		return
	}
	h.canceled = true
	h.mu.Unlock()
	close(h.cancel)
}

func (h *controllerHandle) WaitForExecution(ctx context.Context, timeout time.Duration) model.ExecutionStatus {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timeoutCh = t.C
	}
	select {
	case <-h.done:
	case <-ctx.Done():
	case <-timeoutCh:
	}
	return h.LastExecutionStatus()
}

func (h *controllerHandle) LastExecutionStatus() model.ExecutionStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *controllerHandle) wasCanceled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canceled
}
