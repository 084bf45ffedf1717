// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package collab defines the five external collaborators the trajectory
// execution manager depends on (§6): the robot model, the current-state
// monitor, the controller manager plugin, the event topic, and the
// parameter source. The core never implements these itself; it only
// consumes them. See collab/fakes for deterministic in-memory stand-ins used
// by tests and the demo binary.
package collab

import (
	"context"
	"time"

	"github.com/nexus-robotics/trajexec/model"
)

// RobotModel is the read-only kinematic description collaborator.
type RobotModel interface {
	// JointNames lists every joint known to the robot.
	JointNames() []string
	// JointType reports the wrap behavior of a joint.
	JointType(name string) model.JointType
	// JointGroup resolves a named set of joints, if one exists.
	JointGroup(name string) ([]string, bool)
}

// JointState is a single joint's observed position and velocity.
type JointState struct {
	Position float64
	Velocity float64
}

// StateMonitor reads live joint state.
type StateMonitor interface {
	// CurrentState returns the most recently observed position/velocity per
	// joint and whether that observation is still considered fresh.
	CurrentState(ctx context.Context) (joints map[string]JointState, fresh bool)
}

// ControllerHandle is an opaque, short-lived object obtained from the
// controller manager per dispatched part (§3).
type ControllerHandle interface {
	// SendTrajectory dispatches part to the controller this handle was
	// obtained for.
	SendTrajectory(part model.RobotTrajectory) error
	// Cancel requests the in-flight part be aborted. Best-effort.
	Cancel()
	// WaitForExecution blocks until the part reaches a terminal status or
	// timeout elapses, whichever comes first. A non-positive timeout means
	// wait indefinitely (bounded only by ctx).
	WaitForExecution(ctx context.Context, timeout time.Duration) model.ExecutionStatus
	// LastExecutionStatus returns the most recently observed status without
	// blocking.
	LastExecutionStatus() model.ExecutionStatus
}

// ControllerManager is the dynamically-loaded plugin collaborator (§6.3).
type ControllerManager interface {
	ControllersList(ctx context.Context) ([]string, error)
	ControllerJoints(ctx context.Context, name string) ([]string, error)
	ControllerState(ctx context.Context, name string) (active, isDefault bool, err error)
	SwitchControllers(ctx context.Context, activate, deactivate []string) error
	ControllerHandle(ctx context.Context, name string) (ControllerHandle, error)
}

// EventTopic is the string-valued broadcast channel collaborator (§6.4).
type EventTopic interface {
	// Subscribe returns a channel of textual events published on name. The
	// channel is closed when ctx is done.
	Subscribe(ctx context.Context, name string) (<-chan string, error)
}

// ParamSource is the opaque key/value collaborator (§6.5) providing
// per-controller overrides read once at construction.
type ParamSource interface {
	DurationScaling(controller string) (float64, bool)
	GoalDurationMargin(controller string) (time.Duration, bool)
}
