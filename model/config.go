// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package model

import "time"

// Config holds the static values set via setters before Execute, per §3's
// Configuration attributes. A zero-value Config is not ready for use; call
// NewConfig to get the documented defaults.
type Config struct {
	manageControllers bool

	allowedExecutionDurationScaling float64
	allowedGoalDurationMargin       time.Duration
	controllerScaling               map[string]float64
	controllerMargin                map[string]time.Duration

	allowedStartTolerance float64

	waitForTrajectoryCompletion bool
	executionDurationMonitoring bool

	robotStopWait time.Duration
}

// NewConfig returns a Config with the documented defaults: duration scaling
// 1.1, no extra margin, a 0.01 rad start tolerance, monitoring enabled, and
// wait-for-trajectory-completion enabled with a 1s best-effort stop wait.
func NewConfig() *Config {
	return &Config{
		manageControllers:               true,
		allowedExecutionDurationScaling: 1.1,
		allowedGoalDurationMargin:       0,
		controllerScaling:               make(map[string]float64),
		controllerMargin:                make(map[string]time.Duration),
		allowedStartTolerance:           0.01,
		waitForTrajectoryCompletion:     true,
		executionDurationMonitoring:     true,
		robotStopWait:                   1 * time.Second,
	}
}

func (c *Config) SetManageControllers(manage bool) { c.manageControllers = manage }
func (c *Config) ManageControllers() bool          { return c.manageControllers }

func (c *Config) SetAllowedExecutionDurationScaling(scale float64) {
	c.allowedExecutionDurationScaling = scale
}

func (c *Config) SetAllowedGoalDurationMargin(margin time.Duration) {
	c.allowedGoalDurationMargin = margin
}

// SetControllerScaling overrides the duration scaling for one controller.
func (c *Config) SetControllerScaling(controller string, scale float64) {
	c.controllerScaling[controller] = scale
}

// SetControllerMargin overrides the goal duration margin for one controller.
func (c *Config) SetControllerMargin(controller string, margin time.Duration) {
	c.controllerMargin[controller] = margin
}

// ScalingFor resolves the duration scaling for controller, falling back to
// the global value when no per-controller override is set.
func (c *Config) ScalingFor(controller string) float64 {
	if v, ok := c.controllerScaling[controller]; ok {
		return v
	}
	return c.allowedExecutionDurationScaling
}

// MarginFor resolves the goal duration margin for controller, falling back
// to the global value when no per-controller override is set.
func (c *Config) MarginFor(controller string) time.Duration {
	if v, ok := c.controllerMargin[controller]; ok {
		return v
	}
	return c.allowedGoalDurationMargin
}

func (c *Config) SetAllowedStartTolerance(tolerance float64) { c.allowedStartTolerance = tolerance }
func (c *Config) AllowedStartTolerance() float64              { return c.allowedStartTolerance }

func (c *Config) SetWaitForTrajectoryCompletion(wait bool) { c.waitForTrajectoryCompletion = wait }
func (c *Config) WaitForTrajectoryCompletion() bool        { return c.waitForTrajectoryCompletion }

func (c *Config) SetExecutionDurationMonitoring(enabled bool) { c.executionDurationMonitoring = enabled }
func (c *Config) ExecutionDurationMonitoring() bool           { return c.executionDurationMonitoring }

func (c *Config) SetRobotStopWait(wait time.Duration) { c.robotStopWait = wait }
func (c *Config) RobotStopWait() time.Duration        { return c.robotStopWait }
