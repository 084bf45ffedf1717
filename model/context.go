// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"github.com/google/uuid"
)

// TrajectoryContext is the bound triple of selected controllers, distributed
// parts and originating request produced by push/pushAndExecute. It is owned
// exclusively by whichever executor holds its queue.
type TrajectoryContext struct {
	ID          uuid.UUID
	Controllers []string
	Parts       []RobotTrajectory
	Source      RobotTrajectory
}

// NewTrajectoryContext builds a context and immediately checks the
// §3 invariant: |controllers| == |parts|, and every joint of source appears
// in exactly one part.
func NewTrajectoryContext(source RobotTrajectory, controllers []string, parts []RobotTrajectory) (*TrajectoryContext, error) {
	ctxt := &TrajectoryContext{
		ID:          uuid.New(),
		Controllers: controllers,
		Parts:       parts,
		Source:      source,
	}
	if err := ctxt.Validate(); err != nil {
		return nil, err
	}
	return ctxt, nil
}

// Validate checks the partition invariant of §3/§8.1: |controllers| ==
// |parts|, and the union of joint names across parts equals the actuated
// joints of the source, with no joint repeated across parts.
func (c *TrajectoryContext) Validate() error {
	if len(c.Controllers) != len(c.Parts) {
		return fmt.Errorf("trajexec: %d controllers but %d parts", len(c.Controllers), len(c.Parts))
	}
	seen := make(map[string]string, len(c.Source.ActuatedJoints()))
	for i, part := range c.Parts {
		for joint := range part.ActuatedJoints() {
			if owner, ok := seen[joint]; ok {
				return fmt.Errorf("trajexec: joint %q assigned to both %q and %q", joint, owner, c.Controllers[i])
			}
			seen[joint] = c.Controllers[i]
		}
	}
	for joint := range c.Source.ActuatedJoints() {
		if _, ok := seen[joint]; !ok {
			return fmt.Errorf("trajexec: joint %q not covered by any part", joint)
		}
	}
	if len(seen) != len(c.Source.ActuatedJoints()) {
		return fmt.Errorf("trajexec: parts actuate joints outside the source trajectory")
	}
	return nil
}
