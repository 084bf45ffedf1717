// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRobotTrajectoryActuatedJoints(t *testing.T) {
	traj := RobotTrajectory{
		JointTrajectory:         JointTrajectory{JointNames: []string{"shoulder", "elbow"}},
		MultiDOFJointTrajectory: MultiDOFJointTrajectory{JointNames: []string{"base"}},
	}
	joints := traj.ActuatedJoints()
	assert.Len(t, joints, 3)
	assert.Contains(t, joints, "shoulder")
	assert.Contains(t, joints, "base")
}

func TestRobotTrajectoryEmpty(t *testing.T) {
	assert.True(t, RobotTrajectory{}.Empty())
	assert.False(t, RobotTrajectory{JointTrajectory: JointTrajectory{JointNames: []string{"j1"}}}.Empty())
}

func TestRobotTrajectoryLastWaypointTime(t *testing.T) {
	traj := RobotTrajectory{
		JointTrajectory: JointTrajectory{
			JointNames: []string{"j1"},
			Points: []JointTrajectoryPoint{
				{TimeFromStart: 1 * time.Second},
				{TimeFromStart: 3 * time.Second},
			},
		},
		MultiDOFJointTrajectory: MultiDOFJointTrajectory{
			JointNames: []string{"base"},
			Points: []MultiDOFJointTrajectoryPoint{
				{TimeFromStart: 2 * time.Second},
			},
		},
	}
	assert.Equal(t, 3*time.Second, traj.LastWaypointTime())
}

func TestRobotTrajectoryLastWaypointTimeEmpty(t *testing.T) {
	assert.Equal(t, time.Duration(0), RobotTrajectory{}.LastWaypointTime())
}
