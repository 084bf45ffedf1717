// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package distributor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-robotics/trajexec/model"
)

func TestSplitAssignsEachJointToExactlyOneController(t *testing.T) {
	traj := model.RobotTrajectory{
		JointTrajectory: model.JointTrajectory{
			JointNames: []string{"shoulder", "elbow", "gripper"},
			Points: []model.JointTrajectoryPoint{
				{Positions: []float64{1, 2, 3}, TimeFromStart: 0},
				{Positions: []float64{4, 5, 6}, TimeFromStart: time.Second},
			},
		},
	}
	arm := model.NewControllerInfo("arm", []string{"shoulder", "elbow"})
	gripper := model.NewControllerInfo("gripper_ctrl", []string{"gripper"})

	parts, err := Split(traj, []*model.ControllerInfo{arm, gripper})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, []string{"shoulder", "elbow"}, parts[0].JointTrajectory.JointNames)
	assert.Equal(t, []float64{1, 2}, parts[0].JointTrajectory.Points[0].Positions)
	assert.Equal(t, []float64{4, 5}, parts[0].JointTrajectory.Points[1].Positions)

	assert.Equal(t, []string{"gripper"}, parts[1].JointTrajectory.JointNames)
	assert.Equal(t, []float64{3}, parts[1].JointTrajectory.Points[0].Positions)
}

func TestSplitBreaksOverlapTiesBySmallerJointSet(t *testing.T) {
	traj := model.RobotTrajectory{
		JointTrajectory: model.JointTrajectory{
			JointNames: []string{"j1"},
			Points:     []model.JointTrajectoryPoint{{Positions: []float64{0.5}}},
		},
	}
	big := model.NewControllerInfo("big", []string{"j1", "j2"})
	small := model.NewControllerInfo("small", []string{"j1"})

	parts, err := Split(traj, []*model.ControllerInfo{big, small})
	require.NoError(t, err)
	assert.Empty(t, parts[0].JointTrajectory.JointNames)
	assert.Equal(t, []string{"j1"}, parts[1].JointTrajectory.JointNames)
}

func TestSplitFailsWhenJointUnassigned(t *testing.T) {
	traj := model.RobotTrajectory{
		JointTrajectory: model.JointTrajectory{JointNames: []string{"j1", "j2"}},
	}
	arm := model.NewControllerInfo("arm", []string{"j1"})
	_, err := Split(traj, []*model.ControllerInfo{arm})
	assert.Error(t, err)
}

func TestSplitOmitsOptionalFieldsWhenAbsent(t *testing.T) {
	traj := model.RobotTrajectory{
		JointTrajectory: model.JointTrajectory{
			JointNames: []string{"j1"},
			Points:     []model.JointTrajectoryPoint{{Positions: []float64{1}}},
		},
	}
	arm := model.NewControllerInfo("arm", []string{"j1"})
	parts, err := Split(traj, []*model.ControllerInfo{arm})
	require.NoError(t, err)
	assert.Nil(t, parts[0].JointTrajectory.Points[0].Velocities)
}
