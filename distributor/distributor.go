// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package distributor implements the trajectory distributor (C3): it splits
// a multi-joint RobotTrajectory into one per selected controller, assigning
// each joint to exactly one controller and reindexing waypoint rows to
// match the new, per-controller joint ordering.
package distributor

import (
	"github.com/nexus-robotics/trajexec/model"
)

// Split partitions traj across controllers (in the order selected by C2),
// restricting each output RobotTrajectory to the joints owned by that
// controller. A joint claimed by more than one controller is assigned to
// the one with the smaller joint set, ties broken by name (§4.3); a joint
// with no owning controller fails the whole split.
func Split(traj model.RobotTrajectory, controllers []*model.ControllerInfo) ([]model.RobotTrajectory, error) {
	owner, err := assignOwners(traj, controllers)
	if err != nil {
		return nil, err
	}

	parts := make([]model.RobotTrajectory, len(controllers))
	for i, ctrl := range controllers {
		parts[i] = model.RobotTrajectory{
			JointTrajectory:         splitJointTrajectory(traj.JointTrajectory, ctrl.Name, owner),
			MultiDOFJointTrajectory: splitMultiDOFJointTrajectory(traj.MultiDOFJointTrajectory, ctrl.Name, owner),
		}
	}
	return parts, nil
}

// assignOwners maps each actuated joint name to the controller responsible
// for it.
func assignOwners(traj model.RobotTrajectory, controllers []*model.ControllerInfo) (map[string]string, error) {
	owner := make(map[string]string)
	for joint := range traj.ActuatedJoints() {
		var best *model.ControllerInfo
		for _, ctrl := range controllers {
			if _, ok := ctrl.Joints[joint]; !ok {
				continue
			}
			if best == nil || ctrl.Less(best) {
				best = ctrl
			}
		}
		if best == nil {
			return nil, &model.ConfigurationError{Reason: "joint " + joint + " is not covered by any selected controller"}
		}
		owner[joint] = best.Name
	}
	return owner, nil
}

func splitJointTrajectory(src model.JointTrajectory, controller string, owner map[string]string) model.JointTrajectory {
	var names []string
	var sourceIdx []int
	for i, name := range src.JointNames {
		if owner[name] == controller {
			names = append(names, name)
			sourceIdx = append(sourceIdx, i)
		}
	}
	if len(names) == 0 {
		return model.JointTrajectory{}
	}

	points := make([]model.JointTrajectoryPoint, len(src.Points))
	for i, p := range src.Points {
		points[i] = model.JointTrajectoryPoint{
			Positions:     reindex(p.Positions, sourceIdx),
			Velocities:    reindex(p.Velocities, sourceIdx),
			Accelerations: reindex(p.Accelerations, sourceIdx),
			Effort:        reindex(p.Effort, sourceIdx),
			TimeFromStart: p.TimeFromStart,
		}
	}
	return model.JointTrajectory{JointNames: names, Points: points}
}

func splitMultiDOFJointTrajectory(src model.MultiDOFJointTrajectory, controller string, owner map[string]string) model.MultiDOFJointTrajectory {
	var names []string
	var sourceIdx []int
	for i, name := range src.JointNames {
		if owner[name] == controller {
			names = append(names, name)
			sourceIdx = append(sourceIdx, i)
		}
	}
	if len(names) == 0 {
		return model.MultiDOFJointTrajectory{}
	}

	points := make([]model.MultiDOFJointTrajectoryPoint, len(src.Points))
	for i, p := range src.Points {
		transforms := make([]model.Transform, 0, len(sourceIdx))
		for _, idx := range sourceIdx {
			if idx < len(p.Transforms) {
				transforms = append(transforms, p.Transforms[idx])
			}
		}
		points[i] = model.MultiDOFJointTrajectoryPoint{Transforms: transforms, TimeFromStart: p.TimeFromStart}
	}
	return model.MultiDOFJointTrajectory{JointNames: names, Points: points}
}

// reindex returns nil if values is empty (the row didn't carry this
// optional field), otherwise the subset of values at sourceIdx in order.
func reindex(values []float64, sourceIdx []int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(sourceIdx))
	for i, idx := range sourceIdx {
		if idx < len(values) {
			out[i] = values[idx]
		}
	}
	return out
}
