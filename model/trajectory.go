// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package model defines the data shapes shared by every component of the
// trajectory execution manager: trajectories, controller metadata, contexts,
// execution status and runtime configuration.
package model

import "time"

// JointType classifies how a joint's position wraps (or doesn't) for the
// purpose of start-state comparison and distance computation.
type JointType int

const (
	Revolute JointType = iota
	Continuous
	Prismatic
	Fixed
)

func (t JointType) String() string {
	switch t {
	case Revolute:
		return "revolute"
	case Continuous:
		return "continuous"
	case Prismatic:
		return "prismatic"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// JointTrajectoryPoint is a single waypoint of a single-DOF joint trajectory.
type JointTrajectoryPoint struct {
	Positions     []float64
	Velocities    []float64
	Accelerations []float64
	Effort        []float64
	TimeFromStart time.Duration
}

// JointTrajectory is an ordinary (single-DOF) joint-space trajectory: each
// row in Points carries one value per entry of JointNames, in the same
// order.
type JointTrajectory struct {
	JointNames []string
	Points     []JointTrajectoryPoint
}

// Transform is a minimal rigid-body pose, enough to carry a multi-DOF
// (virtual/floating) joint's waypoint value without pulling in a full
// spatial-math dependency the core does not otherwise need.
type Transform struct {
	Translation [3]float64
	Rotation    [4]float64 // quaternion x, y, z, w
}

// MultiDOFJointTrajectoryPoint is a single waypoint of a multi-DOF joint
// trajectory (e.g. the virtual joint of a mobile base).
type MultiDOFJointTrajectoryPoint struct {
	Transforms    []Transform
	TimeFromStart time.Duration
}

// MultiDOFJointTrajectory mirrors JointTrajectory for multi-DOF joints.
type MultiDOFJointTrajectory struct {
	JointNames []string
	Points     []MultiDOFJointTrajectoryPoint
}

// RobotTrajectory bundles the two parallel sub-structures the distributor
// and executor operate on.
type RobotTrajectory struct {
	JointTrajectory         JointTrajectory
	MultiDOFJointTrajectory MultiDOFJointTrajectory
}

// ActuatedJoints returns the set of joint names driven by traj, single- and
// multi-DOF joints combined.
func (traj RobotTrajectory) ActuatedJoints() map[string]struct{} {
	joints := make(map[string]struct{}, len(traj.JointTrajectory.JointNames)+len(traj.MultiDOFJointTrajectory.JointNames))
	for _, n := range traj.JointTrajectory.JointNames {
		joints[n] = struct{}{}
	}
	for _, n := range traj.MultiDOFJointTrajectory.JointNames {
		joints[n] = struct{}{}
	}
	return joints
}

// Empty reports whether traj actuates no joints at all.
func (traj RobotTrajectory) Empty() bool {
	return len(traj.JointTrajectory.JointNames) == 0 && len(traj.MultiDOFJointTrajectory.JointNames) == 0
}

// LastWaypointTime returns the TimeFromStart of the final waypoint across
// both sub-trajectories, used by the duration monitor to compute expected
// execution time. Returns zero if traj carries no waypoints.
func (traj RobotTrajectory) LastWaypointTime() time.Duration {
	var last time.Duration
	if n := len(traj.JointTrajectory.Points); n > 0 {
		if t := traj.JointTrajectory.Points[n-1].TimeFromStart; t > last {
			last = t
		}
	}
	if n := len(traj.MultiDOFJointTrajectory.Points); n > 0 {
		if t := traj.MultiDOFJointTrajectory.Points[n-1].TimeFromStart; t > last {
			last = t
		}
	}
	return last
}
