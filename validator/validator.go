// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package validator implements the start-state validator (C4): it compares
// the first waypoint of each part against the current observed robot state
// within a configurable tolerance.
package validator

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/model"
)

// ValidateStartState compares the first waypoint of every part of ctxt
// against the live joint state reported by sm, using rm to resolve each
// joint's wrap type. Revolute joints are compared by shortest-angle
// distance, prismatic by plain absolute difference, continuous joints are
// skipped. tolerance == 0 disables validation entirely.
func ValidateStartState(ctx context.Context, parts []model.RobotTrajectory, rm collab.RobotModel, sm collab.StateMonitor, tolerance float64) error {
	if tolerance == 0 {
		return nil
	}

	current, fresh := sm.CurrentState(ctx)
	if !fresh {
		return &model.PreconditionError{Reason: "current joint state is not fresh"}
	}

	var offending []string
	for _, part := range parts {
		names := part.JointTrajectory.JointNames
		if len(part.JointTrajectory.Points) == 0 {
			continue
		}
		first := part.JointTrajectory.Points[0]
		for i, joint := range names {
			jt := rm.JointType(joint)
			if jt == model.Continuous || jt == model.Fixed {
				continue
			}
			if i >= len(first.Positions) {
				continue
			}
			state, ok := current[joint]
			if !ok {
				offending = append(offending, fmt.Sprintf("%s (no current state)", joint))
				continue
			}

			var diff float64
			switch jt {
			case model.Revolute:
				diff = math.Abs(shortestAngleDistance(state.Position, first.Positions[i]))
			default: // Prismatic
				diff = math.Abs(state.Position - first.Positions[i])
			}

			if diff > tolerance {
				offending = append(offending, fmt.Sprintf("%s (off by %.4f)", joint, diff))
			}
		}
	}

	if len(offending) > 0 {
		return &model.PreconditionError{Reason: "start state mismatch: " + strings.Join(offending, ", ")}
	}
	return nil
}

// shortestAngleDistance returns the signed distance from 'from' to 'to' along
// the shortest direction around the circle, in [-pi, pi].
func shortestAngleDistance(from, to float64) float64 {
	const twoPi = 2 * math.Pi
	d := math.Mod(to-from, twoPi)
	switch {
	case d > math.Pi:
		d -= twoPi
	case d < -math.Pi:
		d += twoPi
	}
	return d
}
