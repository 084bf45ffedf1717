// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package executor

import "time"

// DeadlineFor computes C7's per-part expected duration: the part's last
// waypoint time scaled by the controller-specific (or global) scaling
// factor, plus the controller-specific (or global) margin.
func DeadlineFor(lastWaypointTime time.Duration, scaling float64, margin time.Duration) time.Duration {
	scaled := time.Duration(float64(lastWaypointTime) * scaling)
	return scaled + margin
}
