// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package model

import "time"

// ControllerInfo describes one controller known to the registry: the joints
// it actuates, the other controllers it overlaps with (precomputed for
// selector pruning), and its last-observed activity state.
type ControllerInfo struct {
	Name        string
	Joints      map[string]struct{}
	Overlapping map[string]struct{}
	Active      bool
	Default     bool
	LastUpdate  time.Time
}

// NewControllerInfo creates a ControllerInfo actuating the given joints.
func NewControllerInfo(name string, joints []string) *ControllerInfo {
	set := make(map[string]struct{}, len(joints))
	for _, j := range joints {
		set[j] = struct{}{}
	}
	return &ControllerInfo{
		Name:        name,
		Joints:      set,
		Overlapping: make(map[string]struct{}),
	}
}

// Less implements the deterministic §3 ordering: ascending joint-set size,
// then ascending name.
func (c *ControllerInfo) Less(other *ControllerInfo) bool {
	if len(c.Joints) != len(other.Joints) {
		return len(c.Joints) < len(other.Joints)
	}
	return c.Name < other.Name
}

// Overlaps reports whether c and other actuate at least one joint in common.
func (c *ControllerInfo) Overlaps(other *ControllerInfo) bool {
	if c == other {
		return false
	}
	small, big := c.Joints, other.Joints
	if len(big) < len(small) {
		small, big = big, small
	}
	for j := range small {
		if _, ok := big[j]; ok {
			return true
		}
	}
	return false
}

// Covers reports whether c actuates every joint in the given set.
func (c *ControllerInfo) Covers(joints map[string]struct{}) bool {
	for j := range joints {
		if _, ok := c.Joints[j]; !ok {
			return false
		}
	}
	return true
}
