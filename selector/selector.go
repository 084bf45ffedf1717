// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package selector implements the controller selector (C2): given a set of
// actuated joints, it chooses a minimum-cardinality subset of controllers
// that covers them, biased toward currently-active controllers, with
// deterministic tie-breaking.
package selector

import (
	"github.com/nexus-robotics/trajexec/model"
)

// Select returns an ordered list of controller names such that the union of
// their joint sets covers actuated, preferring the minimum number of
// controllers and, among same-size covers, the one scoring highest by
// (count of already-active controllers, -sum of joint-set sizes), ties
// broken by first-encountered order under the §3 ControllerInfo ordering.
//
// available must already be sorted per §3 (ascending joint-set size, then
// name) — Registry.Controllers returns it in that order.
func Select(available []*model.ControllerInfo, actuated map[string]struct{}) ([]string, error) {
	if len(actuated) == 0 {
		return nil, &model.ConfigurationError{Reason: "no actuated joints requested"}
	}
	if len(available) == 0 {
		return nil, &model.ConfigurationError{Reason: "no controllers available"}
	}

	n := len(available)
	for k := 1; k <= n; k++ {
		best, found := bestCoverAtK(available, actuated, k)
		if found {
			names := make([]string, len(best))
			for i, info := range best {
				names[i] = info.Name
			}
			return names, nil
		}
	}
	return nil, &model.ConfigurationError{Reason: "no combination of available controllers covers the requested joints"}
}

type scoredSubset struct {
	infos       []*model.ControllerInfo
	activeCount int
	jointSum    int
}

// better reports whether s scores strictly higher than other under the §4.2
// rule: more active controllers first, then smaller summed joint-set size.
// Equal scores keep whichever was encountered first (the caller never calls
// better for that case).
func (s scoredSubset) better(other scoredSubset) bool {
	if s.activeCount != other.activeCount {
		return s.activeCount > other.activeCount
	}
	return s.jointSum < other.jointSum
}

func bestCoverAtK(available []*model.ControllerInfo, actuated map[string]struct{}, k int) ([]*model.ControllerInfo, bool) {
	var best scoredSubset
	found := false

	kSubsets(len(available), k, func(indices []int) bool {
		subset := make([]*model.ControllerInfo, k)
		for i, idx := range indices {
			subset[i] = available[idx]
		}
		if !covers(subset, actuated) {
			return true
		}

		candidate := scoredSubset{infos: subset}
		for _, info := range subset {
			if info.Active {
				candidate.activeCount++
			}
			candidate.jointSum += len(info.Joints)
		}

		if !found || candidate.better(best) {
			best = candidate
			found = true
		}
		return true
	})

	return best.infos, found
}

func covers(subset []*model.ControllerInfo, actuated map[string]struct{}) bool {
	for joint := range actuated {
		owned := false
		for _, info := range subset {
			if _, ok := info.Joints[joint]; ok {
				owned = true
				break
			}
		}
		if !owned {
			return false
		}
	}
	return true
}

// Minimal reports whether selected is a minimal cover: no strict subset of
// it also covers actuated. Used by property tests (§8 invariant 2).
func Minimal(available map[string]*model.ControllerInfo, selected []string, actuated map[string]struct{}) bool {
	infos := make([]*model.ControllerInfo, len(selected))
	for i, name := range selected {
		infos[i] = available[name]
	}
	for size := 0; size < len(infos); size++ {
		result := false
		kSubsets(len(infos), size, func(indices []int) bool {
			subset := make([]*model.ControllerInfo, len(indices))
			for i, idx := range indices {
				subset[i] = infos[idx]
			}
			if covers(subset, actuated) {
				result = true
				return false
			}
			return true
		})
		if result {
			return false
		}
	}
	return true
}
