// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package registry implements the controller registry (C1): it tracks known
// controllers, their actuated-joint sets, activity state and overlap graph,
// refreshing from the controller-manager collaborator with a max-age policy.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/model"
	"github.com/nexus-robotics/trajexec/txlog"
)

// DefaultMaxAge is the sole freshness constant (§4.1): any selection
// operation first refreshes controllers whose metadata is older than this.
const DefaultMaxAge = 1 * time.Second

// Registry tracks every controller reported by the controller-manager
// collaborator. All methods are safe for concurrent use.
type Registry struct {
	mgr    collab.ControllerManager
	logger *txlog.Logger

	mu          sync.Mutex
	controllers map[string]*model.ControllerInfo
}

// New creates a Registry backed by mgr. Call Reload once before first use.
func New(mgr collab.ControllerManager) *Registry {
	return &Registry{
		mgr:         mgr,
		logger:      txlog.New("%s ", "registry"),
		controllers: make(map[string]*model.ControllerInfo),
	}
}

// Reload queries the collaborator for the list of known controllers plus,
// for each, its actuated joints and activity state, then rebuilds the
// overlap graph in O(n²) over controllers by joint-set intersection.
func (r *Registry) Reload(ctx context.Context) error {
	names, err := r.mgr.ControllersList(ctx)
	if err != nil {
		return errors.Wrap(err, "registry: list controllers")
	}

	fresh := make(map[string]*model.ControllerInfo, len(names))
	now := time.Now()
	for _, name := range names {
		joints, err := r.mgr.ControllerJoints(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "registry: joints of %q", name)
		}
		active, isDefault, err := r.mgr.ControllerState(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "registry: state of %q", name)
		}
		info := model.NewControllerInfo(name, joints)
		info.Active = active
		info.Default = isDefault
		info.LastUpdate = now
		fresh[name] = info
	}

	for _, info := range fresh {
		for _, other := range fresh {
			if info.Overlaps(other) {
				info.Overlapping[other.Name] = struct{}{}
			}
		}
	}

	r.mu.Lock()
	r.controllers = fresh
	r.mu.Unlock()

	r.logger.Printf("reloaded %d controllers", len(fresh))
	return nil
}

// RefreshIfOlderThan reloads the entire registry if any tracked
// controller's metadata is older than age, or if the registry is empty.
func (r *Registry) RefreshIfOlderThan(ctx context.Context, age time.Duration) error {
	r.mu.Lock()
	stale := len(r.controllers) == 0
	cutoff := time.Now().Add(-age)
	for _, info := range r.controllers {
		if info.LastUpdate.Before(cutoff) {
			stale = true
			break
		}
	}
	r.mu.Unlock()

	if !stale {
		return nil
	}
	return r.Reload(ctx)
}

// RefreshOne reloads a single controller's joints and state if its metadata
// is older than age.
func (r *Registry) RefreshOne(ctx context.Context, name string, age time.Duration) error {
	r.mu.Lock()
	info, ok := r.controllers[name]
	stale := !ok || info.LastUpdate.Before(time.Now().Add(-age))
	r.mu.Unlock()
	if !stale {
		return nil
	}

	joints, err := r.mgr.ControllerJoints(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "registry: joints of %q", name)
	}
	active, isDefault, err := r.mgr.ControllerState(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "registry: state of %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	updated := model.NewControllerInfo(name, joints)
	updated.Active = active
	updated.Default = isDefault
	updated.LastUpdate = time.Now()
	if existing, ok := r.controllers[name]; ok {
		updated.Overlapping = existing.Overlapping
	}
	r.controllers[name] = updated
	return nil
}

// Controllers returns every tracked controller's info, in §3 order
// (ascending joint-set size, then name).
func (r *Registry) Controllers() []*model.ControllerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]*model.ControllerInfo, 0, len(r.controllers))
	for _, info := range r.controllers {
		infos = append(infos, info)
	}
	sortControllers(infos)
	return infos
}

// Controller returns the tracked info for name, if any.
func (r *Registry) Controller(name string) (*model.ControllerInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.controllers[name]
	return info, ok
}

// IsActive reports whether name is currently tracked as active.
func (r *Registry) IsActive(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.controllers[name]
	return ok && info.Active
}

// AreActive reports whether every controller in names is currently active.
func (r *Registry) AreActive(names []string) bool {
	for _, name := range names {
		if !r.IsActive(name) {
			return false
		}
	}
	return true
}

// EnsureActive implements the §4.1 activation policy. If manage_controllers
// is false, it succeeds iff every requested controller is already active.
// Otherwise it computes which currently-active controllers overlap the
// requested set's joints without being requested themselves, and issues a
// single atomic switch request to deactivate those while activating
// whichever requested controllers are not already active.
func (r *Registry) EnsureActive(ctx context.Context, names []string, manageControllers bool) error {
	if !manageControllers {
		if r.AreActive(names) {
			return nil
		}
		return &model.PreconditionError{Reason: "required controllers are not active and manage_controllers is false"}
	}

	r.mu.Lock()
	requested := make(map[string]struct{}, len(names))
	for _, n := range names {
		requested[n] = struct{}{}
	}

	var toActivate []string
	for _, n := range names {
		info, ok := r.controllers[n]
		if !ok || !info.Active {
			toActivate = append(toActivate, n)
		}
	}

	conflicting := make(map[string]struct{})
	for _, n := range names {
		info, ok := r.controllers[n]
		if !ok {
			continue
		}
		for other := range info.Overlapping {
			if _, isRequested := requested[other]; isRequested {
				continue
			}
			if otherInfo, ok := r.controllers[other]; ok && otherInfo.Active {
				conflicting[other] = struct{}{}
			}
		}
	}
	var toDeactivate []string
	for n := range conflicting {
		toDeactivate = append(toDeactivate, n)
	}
	r.mu.Unlock()

	if len(toActivate) == 0 && len(toDeactivate) == 0 {
		return nil
	}

	if err := r.mgr.SwitchControllers(ctx, toActivate, toDeactivate); err != nil {
		r.logger.Errorf("switch controllers failed: %v", err)
		return &model.PreconditionError{Reason: errors.Wrap(err, "switch controllers").Error()}
	}

	r.mu.Lock()
	for _, n := range toActivate {
		if info, ok := r.controllers[n]; ok {
			info.Active = true
		}
	}
	for _, n := range toDeactivate {
		if info, ok := r.controllers[n]; ok {
			info.Active = false
		}
	}
	r.mu.Unlock()

	return nil
}

func sortControllers(infos []*model.ControllerInfo) {
	// insertion sort: n is expected to be small (tens of controllers at
	// most), and it keeps the comparator identical to ControllerInfo.Less.
	for i := 1; i < len(infos); i++ {
		for j := i; j > 0 && infos[j].Less(infos[j-1]); j-- {
			infos[j], infos[j-1] = infos[j-1], infos[j]
		}
	}
}
