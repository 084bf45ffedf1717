// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package executor implements the sequential executor (C5), the continuous
// executor (C6) and the duration monitor (C7): the concurrent, cancellable
// machinery that dispatches a TrajectoryContext's parts to their
// controllers and aggregates a single terminal status.
package executor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/model"
	"github.com/nexus-robotics/trajexec/panicsafe"
	"github.com/nexus-robotics/trajexec/registry"
	"github.com/nexus-robotics/trajexec/txlog"
	"github.com/nexus-robotics/trajexec/validator"
)

// ErrAlreadyRunning is returned by Execute when a batch is already in
// flight; per §9, concurrent Execute calls are disallowed until IDLE.
var ErrAlreadyRunning = errors.New("executor: sequential executor is not idle")

// cancelGrace bounds how long Stop/timeout handling waits for cancelled
// handles to acknowledge before reporting regardless (§5, best-effort
// cancellation).
const cancelGrace = 200 * time.Millisecond

// Deps bundles the collaborators and supporting components the executors
// share.
type Deps struct {
	Registry *registry.Registry
	Manager  collab.ControllerManager
	RobotM   collab.RobotModel
	State    collab.StateMonitor
	Config   *model.Config
}

// Sequential runs a queued batch of contexts in order, one context at a
// time, dispatching each context's parts in parallel to their controllers.
type Sequential struct {
	deps   Deps
	logger *txlog.Logger

	mu      sync.Mutex
	queue   []*model.TrajectoryContext
	running bool
	current int // -1 when idle
	stopCh  chan struct{}

	activeHandles []collab.ControllerHandle

	completeMu sync.Mutex
	complete   *sync.Cond
	done       bool
	lastStatus model.ExecutionStatus

	timeIndexMu sync.Mutex
	timeIndex   []time.Time

	wg sync.WaitGroup
}

// New creates an idle Sequential executor.
func New(deps Deps) *Sequential {
	s := &Sequential{deps: deps, logger: txlog.New("%s ", "sequential"), current: -1, done: true}
	s.complete = sync.NewCond(&s.completeMu)
	return s
}

// Push appends ctxt to the queue. Fails if the executor is past IDLE.
func (s *Sequential) Push(ctxt *model.TrajectoryContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("executor: cannot push while executing")
	}
	s.queue = append(s.queue, ctxt)
	return nil
}

// Clear deletes the queue. Legal only while IDLE.
func (s *Sequential) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("executor: cannot clear while executing")
	}
	s.queue = nil
	s.current = -1
	return nil
}

// Status returns the current context index (-1 if idle) and the status of
// the last completed batch (Unknown before the first batch finishes).
func (s *Sequential) Status() (currentIndex int, lastStatus model.ExecutionStatus) {
	s.mu.Lock()
	idx := s.current
	s.mu.Unlock()

	s.completeMu.Lock()
	defer s.completeMu.Unlock()
	return idx, s.lastStatus
}

// CurrentExpectedTrajectoryIndex returns (ctx_index, waypoint_index) for the
// currently-running context, located by the start timestamp recorded for
// each context and a binary search over its waypoint timestamps. Returns
// (-1, -1) if idle.
func (s *Sequential) CurrentExpectedTrajectoryIndex() (int, int) {
	s.mu.Lock()
	idx := s.current
	var ctxt *model.TrajectoryContext
	if idx >= 0 && idx < len(s.queue) {
		ctxt = s.queue[idx]
	}
	s.mu.Unlock()
	if idx < 0 || ctxt == nil {
		return -1, -1
	}

	s.timeIndexMu.Lock()
	var start time.Time
	if idx < len(s.timeIndex) {
		start = s.timeIndex[idx]
	}
	s.timeIndexMu.Unlock()
	if start.IsZero() {
		return idx, 0
	}

	elapsed := time.Since(start)
	var points []model.JointTrajectoryPoint
	for _, part := range ctxt.Parts {
		if len(part.JointTrajectory.Points) > len(points) {
			points = part.JointTrajectory.Points
		}
	}
	wp := sort.Search(len(points), func(i int) bool {
		return points[i].TimeFromStart >= elapsed
	})
	if wp >= len(points) {
		wp = len(points) - 1
	}
	if wp < 0 {
		wp = 0
	}
	return idx, wp
}

// Execute starts the worker goroutine and returns immediately. callback, if
// non-nil, receives the final aggregate status exactly once; partCallback,
// if non-nil, receives the index of each context that completes
// successfully. If autoClear, the queue is emptied once the batch finishes.
func (s *Sequential) Execute(callback func(model.ExecutionStatus), partCallback func(int), autoClear bool) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.current = 0
	s.stopCh = make(chan struct{})
	s.timeIndexMu.Lock()
	s.timeIndex = nil
	s.timeIndexMu.Unlock()
	queue := append([]*model.TrajectoryContext(nil), s.queue...)
	s.mu.Unlock()

	s.completeMu.Lock()
	s.done = false
	s.completeMu.Unlock()

	s.wg.Add(1)
	panicsafe.Go(func() {
		status := s.runBatch(queue, partCallback)
		s.finishBatch(status, autoClear, callback)
	}, s.wg.Done)

	return nil
}

// ExecuteAndWait runs Execute then WaitForExecution.
func (s *Sequential) ExecuteAndWait(autoClear bool) (model.ExecutionStatus, error) {
	if err := s.Execute(nil, nil, autoClear); err != nil {
		return model.Unknown, err
	}
	return s.WaitForExecution(), nil
}

// WaitForExecution blocks until the executor returns to IDLE and returns
// the resulting last status.
func (s *Sequential) WaitForExecution() model.ExecutionStatus {
	s.completeMu.Lock()
	defer s.completeMu.Unlock()
	for !s.done {
		s.complete.Wait()
	}
	return s.lastStatus
}

// Stop transitions to CANCELLING: it cancels every active handle and wakes
// whichever wait loop is blocked, then returns once the worker has reached
// IDLE. Idempotent and safe from any goroutine, including the event bus
// adapter.
func (s *Sequential) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopCh := s.stopCh
	s.mu.Unlock()

	select {
	case <-stopCh:
		// already stopping
	default:
		close(stopCh)
	}

	s.WaitForExecution()
}

// IsRunning reports whether a batch is currently in flight.
func (s *Sequential) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sequential) finishBatch(status model.ExecutionStatus, autoClear bool, callback func(model.ExecutionStatus)) {
	if status == model.Succeeded && s.deps.Config.WaitForTrajectoryCompletion() {
		s.awaitRobotStop()
	}

	s.mu.Lock()
	s.running = false
	s.current = -1
	if autoClear {
		s.queue = nil
	}
	s.mu.Unlock()

	s.completeMu.Lock()
	s.lastStatus = status
	s.done = true
	s.completeMu.Unlock()
	s.complete.Broadcast()

	if callback != nil {
		callback(status)
	}
}

// runBatch executes each queued context in order, returning the first
// non-success status encountered, or Succeeded if every context succeeded.
func (s *Sequential) runBatch(queue []*model.TrajectoryContext, partCallback func(int)) model.ExecutionStatus {
	for i, ctxt := range queue {
		s.mu.Lock()
		s.current = i
		stopCh := s.stopCh
		s.mu.Unlock()

		select {
		case <-stopCh:
			return model.Preempted
		default:
		}

		s.timeIndexMu.Lock()
		s.timeIndex = append(s.timeIndex, time.Now())
		s.timeIndexMu.Unlock()

		status := s.runContext(ctxt, stopCh)
		if status != model.Succeeded {
			return status
		}
		if partCallback != nil {
			partCallback(i)
		}
	}
	return model.Succeeded
}

// runContext implements the per-context state machine of §4.5 steps 1-6.
func (s *Sequential) runContext(ctxt *model.TrajectoryContext, stopCh chan struct{}) model.ExecutionStatus {
	ctx := context.Background()

	if err := s.deps.Registry.EnsureActive(ctx, ctxt.Controllers, s.deps.Config.ManageControllers()); err != nil {
		s.logger.Errorf("ensureActive failed for context %s: %v", ctxt.ID, err)
		return model.Aborted
	}

	if err := validator.ValidateStartState(ctx, ctxt.Parts, s.deps.RobotM, s.deps.State, s.deps.Config.AllowedStartTolerance()); err != nil {
		s.logger.Errorf("start state validation failed for context %s: %v", ctxt.ID, err)
		return model.Aborted
	}

	handles, err := s.dispatch(ctx, ctxt)
	if err != nil {
		s.logger.Errorf("dispatch failed for context %s: %v", ctxt.ID, err)
		return model.Aborted
	}

	s.mu.Lock()
	s.activeHandles = handles
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.activeHandles = nil
		s.mu.Unlock()
	}()

	deadline := s.deadlineFor(ctxt)
	return s.monitor(ctx, ctxt.Controllers, handles, stopCh, deadline)
}

// dispatch acquires one handle per controller and dispatches the matching
// part to it in parallel (golang.org/x/sync/errgroup). If any acquisition
// or send fails, already-started handles are cancelled and the error is
// returned.
func (s *Sequential) dispatch(ctx context.Context, ctxt *model.TrajectoryContext) ([]collab.ControllerHandle, error) {
	handles := make([]collab.ControllerHandle, len(ctxt.Controllers))

	g, gctx := errgroup.WithContext(ctx)
	for i := range ctxt.Controllers {
		i := i
		g.Go(func() error {
			h, err := s.deps.Manager.ControllerHandle(gctx, ctxt.Controllers[i])
			if err != nil {
				return &model.DispatchError{Controller: ctxt.Controllers[i], Reason: err.Error()}
			}
			if err := h.SendTrajectory(ctxt.Parts[i]); err != nil {
				h.Cancel()
				return &model.DispatchError{Controller: ctxt.Controllers[i], Reason: err.Error()}
			}
			handles[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, h := range handles {
			if h != nil {
				h.Cancel()
			}
		}
		return nil, err
	}
	return handles, nil
}

// deadlineFor returns the non-positive sentinel 0 when monitoring is
// disabled or every part's scaled-expected-duration-plus-margin computes to
// zero (an instantaneous or single-waypoint trajectory); monitor treats any
// non-positive deadline as "no deadline" rather than racing a zero-duration
// timer against the handles' own completion.
func (s *Sequential) deadlineFor(ctxt *model.TrajectoryContext) time.Duration {
	if !s.deps.Config.ExecutionDurationMonitoring() {
		return 0
	}
	var max time.Duration
	for i, name := range ctxt.Controllers {
		expected := DeadlineFor(ctxt.Parts[i].LastWaypointTime(), s.deps.Config.ScalingFor(name), s.deps.Config.MarginFor(name))
		if expected > max {
			max = expected
		}
	}
	return max
}

type partOutcome struct {
	index  int
	status model.ExecutionStatus
}

// monitor is the C5/C7 wait loop: it waits for every handle to reach a
// terminal status, cancelling everything and returning early on an
// external stop request or on deadline expiry.
func (s *Sequential) monitor(ctx context.Context, controllers []string, handles []collab.ControllerHandle, stopCh chan struct{}, deadline time.Duration) model.ExecutionStatus {
	partDone := make(chan partOutcome, len(handles))
	handleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, h := range handles {
		i, h := i, h
		panicsafe.Go(func() {
			status := h.WaitForExecution(handleCtx, 0)
			partDone <- partOutcome{index: i, status: status}
		}, nil)
	}

	var deadlineCh <-chan time.Time
	if deadline > 0 {
		timer := time.NewTimer(deadline)
		defer timer.Stop()
		deadlineCh = timer.C
	}

	statuses := make([]model.ExecutionStatus, len(handles))
	pending := len(handles)

	for pending > 0 {
		select {
		case <-stopCh:
			cancelAll(handles)
			drainGrace(partDone, &pending, statuses)
			return model.Preempted
		case <-deadlineCh:
			cancelAll(handles)
			drainGrace(partDone, &pending, statuses)
			return model.TimedOut
		case res := <-partDone:
			statuses[res.index] = res.status
			if res.status != model.Succeeded {
				failure := &model.ControllerFailure{Controller: controllers[res.index], Status: res.status}
				s.logger.Errorf("%v", failure)
			}
			pending--
		}
	}
	return model.AggregateStatus(statuses)
}

func cancelAll(handles []collab.ControllerHandle) {
	for _, h := range handles {
		h.Cancel()
	}
}

// drainGrace consumes outcomes arriving on partDone for a bounded grace
// period, best-effort, then gives up regardless of how many handles
// remain pending (§5).
func drainGrace(partDone <-chan partOutcome, pending *int, statuses []model.ExecutionStatus) {
	grace := time.NewTimer(cancelGrace)
	defer grace.Stop()
	for *pending > 0 {
		select {
		case res := <-partDone:
			statuses[res.index] = res.status
			*pending--
		case <-grace.C:
			return
		}
	}
}

// awaitRobotStop polls live joint velocities and returns once they remain
// below a small threshold for a short sustained interval, or times out.
// Either way Succeeded is retained by the caller: the stop is best-effort.
func (s *Sequential) awaitRobotStop() {
	const velocityThreshold = 1e-3
	const sustain = 100 * time.Millisecond
	const pollEvery = 20 * time.Millisecond

	deadline := time.Now().Add(s.deps.Config.RobotStopWait())
	var stoppedSince time.Time

	for time.Now().Before(deadline) {
		joints, fresh := s.deps.State.CurrentState(context.Background())
		if fresh && allBelowThreshold(joints, velocityThreshold) {
			if stoppedSince.IsZero() {
				stoppedSince = time.Now()
			}
			if time.Since(stoppedSince) >= sustain {
				return
			}
		} else {
			stoppedSince = time.Time{}
		}
		time.Sleep(pollEvery)
	}
}

func allBelowThreshold(joints map[string]collab.JointState, threshold float64) bool {
	for _, j := range joints {
		v := j.Velocity
		if v < 0 {
			v = -v
		}
		if v > threshold {
			return false
		}
	}
	return true
}
