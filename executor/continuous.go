// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"sync"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/model"
	"github.com/nexus-robotics/trajexec/panicsafe"
	"github.com/nexus-robotics/trajexec/txlog"
)

// Continuous services a FIFO queue of "push-and-execute" contexts on its
// own thread of control, coalescing with whatever handles are still active
// on non-conflicting controllers (§4.6).
type Continuous struct {
	deps   Deps
	logger *txlog.Logger

	mu          sync.Mutex
	queue       []*model.TrajectoryContext
	wake        chan struct{}
	stopFlag    bool
	shutdownCh  chan struct{}
	started     bool
	runningCtrl map[string]collab.ControllerHandle // controller name -> its in-flight handle

	statusMu   sync.Mutex
	lastStatus model.ExecutionStatus

	wg sync.WaitGroup
}

// NewContinuous creates a Continuous executor. Call Start once before Push.
func NewContinuous(deps Deps) *Continuous {
	return &Continuous{
		deps:        deps,
		logger:      txlog.New("%s ", "continuous"),
		wake:        make(chan struct{}, 1),
		shutdownCh:  make(chan struct{}),
		runningCtrl: make(map[string]collab.ControllerHandle),
	}
}

// Start launches the worker goroutine. Safe to call once.
func (c *Continuous) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.wg.Add(1)
	panicsafe.Go(c.run, c.wg.Done)
}

// Push enqueues ctxt and wakes the worker. Fire-and-forget: no per-context
// callback is invoked (§4.6 point 4's contract); Status reflects only the
// most recently completed context.
func (c *Continuous) Push(ctxt *model.TrajectoryContext) {
	c.mu.Lock()
	c.queue = append(c.queue, ctxt)
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Status returns the status of the most recently completed (or in-flight)
// context.
func (c *Continuous) Status() model.ExecutionStatus {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.lastStatus
}

// Stop cancels whatever is currently dispatched, clears the queue and
// lowers the stop flag once acknowledged by the worker. This is the
// documented asymmetry of §4.6 point 5: calling WaitForExecution on the
// façade while Continuous is active routes here.
func (c *Continuous) Stop() {
	c.mu.Lock()
	c.stopFlag = true
	for _, h := range c.runningCtrl {
		h.Cancel()
	}
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Shutdown drains and exits the worker goroutine, then waits for it to
// return.
func (c *Continuous) Shutdown() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	close(c.shutdownCh)
	c.wg.Wait()
}

func (c *Continuous) run() {
	for {
		c.mu.Lock()
		empty := len(c.queue) == 0
		stop := c.stopFlag
		c.mu.Unlock()

		if empty && !stop {
			select {
			case <-c.shutdownCh:
				c.drainCancel()
				return
			case <-c.wake:
				continue
			}
		}

		select {
		case <-c.shutdownCh:
			c.drainCancel()
			return
		default:
		}

		if stop {
			c.drainCancel()
			c.mu.Lock()
			c.stopFlag = false
			c.mu.Unlock()
			continue
		}

		c.mu.Lock()
		if len(c.queue) == 0 {
			c.mu.Unlock()
			continue
		}
		ctxt := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		c.runOne(ctxt)
	}
}

// drainCancel cancels every currently-dispatched handle and empties the
// queue, per §4.6 point 3.
func (c *Continuous) drainCancel() {
	c.mu.Lock()
	for _, h := range c.runningCtrl {
		h.Cancel()
	}
	c.runningCtrl = make(map[string]collab.ControllerHandle)
	c.queue = nil
	c.mu.Unlock()
}

// runOne dispatches ctxt, waiting for any controller it needs that is
// currently busy with the tail of the prior context to free up first, while
// leaving disjoint controllers' prior handles running (§4.6 point 4).
func (c *Continuous) runOne(ctxt *model.TrajectoryContext) {
	ctx := context.Background()

	if err := c.deps.Registry.EnsureActive(ctx, ctxt.Controllers, c.deps.Config.ManageControllers()); err != nil {
		c.logger.Errorf("ensureActive failed for context %s: %v", ctxt.ID, err)
		c.setStatus(model.Aborted)
		return
	}

	statuses := make([]model.ExecutionStatus, len(ctxt.Controllers))
	final := make([]model.ExecutionStatus, len(ctxt.Controllers))
	var inFlight sync.WaitGroup
	for i, name := range ctxt.Controllers {
		c.mu.Lock()
		prior, busy := c.runningCtrl[name]
		c.mu.Unlock()
		if busy {
			prior.WaitForExecution(ctx, 0)
		}

		h, err := c.deps.Manager.ControllerHandle(ctx, name)
		if err != nil {
			statuses[i] = model.Aborted
			final[i] = model.Aborted
			c.logger.Errorf("handle acquisition failed for %s: %v", name, err)
			continue
		}
		if err := h.SendTrajectory(ctxt.Parts[i]); err != nil {
			h.Cancel()
			statuses[i] = model.Aborted
			final[i] = model.Aborted
			c.logger.Errorf("send failed for %s: %v", name, err)
			continue
		}

		statuses[i] = model.Running

		c.mu.Lock()
		c.runningCtrl[name] = h
		c.mu.Unlock()

		i, name, h := i, name, h
		inFlight.Add(1)
		panicsafe.Go(func() {
			final[i] = h.WaitForExecution(context.Background(), 0)
			c.mu.Lock()
			if c.runningCtrl[name] == h {
				delete(c.runningCtrl, name)
			}
			c.mu.Unlock()
		}, inFlight.Done)
	}

	c.setStatus(model.AggregateStatus(statuses))
	panicsafe.Go(func() {
		inFlight.Wait()
		c.setStatus(model.AggregateStatus(final))
	}, nil)
}

func (c *Continuous) setStatus(status model.ExecutionStatus) {
	c.statusMu.Lock()
	c.lastStatus = status
	c.statusMu.Unlock()
}
