// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

// Package fakes provides deterministic in-memory implementations of every
// collaborator interface in collab, for use by component tests and by the
// cmd/trajexecd demo. None of this ships as part of the core; it stands in
// for the robot-specific plugins a real deployment would supply.
package fakes

import (
	"context"
	"sync"
	"time"

	"github.com/nexus-robotics/trajexec/collab"
	"github.com/nexus-robotics/trajexec/model"
)

// RobotModel is a fixed, in-memory kinematic description.
type RobotModel struct {
	Types  map[string]model.JointType
	Groups map[string][]string
}

func NewRobotModel() *RobotModel {
	return &RobotModel{Types: make(map[string]model.JointType), Groups: make(map[string][]string)}
}

func (m *RobotModel) AddJoint(name string, t model.JointType) *RobotModel {
	m.Types[name] = t
	return m
}

func (m *RobotModel) AddGroup(name string, joints []string) *RobotModel {
	m.Groups[name] = joints
	return m
}

func (m *RobotModel) JointNames() []string {
	names := make([]string, 0, len(m.Types))
	for n := range m.Types {
		names = append(names, n)
	}
	return names
}

func (m *RobotModel) JointType(name string) model.JointType {
	if t, ok := m.Types[name]; ok {
		return t
	}
	return model.Fixed
}

func (m *RobotModel) JointGroup(name string) ([]string, bool) {
	g, ok := m.Groups[name]
	return g, ok
}

// StateMonitor reports a fixed, mutable joint state snapshot.
type StateMonitor struct {
	mu     sync.RWMutex
	joints map[string]collab.JointState
	fresh  bool
}

func NewStateMonitor() *StateMonitor {
	return &StateMonitor{joints: make(map[string]collab.JointState), fresh: true}
}

func (s *StateMonitor) Set(joint string, position, velocity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joints[joint] = collab.JointState{Position: position, Velocity: velocity}
}

func (s *StateMonitor) SetFresh(fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fresh = fresh
}

func (s *StateMonitor) CurrentState(ctx context.Context) (map[string]collab.JointState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]collab.JointState, len(s.joints))
	for k, v := range s.joints {
		out[k] = v
	}
	return out, s.fresh
}

// ParamSource returns static per-controller overrides.
type ParamSource struct {
	Scaling map[string]float64
	Margin  map[string]time.Duration
}

func NewParamSource() *ParamSource {
	return &ParamSource{Scaling: make(map[string]float64), Margin: make(map[string]time.Duration)}
}

func (p *ParamSource) DurationScaling(controller string) (float64, bool) {
	v, ok := p.Scaling[controller]
	return v, ok
}

func (p *ParamSource) GoalDurationMargin(controller string) (time.Duration, bool) {
	v, ok := p.Margin[controller]
	return v, ok
}

// EventTopic is an in-memory broadcast channel keyed by topic name.
type EventTopic struct {
	mu   sync.Mutex
	subs map[string][]chan string
}

func NewEventTopic() *EventTopic {
	return &EventTopic{subs: make(map[string][]chan string)}
}

func (e *EventTopic) Subscribe(ctx context.Context, name string) (<-chan string, error) {
	ch := make(chan string, 4)
	e.mu.Lock()
	e.subs[name] = append(e.subs[name], ch)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		defer e.mu.Unlock()
		subs := e.subs[name]
		for i, c := range subs {
			if c == ch {
				e.subs[name] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

// Publish broadcasts msg to every current subscriber of name. Best-effort:
// a full subscriber channel drops the message rather than blocking.
func (e *EventTopic) Publish(name, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs[name] {
		select {
		case ch <- msg:
		default:
		}
	}
}
