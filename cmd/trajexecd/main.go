// SPDX-FileCopyrightText: © 2026 Nexus Robotics
// SPDX-License-Identifier: MIT

/*
Starts a standalone demonstration of the trajectory execution manager against
an in-memory robot: two controllers covering four joints, a single pushed
trajectory, executed to completion.

For usage details, run trajexecd with the command line flag -h or --help.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	trajexec "github.com/nexus-robotics/trajexec"
	"github.com/nexus-robotics/trajexec/collab/fakes"
	"github.com/nexus-robotics/trajexec/model"
	"github.com/nexus-robotics/trajexec/txlog"
)

func main() {
	var help bool
	var log bool

	flag.Usage = usage
	flag.BoolVar(&help, "h", false, "Show usage information")
	flag.BoolVar(&log, "l", false, "Show logging output (for debugging)")
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}

	if log {
		txlog.Enable()
	}

	rm := fakes.NewRobotModel().
		AddJoint("shoulder", model.Revolute).
		AddJoint("elbow", model.Revolute).
		AddJoint("wrist", model.Continuous).
		AddJoint("gripper", model.Prismatic)

	sm := fakes.NewStateMonitor()
	sm.Set("shoulder", 0, 0)
	sm.Set("elbow", 0, 0)
	sm.Set("wrist", 0, 0)
	sm.Set("gripper", 0, 0)

	mgr := fakes.NewControllerManager().
		AddController("arm_controller", []string{"shoulder", "elbow", "wrist"}, false).
		AddController("gripper_controller", []string{"gripper"}, false)
	mgr.SetOutcome("arm_controller", 200*time.Millisecond, model.Succeeded)
	mgr.SetOutcome("gripper_controller", 100*time.Millisecond, model.Succeeded)

	topic := fakes.NewEventTopic()
	params := fakes.NewParamSource()

	// Handle SIGTERM.
	signaled := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer close(signaled)
		fmt.Printf("Terminating trajexecd on signal %v...\n", <-sigCh)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := trajexec.New(ctx, mgr, rm, sm, topic, params, nil)
	if err != nil {
		fmt.Printf("failed to start trajectory execution manager: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	traj := model.RobotTrajectory{
		JointTrajectory: model.JointTrajectory{
			JointNames: []string{"shoulder", "elbow", "wrist", "gripper"},
			Points: []model.JointTrajectoryPoint{
				{Positions: []float64{0, 0, 0, 0}, TimeFromStart: 0},
				{Positions: []float64{0.5, -0.3, 1.0, 0.02}, TimeFromStart: 500 * time.Millisecond},
			},
		},
	}

	fmt.Println("Pushing trajectory across arm_controller and gripper_controller...")
	if err := m.Push(ctx, traj, nil); err != nil {
		fmt.Printf("push failed: %v\n", err)
		os.Exit(1)
	}

	completed := make(chan model.ExecutionStatus, 1)
	go func() {
		status, err := m.ExecuteAndWait(true)
		if err != nil {
			fmt.Printf("execute failed: %v\n", err)
		}
		completed <- status
	}()

	select {
	case <-signaled:
		m.StopExecution(true)
		<-completed
	case status := <-completed:
		fmt.Printf("execution finished with status: %s\n", status)
	}
}

func usage() {
	fmt.Printf(`usage: trajexecd [-h|--help] [-l]

Runs a self-contained demo of the trajectory execution manager against a
simulated two-controller, four-joint robot.

Flags:
`)
	flag.PrintDefaults()
}
