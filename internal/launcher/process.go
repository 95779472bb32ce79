// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

const defaultStopTimeout = 10 * time.Second

// Process manages a single launched browser process.
type Process struct {
	execPath string
	args     []string

	mu            sync.RWMutex
	cmd           *exec.Cmd
	pid           int
	exitCode      int
	startedAt     time.Time
	stoppedAt     time.Time
	isRunning     bool
	stopRequested bool

	onExit   func(int)
	waitDone chan struct{}
}

// Status is a snapshot of a process's state.
type Status struct {
	Running   bool
	PID       int
	ExitCode  int
	StartedAt time.Time
	StoppedAt time.Time
}

// NewProcess creates a process for the given executable and arguments.
func NewProcess(execPath string, args []string) *Process {
	return &Process{execPath: execPath, args: args}
}

// Start launches the process in its own process group so the whole browser
// tree can be signalled together.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("process already running")
	}

	cmd := exec.Command(p.execPath, p.args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}

	p.cmd = cmd
	p.pid = cmd.Process.Pid
	p.startedAt = time.Now()
	p.exitCode = 0
	p.isRunning = true
	p.stopRequested = false
	p.waitDone = make(chan struct{})

	go p.waitForExit()

	return nil
}

// Stop terminates the process group, escalating SIGTERM to SIGKILL after a
// timeout. Stopping an already-dead process is not an error.
func (p *Process) Stop() error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.stopRequested = true
	pgid := p.pid
	waitDone := p.waitDone
	p.mu.Unlock()

	// Signal the whole process group (negative PID). The process may have
	// exited already; either signal path failing is fine.
	syscall.Kill(-pgid, syscall.SIGTERM)

	select {
	case <-waitDone:
	case <-time.After(defaultStopTimeout):
		syscall.Kill(-pgid, syscall.SIGKILL)
		<-waitDone
	}

	return nil
}

// Status returns a snapshot of the process state.
func (p *Process) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Status{
		Running:   p.isRunning,
		PID:       p.pid,
		ExitCode:  p.exitCode,
		StartedAt: p.startedAt,
		StoppedAt: p.stoppedAt,
	}
}

// OnExit sets a callback invoked when the process exits without a stop
// having been requested.
func (p *Process) OnExit(fn func(exitCode int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onExit = fn
}

func (p *Process) waitForExit() {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.isRunning = false
	p.stoppedAt = time.Now()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			p.exitCode = exitErr.ExitCode()
		} else {
			p.exitCode = -1
		}
	} else {
		p.exitCode = 0
	}

	exitCode := p.exitCode
	wasStopRequested := p.stopRequested
	onExit := p.onExit
	waitDone := p.waitDone
	p.cmd = nil
	p.mu.Unlock()

	close(waitDone)

	if onExit != nil && !wasStopRequested {
		onExit(exitCode)
	}
}
