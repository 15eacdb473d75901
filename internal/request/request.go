// Package request models the lifecycle of a remote operation as seen by
// the console: idle, in flight, then exactly one terminal outcome.
package request

import (
	"fmt"
	"sync"
)

// Phase is the lifecycle position of a request.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is the current status of one logical command on one surface.
// Message is set only for Success and Error.
type State struct {
	Phase   Phase
	Message string
}

// Terminal reports whether the state is Success or Error.
func (s State) Terminal() bool {
	return s.Phase == Success || s.Phase == Error
}

// ValidationError is returned when a command is rejected before any
// request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid returns a ValidationError with the given operator-facing message.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Tracker holds the current State of one command. A new Begin supersedes
// the previous state immediately; there is no queuing.
type Tracker struct {
	mu    sync.Mutex
	state State
	seq   uint64
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Begin clears any prior status, moves to Loading, and returns the
// invocation's sequence number.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.state = State{Phase: Loading}
	return t.seq
}

// Succeed records a successful outcome. The last resolved invocation wins.
func (t *Tracker) Succeed(msg string) State {
	return t.set(State{Phase: Success, Message: msg})
}

// Fail records a failed outcome. The last resolved invocation wins.
func (t *Tracker) Fail(msg string) State {
	return t.set(State{Phase: Error, Message: msg})
}

// Reject records a validation failure without entering Loading.
func (t *Tracker) Reject(err *ValidationError) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.state = State{Phase: Error, Message: err.Message}
	return t.state
}

// Latest reports whether seq is still the most recent invocation.
func (t *Tracker) Latest(seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq == seq
}

// Reset returns the tracker to Idle.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.state = State{}
}

func (t *Tracker) set(s State) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
	return s
}
