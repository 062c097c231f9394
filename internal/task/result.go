// Package task implements the Result/State value type and the builder that
// composes plumbing primitives into a tree of per-step outcomes.
package task

import (
	"fmt"
	"strings"
)

// State is the outcome of a leaf or composite task.
type State int

const (
	// Unchanged means the operation found nothing to do.
	Unchanged State = iota
	// Success means the operation modified something that already existed.
	Success
	// Created means the operation created something new.
	Created
)

func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Success:
		return "success"
	case Created:
		return "created"
	default:
		return "unknown"
	}
}

// max returns the greater of two states under unchanged < success < created.
func max(a, b State) State {
	if b > a {
		return b
	}
	return a
}

// Result is the universal return type of every plumbing primitive and task.
// Its zero value is Unchanged with no value, which is the correct result for
// a no-op.
type Result struct {
	state  State
	value  any
	parts  []Result
	caller string
}

// New builds a leaf Result with the given state and no value.
func New(state State) Result {
	return Result{state: state}
}

// NewValue builds a leaf Result carrying a value.
func NewValue(state State, value any) Result {
	return Result{state: state, value: value}
}

// State returns the result's aggregated state.
func (r Result) State() State { return r.state }

// Value returns the result's carried value, or nil.
func (r Result) Value() any { return r.value }

// Parts returns the child results appended by a composite task, in order.
func (r Result) Parts() []Result { return r.parts }

// Bool reports whether anything changed: Unchanged is false, Success and
// Created are true.
func (r Result) Bool() bool { return r.state != Unchanged }

// Named returns a copy of r tagged with the qualified name of the producing
// task, for use in the tree representation produced by String.
func (r Result) Named(caller string) Result {
	r.caller = caller
	return r
}

// String renders the result as an indented tree: "<caller>: <state> <value?>"
// with two-space-indented children. This is the primary artifact logged for
// each job step.
func (r Result) String() string {
	var b strings.Builder
	r.write(&b, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (r Result) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	if r.caller != "" {
		b.WriteString(r.caller)
		b.WriteString(": ")
	}
	b.WriteString(r.state.String())
	if r.value != nil {
		fmt.Fprintf(b, " %v", r.value)
	}
	b.WriteString("\n")
	for _, p := range r.parts {
		p.write(b, depth+1)
	}
}
