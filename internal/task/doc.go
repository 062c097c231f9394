// Package task provides the composable, result-returning unit-of-work
// abstraction used by every plumbing primitive and orchestration task in
// the control plane: State/Result values, a Builder for composing them into
// trees, password generation, and the host-guard precondition.
package task
