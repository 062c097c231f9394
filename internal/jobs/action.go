package jobs

import (
	"context"
	"fmt"

	"github.com/srcf/controlplane/internal/store"
)

// Action is an operator- or runner-driven state transition, distinct from
// the job kinds themselves. Mirrors jobs.py's JobAction enum.
type Action struct {
	name      string
	pastLabel string
	oldState  store.JobState
	newState  store.JobState
}

func (a Action) String() string { return a.name }

var (
	ActionReject  = Action{"reject", "rejected", store.JobStateUnapproved, store.JobStateWithdrawn}
	ActionApprove = Action{"approve", "approved", store.JobStateUnapproved, store.JobStateQueued}
	ActionCancel  = Action{"cancel", "cancelled", store.JobStateQueued, store.JobStateFailed}
	ActionAbort   = Action{"abort", "aborted", store.JobStateRunning, store.JobStateFailed}
	ActionRepeat  = Action{"repeat", "repeated", store.JobStateDone, store.JobStateQueued}
	ActionRetry   = Action{"retry", "retried", store.JobStateFailed, store.JobStateQueued}
)

// ErrActionInvalid is returned by Apply when a job is not in the state the
// requested action requires.
type ErrActionInvalid struct {
	Action Action
	State  store.JobState
}

func (e *ErrActionInvalid) Error() string {
	return fmt.Sprintf("can't %s job, must be in %s state, not %s", e.Action.name, e.Action.oldState, e.State)
}

// Apply transitions jobID via action, recording message as the resulting
// state_message. If message is empty and the action lands on a terminal
// failed/withdrawn state, a default "Job <past-tense> by sysadmins" message
// is recorded instead.
func Apply(ctx context.Context, q store.Querier, jobID int32, current store.JobState, action Action, message string) error {
	if current != action.oldState {
		return &ErrActionInvalid{Action: action, State: current}
	}
	if message == "" && (action.newState == store.JobStateFailed || action.newState == store.JobStateWithdrawn) {
		message = fmt.Sprintf("Job %s by sysadmins", action.pastLabel)
	}
	var msgPtr *string
	if message != "" {
		msgPtr = &message
	}
	err := store.SetJobState(ctx, q, jobID, action.oldState, action.newState, msgPtr)
	if err != nil {
		if err == store.ErrInvalidTransition {
			return &ErrActionInvalid{Action: action, State: current}
		}
		return err
	}
	return nil
}
