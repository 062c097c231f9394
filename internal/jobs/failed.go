package jobs

import "fmt"

// Failed marks a job failure that is the member's own doing — a bad
// request, a name already in use, a precondition that doesn't hold — as
// opposed to an unexpected error in the control plane itself. The runner
// records its Message as the job's terse, user-facing failure reason and
// its Raw detail (if any) alongside, without escalating to the sysadmins.
type Failed struct {
	Message string
	Raw     string
}

func (e *Failed) Error() string {
	if e.Raw == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Raw)
}

// Fail constructs a Failed with no raw detail.
func Fail(format string, args ...any) error {
	return &Failed{Message: fmt.Sprintf(format, args...)}
}

// FailWithRaw constructs a Failed carrying additional detail not meant for
// the terse state_message (e.g. a subprocess's full stderr).
func FailWithRaw(message, raw string) error {
	return &Failed{Message: message, Raw: raw}
}
