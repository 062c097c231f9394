package task

import (
	"fmt"
	"os"
)

// ErrWrongHost is returned by a host-guarded call when invoked on a host
// that is not in the guard's allowed set.
type ErrWrongHost struct {
	Func     string
	Host     string
	Expected []string
}

func (e *ErrWrongHost) Error() string {
	return fmt.Sprintf("%s must run on %v, not %s", e.Func, e.Expected, e.Host)
}

// hostnameFunc is swappable in tests.
var hostnameFunc = os.Hostname

// StubHostname overrides the hostname RequireHost checks against, for use by
// other packages' tests that exercise host-guarded code paths. It returns a
// restore function to undo the override.
func StubHostname(name string) (restore func()) {
	prev := hostnameFunc
	hostnameFunc = func() (string, error) { return name, nil }
	return func() { hostnameFunc = prev }
}

// RequireHost raises an error when the current host is not one of the
// allowed names. Mirrors the Python `require_host` precondition decorator:
// operations tagged with it (NIS updates, adduser, Mailman utilities) must
// only run on the authoritative host for that subsystem.
func RequireHost(funcName string, allowed ...string) error {
	host, err := hostnameFunc()
	if err != nil {
		return fmt.Errorf("task: determine hostname: %w", err)
	}
	for _, a := range allowed {
		if a == host {
			return nil
		}
	}
	return &ErrWrongHost{Func: funcName, Host: host, Expected: allowed}
}
