package bespoke

import (
	"context"

	"github.com/srcf/controlplane/internal/task"
)

// RequestCert issues a Let's Encrypt certificate for domain via the
// facility's certbot wrapper, run once a domain has resolved correctly for
// long enough to be considered eligible.
func RequestCert(ctx context.Context, domain string) (task.Result, error) {
	if _, err := run(ctx, "/usr/local/sbin/srcf-request-cert", domain); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Created), nil
}
