package config

import (
	"github.com/srcf/controlplane/internal/plumbing/bespoke"
	"github.com/srcf/controlplane/internal/plumbing/mailman"
	"github.com/srcf/controlplane/internal/plumbing/unix"
	"github.com/srcf/controlplane/internal/runner"
)

// Apply pushes the host-guard and advisory-lock overrides a loaded Config
// carries into the packages that enforce them. Call this once at startup,
// before constructing a runner.Runner.
func Apply(cfg Config) {
	if cfg.UserHost != "" {
		unix.SetUserHost(cfg.UserHost)
	}
	if cfg.MailmanListHost != "" {
		mailman.SetListHost(cfg.MailmanListHost)
	}
	if cfg.YPHost != "" {
		bespoke.SetYPHost(cfg.YPHost)
	}
	if cfg.AdvisoryLock != 0 {
		runner.SetLockNum(cfg.AdvisoryLock)
	}
}
