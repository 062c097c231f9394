package runner

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/srcf/controlplane/internal/plumbing/bespoke"
	"github.com/srcf/controlplane/internal/store"
)

// certSweepSchedule matches the runner's own 600-second backstop poll
// interval, so a domain's cert request is issued about as promptly as any
// other queued job would be.
const certSweepSchedule = "@every 10m"

// StartCertSweep schedules the periodic sweep for domains that have
// resolved correctly but carry no certificate yet, issuing one via
// bespoke.RequestCert for each. It returns the running cron.Cron so the
// caller can Stop it on shutdown.
func (r *Runner) StartCertSweep(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(certSweepSchedule, func() { r.sweepCerts(ctx) })
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func (r *Runner) sweepCerts(ctx context.Context) {
	due, err := store.ListDueForCert(ctx, r.deps.DB)
	if err != nil {
		r.log.Error("cert sweep: list due domains", "error", err)
		return
	}
	for _, d := range due {
		if _, err := bespoke.RequestCert(ctx, d.Domain); err != nil {
			r.log.Error("cert sweep: request cert", "domain", d.Domain, "error", err)
			continue
		}
		if _, err := store.CreateCert(ctx, r.deps.DB, d.Domain, d.Danger); err != nil {
			r.log.Error("cert sweep: record cert", "domain", d.Domain, "error", err)
			continue
		}
		r.log.Info("cert sweep: issued certificate", "domain", d.Domain)
	}
}
