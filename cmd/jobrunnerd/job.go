package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srcf/controlplane/internal/config"
	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/pkg/db"
)

var actionMessage string

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "transition a job's state as an operator",
}

func init() {
	jobCmd.PersistentFlags().StringVar(&actionMessage, "message", "", "state_message to record with the transition")
	for _, sub := range []struct {
		use    string
		short  string
		action jobs.Action
	}{
		{"approve <job-id>", "move an unapproved job to queued", jobs.ActionApprove},
		{"reject <job-id>", "withdraw an unapproved job", jobs.ActionReject},
		{"cancel <job-id>", "fail a queued job before it runs", jobs.ActionCancel},
		{"abort <job-id>", "fail a running job", jobs.ActionAbort},
		{"repeat <job-id>", "requeue a completed job", jobs.ActionRepeat},
		{"retry <job-id>", "requeue a failed job", jobs.ActionRetry},
	} {
		sub := sub
		jobCmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runJobAction(cmd, args[0], sub.action)
			},
		})
	}
	rootCmd.AddCommand(jobCmd)
}

func runJobAction(cmd *cobra.Command, idArg string, action jobs.Action) error {
	ctx := cmd.Context()

	var jobID int32
	if _, err := fmt.Sscanf(idArg, "%d", &jobID); err != nil {
		return fmt.Errorf("jobrunnerd: invalid job id %q: %w", idArg, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("jobrunnerd: %w", err)
	}

	pool, err := db.Open(ctx, cfg.StoreDSN)
	if err != nil {
		return fmt.Errorf("jobrunnerd: %w", err)
	}
	defer pool.Close()

	job, err := store.GetJob(ctx, pool, jobID)
	if err != nil {
		return fmt.Errorf("jobrunnerd: look up job %d: %w", jobID, err)
	}

	if err := jobs.Apply(ctx, pool, jobID, job.State, action, actionMessage); err != nil {
		return fmt.Errorf("jobrunnerd: %s job %d: %w", action, jobID, err)
	}
	fmt.Printf("job %d: %s\n", jobID, action)
	return nil
}
