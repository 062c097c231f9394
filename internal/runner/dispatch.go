package runner

import (
	"context"
	"fmt"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/task"
	"github.com/srcf/controlplane/internal/tasks"
)

// handler runs the work a single job kind describes and returns the
// resulting task tree. The job's owner_crsid (nil for the unauthenticated
// sign-up flow) and decoded args are already validated by the time a
// handler is invoked.
type handler func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error)

func ownerCRSid(j store.Job) (string, error) {
	if j.OwnerCRSid == nil || *j.OwnerCRSid == "" {
		return "", jobs.Fail("job %d has no owning member", j.JobID)
	}
	return *j.OwnerCRSid, nil
}

// handlers maps every job.Kind to the tasks.* workflow that executes it.
// A kind present in jobs.ArgNames but missing here is a build-time gap; New
// panics if the two don't line up exactly.
var handlers = map[jobs.Kind]handler{
	jobs.KindTest: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		a, err := jobs.DecodeTestArgs(j.Args)
		if err != nil {
			return task.Result{}, jobs.Fail("invalid test job args: %v", err)
		}
		return tasks.TestJob(ctx, a)
	},
	jobs.KindSignup: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.CreateMember(ctx, d, jobs.DecodeSignupArgs(j.Args))
	},
	jobs.KindReactivate: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.ReactivateMember(ctx, d, crsid, jobs.DecodeReactivateArgs(j.Args))
	},
	jobs.KindResetUserPassword: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.ResetMemberPassword(ctx, d, crsid)
	},
	jobs.KindUpdateName: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.UpdateMemberName(ctx, d, crsid, jobs.DecodeUpdateNameArgs(j.Args))
	},
	jobs.KindUpdateEmail: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.UpdateMemberEmail(ctx, d, crsid, jobs.DecodeUpdateEmailArgs(j.Args))
	},
	jobs.KindUpdateMailHandler: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.UpdateMemberMailHandler(ctx, d, crsid, jobs.DecodeUpdateMailHandlerArgs(j.Args))
	},

	jobs.KindCreateUserMailingList: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.CreateUserMailingList(ctx, d, crsid, jobs.DecodeMailingListArgs(j.Args))
	},
	jobs.KindResetUserMailingListPassword: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.ResetUserMailingListPassword(ctx, d, crsid, jobs.DecodeMailingListArgs(j.Args))
	},
	jobs.KindCreateSocietyMailingList: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		a := jobs.DecodeMailingListArgs(j.Args)
		return tasks.CreateSocietyMailingList(ctx, d, a.Society, a)
	},
	jobs.KindResetSocietyMailingListPassword: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		a := jobs.DecodeMailingListArgs(j.Args)
		return tasks.ResetSocietyMailingListPassword(ctx, d, a.Society, a)
	},

	jobs.KindAddUserVhost: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.AddUserVhost(ctx, d, crsid, jobs.DecodeVhostArgs(j.Args))
	},
	jobs.KindChangeUserVhostDocroot: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.ChangeUserVhostDocroot(ctx, d, crsid, jobs.DecodeVhostArgs(j.Args))
	},
	jobs.KindRemoveUserVhost: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.RemoveUserVhost(ctx, d, crsid, jobs.DecodeVhostArgs(j.Args))
	},
	jobs.KindAddSocietyVhost: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		a := jobs.DecodeVhostArgs(j.Args)
		return tasks.AddSocietyVhost(ctx, d, a.Society, a)
	},
	jobs.KindChangeSocietyVhostRoot: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		a := jobs.DecodeVhostArgs(j.Args)
		return tasks.ChangeSocietyVhostDocroot(ctx, d, a.Society, a)
	},
	jobs.KindRemoveSocietyVhost: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		a := jobs.DecodeVhostArgs(j.Args)
		return tasks.RemoveSocietyVhost(ctx, d, a.Society, a)
	},

	jobs.KindCreateSociety: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.CreateSociety(ctx, d, jobs.DecodeCreateSocietyArgs(j.Args))
	},
	jobs.KindUpdateSocietyDescription: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.UpdateSocietyDescription(ctx, d, jobs.DecodeUpdateSocietyDescriptionArgs(j.Args))
	},
	jobs.KindUpdateSocietyRoleEmail: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.UpdateSocietyRoleEmail(ctx, d, jobs.DecodeUpdateSocietyRoleEmailArgs(j.Args))
	},
	jobs.KindChangeSocietyAdmin: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.ChangeSocietyAdmin(ctx, d, crsid, jobs.DecodeChangeSocietyAdminArgs(j.Args))
	},

	jobs.KindCreateMySQLUserDatabase: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.CreateMySQLUserDatabase(ctx, d, crsid)
	},
	jobs.KindResetMySQLUserPassword: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.ResetMySQLUserPassword(ctx, d, crsid)
	},
	jobs.KindCreateMySQLSocietyDatabase: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.CreateMySQLSocietyDatabase(ctx, d, j.Args["society"])
	},
	jobs.KindResetMySQLSocietyPassword: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.ResetMySQLSocietyPassword(ctx, d, j.Args["society"])
	},
	jobs.KindCreatePostgresUserDatabase: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.CreatePostgresUserDatabase(ctx, d, crsid)
	},
	jobs.KindResetPostgresUserPassword: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.ResetPostgresUserPassword(ctx, d, crsid)
	},
	jobs.KindCreatePostgresSocietyDatabase: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.CreatePostgresSocietyDatabase(ctx, d, j.Args["society"])
	},
	jobs.KindResetPostgresSocietyPassword: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.ResetPostgresSocietyPassword(ctx, d, j.Args["society"])
	},

	jobs.KindCancelMember: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.CancelMember(ctx, d, crsid, jobs.DecodeCancelMemberArgs(j.Args))
	},
	jobs.KindDeleteMember: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		crsid, err := ownerCRSid(j)
		if err != nil {
			return task.Result{}, err
		}
		return tasks.DeleteMember(ctx, d, crsid)
	},
	jobs.KindDeleteSociety: func(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
		return tasks.DeleteSociety(ctx, d, j.Args["society"])
	},
}

// dispatch looks up and runs the handler for a job's kind.
func dispatch(ctx context.Context, d tasks.Deps, j store.Job) (task.Result, error) {
	h, ok := handlers[jobs.Kind(j.Type)]
	if !ok {
		return task.Result{}, fmt.Errorf("runner: no handler registered for job kind %q", j.Type)
	}
	return h(ctx, d, j)
}
