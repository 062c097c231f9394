package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/plumbing/bespoke"
	"github.com/srcf/controlplane/internal/plumbing/unix"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/task"
)

// now is overridden by tests so archive/audit timestamps are deterministic.
var now = time.Now

// scrubJobArgs overwrites every sensitive argument in the given jobs with
// jobs.RedactionMarker and writes the result back, leaving the shape of the
// job history intact for auditing while purging the personal data it
// carried.
func scrubJobArgs(ctx context.Context, d Deps, jobRows []store.Job) error {
	for _, j := range jobRows {
		scrubbed := jobs.Scrub(jobs.Kind(j.Type), j.Args)
		if err := store.UpdateJobArgs(ctx, d.DB, j.JobID, scrubbed); err != nil {
			return fmt.Errorf("scrub job %d: %w", j.JobID, err)
		}
	}
	return nil
}

// CancelMember suspends a member's account without deleting it: UNIX login
// is disabled and their processes killed, but their home directory, group
// memberships (unless keep_groups is false), and database state survive
// for a possible future ReactivateMember.
func CancelMember(ctx context.Context, d Deps, crsid string, a jobs.CancelMemberArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.CancelMember")

	m, err := store.GetMember(ctx, d.DB, crsid)
	if err != nil {
		return task.Result{}, err
	}
	m.IsMember = false
	if err := store.UpsertMember(ctx, d.DB, m); err != nil {
		return task.Result{}, err
	}
	b.Step(task.New(task.Success))

	u, err := unix.GetUser(crsid)
	if err != nil {
		return task.Result{}, err
	}
	disableResult, err := unix.EnableUser(ctx, u, false)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(disableResult)

	slayResult, err := bespoke.SlayUser(ctx, crsid)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(slayResult)

	if !a.KeepGroups {
		societies, err := store.ListSocietiesForAdmin(ctx, d.DB, crsid)
		if err != nil {
			return task.Result{}, err
		}
		for _, s := range societies {
			g, err := unix.GetGroup(s.Society)
			if err != nil {
				continue
			}
			groupResult, err := unix.RemoveFromGroup(ctx, u, g)
			if err != nil {
				return task.Result{}, err
			}
			b.Step(groupResult)
		}
	}

	ypResult, err := bespoke.MakeYP(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(ypResult)

	b.Step(bespoke.LogToFile(now().Format(time.RFC3339), crsid, "cancel_member"))

	return b.Build(), nil
}

// DeleteMember permanently removes a cancelled member's account: home
// directory archived and wiped, UNIX account and group anonymised (renamed
// rather than deleted, since historical job and mail records still
// reference the numeric UID), and every sensitive argument in their job
// history scrubbed.
func DeleteMember(ctx context.Context, d Deps, crsid string) (task.Result, error) {
	b := task.NewBuilder("tasks.DeleteMember")

	u, err := unix.GetUser(crsid)
	if err != nil {
		return task.Result{}, fmt.Errorf("delete member: %w", err)
	}

	slayResult, err := bespoke.SlayUser(ctx, crsid)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(slayResult)

	dest, err := bespoke.Archive(ctx, bespoke.OwnerMember, crsid, u.HomeDir, now().Format("20060102"))
	if err != nil {
		return task.Result{}, err
	}
	b.Step(task.NewValue(task.Success, dest))

	anon := fmt.Sprintf("exmember%d", u.UID)
	renameResult, err := unix.RenameUser(ctx, u, anon)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(renameResult)

	if g, gerr := unix.GetGroup(crsid); gerr == nil {
		groupRenameResult, err := unix.RenameGroup(ctx, g, anon)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(groupRenameResult)
	}

	jobRows, err := store.ListJobsForOwner(ctx, d.DB, crsid)
	if err != nil {
		return task.Result{}, err
	}
	if err := scrubJobArgs(ctx, d, jobRows); err != nil {
		return task.Result{}, err
	}
	b.Step(task.New(task.Success))

	if err := store.DeleteMember(ctx, d.DB, crsid); err != nil {
		return task.Result{}, fmt.Errorf("delete member record: %w", err)
	}
	b.Step(task.New(task.Success))

	exportResult, err := bespoke.ExportMembers(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(exportResult)

	ypResult, err := bespoke.MakeYP(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(ypResult)

	b.Step(bespoke.LogToFile(now().Format(time.RFC3339), crsid, "delete_member"))

	return b.Build(), nil
}

// DeleteSociety permanently removes a society: home directory archived and
// wiped, UNIX account and group anonymised, every admin's home symlink torn
// down, and every sensitive argument in the society's job history scrubbed.
func DeleteSociety(ctx context.Context, d Deps, society string) (task.Result, error) {
	b := task.NewBuilder("tasks.DeleteSociety")

	u, err := unix.GetUser(society)
	if err != nil {
		return task.Result{}, fmt.Errorf("delete society: %w", err)
	}

	admins, err := store.ListSocietyAdmins(ctx, d.DB, society)
	if err != nil {
		return task.Result{}, err
	}
	for _, admin := range admins {
		adminUser, err := unix.GetUser(admin.CRSid)
		if err != nil {
			continue
		}
		linkResult, err := bespoke.LinkSocietyHomeDir(adminUser, society, false)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(linkResult)
		if err := store.RemoveSocietyAdmin(ctx, d.DB, admin.CRSid, society); err != nil {
			return task.Result{}, err
		}
	}

	dest, err := bespoke.Archive(ctx, bespoke.OwnerSociety, society, u.HomeDir, now().Format("20060102"))
	if err != nil {
		return task.Result{}, err
	}
	b.Step(task.NewValue(task.Success, dest))

	anon := fmt.Sprintf("exsociety%d", u.UID)
	renameResult, err := unix.RenameUser(ctx, u, anon)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(renameResult)

	if g, gerr := unix.GetGroup(society); gerr == nil {
		groupRenameResult, err := unix.RenameGroup(ctx, g, anon)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(groupRenameResult)
	}

	jobRows, err := store.ListJobsByArg(ctx, d.DB, "society", society)
	if err != nil {
		return task.Result{}, err
	}
	if err := scrubJobArgs(ctx, d, jobRows); err != nil {
		return task.Result{}, err
	}
	b.Step(task.New(task.Success))

	if err := store.DeleteSociety(ctx, d.DB, society); err != nil {
		return task.Result{}, fmt.Errorf("delete society record: %w", err)
	}
	b.Step(task.New(task.Success))

	groupsResult, err := bespoke.GenerateApacheGroups(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(groupsResult)

	sudoResult, err := bespoke.GenerateSudoers(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(sudoResult)

	ypResult, err := bespoke.MakeYP(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(ypResult)

	b.Step(bespoke.LogToFile(now().Format(time.RFC3339), society, "delete_society"))

	return b.Build(), nil
}
