package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/plumbing/bespoke"
	"github.com/srcf/controlplane/internal/plumbing/unix"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/task"
)

// memberUIDBase is the first UID considered for auto-assignment to a new
// member or society account.
const memberUIDBase = 2000

// nisPropagationDelay is how long a freshly created UNIX account's UID/GID
// is given to propagate through NFS client caches before home directories
// are chowned to it.
const nisPropagationDelay = 16 * time.Second

// sleep is overridden by tests so CreateMember/CreateSociety don't really
// block for nisPropagationDelay.
var sleep = time.Sleep

// CreateMember registers a new member in the database and provisions their
// UNIX account, home directory, mail routing, quota, and mailing list
// subscriptions. Mirrors membership.py's create_member plus
// srcf-memberdb-cli's GID/UID convention of using the same free numeric ID
// for both.
func CreateMember(ctx context.Context, d Deps, a jobs.SignupArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.CreateMember")

	uid, err := store.NextFreeUID(ctx, d.DB, memberUIDBase)
	if err != nil {
		return task.Result{}, fmt.Errorf("allocate uid: %w", err)
	}

	name := a.PreferredName + " " + a.Surname
	if err := store.UpsertMember(ctx, d.DB, store.Member{
		CRSid:         a.CRSid,
		PreferredName: &a.PreferredName,
		Surname:       &a.Surname,
		Email:         &a.Email,
		MailHandler:   store.MailHandler(a.MailHandler),
		IsMember:      true,
		IsUser:        true,
		UID:           &uid,
		GID:           &uid,
	}); err != nil {
		return task.Result{}, fmt.Errorf("create member record: %w", err)
	}

	userResult, err := unix.EnsureUser(ctx, a.CRSid, unix.CreateUserOpts{
		UID:      int(uid),
		Active:   true,
		HomeDir:  filepath.Join("/home", a.CRSid),
		RealName: name,
	})
	if err != nil {
		return task.Result{}, fmt.Errorf("ensure unix user: %w", err)
	}
	b.Step(userResult)
	u, _ := userResult.Value().(unix.User)
	if userResult.State() == task.Unchanged {
		u, err = unix.GetUser(a.CRSid)
		if err != nil {
			return task.Result{}, err
		}
	}

	if userResult.State() == task.Created {
		if _, err := bespoke.MakeYP(ctx); err != nil {
			return task.Result{}, fmt.Errorf("sync NIS before home setup: %w", err)
		}
		sleep(nisPropagationDelay)
	}

	homeResult, err := unix.CreateHome(u, u.HomeDir, false)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(homeResult)

	eximResult, err := bespoke.SetHomeEximACL(ctx, u.HomeDir)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(eximResult)

	if a.MailHandler == string(store.MailHandlerPip) {
		fwdResult, err := bespoke.CreateForwardingFile(u, a.Email)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(fwdResult)
	}

	quotaResult, err := bespoke.SetQuota(ctx, u.Name)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(quotaResult)

	statusResult, err := bespoke.SetWebStatus(bespoke.OwnerMember, a.CRSid, "subdomain")
	if err != nil {
		return task.Result{}, err
	}
	b.Step(statusResult)

	lists := []string{"maintenance"}
	if a.Social {
		lists = append(lists, "social")
	}
	subResult, err := bespoke.QueueListSubscription(ctx, name, a.Email, lists...)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(subResult)

	groupsResult, err := bespoke.GenerateApacheGroups(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(groupsResult)

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

	if d.Notify != nil {
		if err := d.Notify.NotifyMember(ctx, a.CRSid, "Welcome to the SRCF", "signup", map[string]any{
			"name": name,
		}); err != nil {
			return task.Result{}, fmt.Errorf("send welcome email: %w", err)
		}
	}

	return b.Build(), nil
}

// ResetMemberPassword generates a new UNIX password for a member and
// emails it to them.
func ResetMemberPassword(ctx context.Context, d Deps, crsid string) (task.Result, error) {
	u, err := unix.GetUser(crsid)
	if err != nil {
		return task.Result{}, fmt.Errorf("reset password: %w", err)
	}
	result, err := unix.ResetPassword(ctx, u)
	if err != nil {
		return task.Result{}, err
	}
	passwd, _ := result.Value().(task.Password)
	if d.Notify != nil {
		if err := d.Notify.NotifyMember(ctx, crsid, "Your SRCF password has been reset", "reset-password", map[string]any{
			"password": passwd.String(),
		}); err != nil {
			return task.Result{}, fmt.Errorf("send password reset email: %w", err)
		}
	}
	return result, nil
}

// UpdateMemberName updates a member's preferred name and surname.
func UpdateMemberName(ctx context.Context, d Deps, crsid string, a jobs.UpdateNameArgs) (task.Result, error) {
	m, err := store.GetMember(ctx, d.DB, crsid)
	if err != nil {
		return task.Result{}, err
	}
	m.PreferredName = &a.PreferredName
	m.Surname = &a.Surname
	if err := store.UpsertMember(ctx, d.DB, m); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// UpdateMemberEmail updates a member's contact email, and re-points their
// .forward file if it still pointed at the old address.
func UpdateMemberEmail(ctx context.Context, d Deps, crsid string, a jobs.UpdateEmailArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.UpdateMemberEmail")

	m, err := store.GetMember(ctx, d.DB, crsid)
	if err != nil {
		return task.Result{}, err
	}
	oldEmail := ""
	if m.Email != nil {
		oldEmail = *m.Email
	}
	m.Email = &a.Email
	if err := store.UpsertMember(ctx, d.DB, m); err != nil {
		return task.Result{}, err
	}
	b.Step(task.New(task.Success))

	if m.MailHandler == store.MailHandlerPip {
		u, err := unix.GetUser(crsid)
		if err == nil {
			fwdResult, ferr := bespoke.CreateForwardingFile(u, a.Email)
			if ferr == nil {
				b.Step(fwdResult)
			}
		}
	}

	if d.Notify != nil {
		if err := d.Notify.NotifyMember(ctx, crsid, "Email address updated", "email", map[string]any{
			"old_email": oldEmail, "new_email": a.Email,
		}); err != nil {
			return task.Result{}, err
		}
	}
	return b.Build(), nil
}

// UpdateMemberMailHandler switches a member's mail-routing strategy.
func UpdateMemberMailHandler(ctx context.Context, d Deps, crsid string, a jobs.UpdateMailHandlerArgs) (task.Result, error) {
	m, err := store.GetMember(ctx, d.DB, crsid)
	if err != nil {
		return task.Result{}, err
	}
	m.MailHandler = store.MailHandler(a.MailHandler)
	if err := store.UpsertMember(ctx, d.DB, m); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// ReactivateMember re-enables a previously cancelled member: UNIX account,
// password, email, and legacy NIS propagation.
func ReactivateMember(ctx context.Context, d Deps, crsid string, a jobs.ReactivateArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.ReactivateMember")

	m, err := store.GetMember(ctx, d.DB, crsid)
	if err != nil {
		return task.Result{}, err
	}
	oldEmail := ""
	if m.Email != nil {
		oldEmail = *m.Email
	}
	m.Email = &a.Email
	m.IsMember = true
	m.IsUser = true
	if err := store.UpsertMember(ctx, d.DB, m); err != nil {
		return task.Result{}, err
	}
	b.Step(task.New(task.Success))

	u, err := unix.GetUser(crsid)
	if err != nil {
		return task.Result{}, err
	}
	enableResult, err := unix.EnableUser(ctx, u, true)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(enableResult)

	passwdResult, err := unix.ResetPassword(ctx, u)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(passwdResult)
	passwd, _ := passwdResult.Value().(task.Password)

	ypResult, err := bespoke.MakeYP(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(ypResult)

	if oldEmail != "" {
		if fwdResult, ferr := bespoke.CreateForwardingFile(u, a.Email); ferr == nil {
			b.Step(fwdResult)
		}
	}

	if d.Notify != nil {
		if err := d.Notify.NotifyMember(ctx, crsid, "Account reactivated", "reactivate", map[string]any{
			"new_email": a.Email, "password": passwd.String(),
		}); err != nil {
			return task.Result{}, err
		}
	}
	return b.Build(), nil
}
