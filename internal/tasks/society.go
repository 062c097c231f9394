package tasks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/plumbing/bespoke"
	"github.com/srcf/controlplane/internal/plumbing/unix"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/task"
)

// CreateSociety registers a new society, provisions its shared UNIX
// account and home directory, links every founding admin's home symlink,
// and regenerates the legacy Apache/sudoers/membership artefacts.
func CreateSociety(ctx context.Context, d Deps, a jobs.CreateSocietyArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.CreateSociety")

	uid, err := store.NextFreeUID(ctx, d.DB, memberUIDBase)
	if err != nil {
		return task.Result{}, fmt.Errorf("allocate uid: %w", err)
	}

	if err := store.CreateSociety(ctx, d.DB, store.Society{
		Society:     a.Society,
		Description: a.Description,
		UID:         &uid,
		GID:         &uid,
	}); err != nil {
		return task.Result{}, fmt.Errorf("create society record: %w", err)
	}
	for _, crsid := range a.AdminCRSids {
		if err := store.AddSocietyAdmin(ctx, d.DB, crsid, a.Society); err != nil {
			return task.Result{}, fmt.Errorf("add founding admin %s: %w", crsid, err)
		}
	}

	homeDir := filepath.Join("/societies", a.Society)
	userResult, err := unix.EnsureUser(ctx, a.Society, unix.CreateUserOpts{
		UID:      int(uid),
		System:   true,
		Active:   false,
		HomeDir:  homeDir,
		RealName: a.Description,
	})
	if err != nil {
		return task.Result{}, fmt.Errorf("ensure society unix user: %w", err)
	}
	b.Step(userResult)

	groupResult, err := unix.EnsureGroup(ctx, a.Society, int(uid), true)
	if err != nil {
		return task.Result{}, fmt.Errorf("ensure society unix group: %w", err)
	}
	b.Step(groupResult)
	group, _ := groupResult.Value().(unix.Group)

	socUser, err := unix.GetUser(a.Society)
	if err != nil {
		return task.Result{}, err
	}
	homeResult, err := unix.CreateHome(socUser, homeDir, false)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(homeResult)

	for _, crsid := range a.AdminCRSids {
		adminUser, err := unix.GetUser(crsid)
		if err != nil {
			return task.Result{}, fmt.Errorf("look up admin %s: %w", crsid, err)
		}
		memberResult, err := unix.AddToGroup(ctx, adminUser, group)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(memberResult)

		linkResult, err := bespoke.LinkSocietyHomeDir(adminUser, a.Society, true)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(linkResult)
	}

	eximResult, err := bespoke.SetHomeEximACL(ctx, homeDir)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(eximResult)

	quotaResult, err := bespoke.SetQuota(ctx, a.Society)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(quotaResult)

	statusResult, err := bespoke.SetWebStatus(bespoke.OwnerSociety, a.Society, "subdomain")
	if err != nil {
		return task.Result{}, err
	}
	b.Step(statusResult)

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
		if err := d.Notify.NotifySociety(ctx, a.Society, "Society account created", "create-society", map[string]any{
			"description": a.Description,
		}); err != nil {
			return task.Result{}, err
		}
	}

	return b.Build(), nil
}

// AddSocietyAdmin grants a member administrative rights over a society:
// membership-table row, UNIX group membership, and the `~/<society>` home
// symlink.
func AddSocietyAdmin(ctx context.Context, d Deps, crsid, society string) (task.Result, error) {
	b := task.NewBuilder("tasks.AddSocietyAdmin")

	if err := store.AddSocietyAdmin(ctx, d.DB, crsid, society); err != nil {
		return task.Result{}, err
	}
	b.Step(task.New(task.Created))

	u, err := unix.GetUser(crsid)
	if err != nil {
		return task.Result{}, err
	}
	g, err := unix.GetGroup(society)
	if err != nil {
		return task.Result{}, err
	}
	groupResult, err := unix.AddToGroup(ctx, u, g)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(groupResult)

	linkResult, err := bespoke.LinkSocietyHomeDir(u, society, true)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(linkResult)

	return b.Build(), nil
}

// RemoveSocietyAdmin revokes a member's administrative rights over a
// society, undoing AddSocietyAdmin's three steps.
func RemoveSocietyAdmin(ctx context.Context, d Deps, crsid, society string) (task.Result, error) {
	b := task.NewBuilder("tasks.RemoveSocietyAdmin")

	if err := store.RemoveSocietyAdmin(ctx, d.DB, crsid, society); err != nil {
		return task.Result{}, err
	}
	b.Step(task.New(task.Success))

	u, err := unix.GetUser(crsid)
	if err != nil {
		return task.Result{}, err
	}
	g, err := unix.GetGroup(society)
	if err != nil {
		return task.Result{}, err
	}
	groupResult, err := unix.RemoveFromGroup(ctx, u, g)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(groupResult)

	linkResult, err := bespoke.LinkSocietyHomeDir(u, society, false)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(linkResult)

	return b.Build(), nil
}

// ChangeSocietyAdmin dispatches a ChangeSocietyAdmin job to
// AddSocietyAdmin or RemoveSocietyAdmin, enforcing that the requesting
// member is themselves a current admin of the society and, on removal,
// that at least one admin remains.
func ChangeSocietyAdmin(ctx context.Context, d Deps, requester string, a jobs.ChangeSocietyAdminArgs) (task.Result, error) {
	isAdmin, err := store.IsSocietyAdmin(ctx, d.DB, requester, a.Society)
	if err != nil {
		return task.Result{}, err
	}
	if !isAdmin {
		return task.Result{}, fmt.Errorf("%s is not permitted to change the admins of %s", requester, a.Society)
	}

	b := task.NewBuilder("tasks.ChangeSocietyAdmin")

	if a.Action == jobs.AdminActionAdd {
		result, err := AddSocietyAdmin(ctx, d, a.TargetCRSid, a.Society)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(result)
	} else {
		admins, err := store.ListSocietyAdmins(ctx, d.DB, a.Society)
		if err != nil {
			return task.Result{}, err
		}
		if len(admins) <= 1 {
			return task.Result{}, fmt.Errorf("removing all admins of %s is not supported", a.Society)
		}
		result, err := RemoveSocietyAdmin(ctx, d, a.TargetCRSid, a.Society)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(result)
	}

	syncResult, err := SyncSocietyRoles(ctx, d, a.Society)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(syncResult)

	return b.Build(), nil
}

// UpdateSocietyDescription updates a society's description.
func UpdateSocietyDescription(ctx context.Context, d Deps, a jobs.UpdateSocietyDescriptionArgs) (task.Result, error) {
	if err := store.UpdateSocietyDescription(ctx, d.DB, a.Society, a.Description); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// UpdateSocietyRoleEmail updates a society's administrative contact
// address.
func UpdateSocietyRoleEmail(ctx context.Context, d Deps, a jobs.UpdateSocietyRoleEmailArgs) (task.Result, error) {
	s, err := store.GetSociety(ctx, d.DB, a.Society)
	if err != nil {
		return task.Result{}, err
	}
	oldEmail := ""
	if s.RoleEmail != nil {
		oldEmail = *s.RoleEmail
	}
	if err := store.UpdateSocietyRoleEmail(ctx, d.DB, a.Society, &a.Email); err != nil {
		return task.Result{}, err
	}
	if d.Notify != nil {
		if err := d.Notify.NotifySociety(ctx, a.Society, "Role email updated", "role-email", map[string]any{
			"old_email": oldEmail, "new_email": a.Email,
		}); err != nil {
			return task.Result{}, err
		}
	}
	return task.New(task.Success), nil
}
