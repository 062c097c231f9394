package tasks

import (
	"context"
	"fmt"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/plumbing/bespoke"
	"github.com/srcf/controlplane/internal/plumbing/mailman"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/task"
)

// listOwnerEmail resolves the address mailman should record as a new
// list's owner, and how to notify once it's ready.
func listOwnerEmail(ctx context.Context, d Deps, society, crsid string) (string, func(subject, template string, data map[string]any) error, error) {
	if society != "" {
		s, err := store.GetSociety(ctx, d.DB, society)
		if err != nil {
			return "", nil, err
		}
		email := ""
		if s.RoleEmail != nil {
			email = *s.RoleEmail
		}
		return email, func(subject, template string, data map[string]any) error {
			if d.Notify == nil {
				return nil
			}
			return d.Notify.NotifySociety(ctx, society, subject, template, data)
		}, nil
	}
	m, err := store.GetMember(ctx, d.DB, crsid)
	if err != nil {
		return "", nil, err
	}
	email := ""
	if m.Email != nil {
		email = *m.Email
	}
	return email, func(subject, template string, data map[string]any) error {
		if d.Notify == nil {
			return nil
		}
		return d.Notify.NotifyMember(ctx, crsid, subject, template, data)
	}, nil
}

// CreateUserMailingList creates a new mailing list owned by a member.
func CreateUserMailingList(ctx context.Context, d Deps, crsid string, a jobs.MailingListArgs) (task.Result, error) {
	return createMailingList(ctx, d, "", crsid, a.ListName)
}

// CreateSocietyMailingList creates a new mailing list owned by a society.
func CreateSocietyMailingList(ctx context.Context, d Deps, society string, a jobs.MailingListArgs) (task.Result, error) {
	return createMailingList(ctx, d, society, "", a.ListName)
}

func createMailingList(ctx context.Context, d Deps, society, crsid, listName string) (task.Result, error) {
	b := task.NewBuilder("tasks.createMailingList")

	owner, notify, err := listOwnerEmail(ctx, d, society, crsid)
	if err != nil {
		return task.Result{}, err
	}

	listResult, err := mailman.CreateList(ctx, listName, owner)
	if err != nil {
		return task.Result{}, fmt.Errorf("create mailing list: %w", err)
	}
	b.Step(listResult)

	cfgResult, err := bespoke.ConfigureMailingList(ctx, listName)
	if err != nil {
		return task.Result{}, fmt.Errorf("configure mailing list: %w", err)
	}
	b.Step(cfgResult)

	if passwd, ok := listResult.Value().(task.Password); ok {
		if err := notify(fmt.Sprintf("Mailing list %s created", listName), "create-mailing-list", map[string]any{
			"list": listName, "password": passwd.String(),
		}); err != nil {
			return task.Result{}, err
		}
	}
	return b.Build(), nil
}

// ResetUserMailingListPassword resets the admin password of a member-owned
// mailing list.
func ResetUserMailingListPassword(ctx context.Context, d Deps, crsid string, a jobs.MailingListArgs) (task.Result, error) {
	return resetMailingListPassword(ctx, d, "", crsid, a.ListName)
}

// ResetSocietyMailingListPassword resets the admin password of a
// society-owned mailing list.
func ResetSocietyMailingListPassword(ctx context.Context, d Deps, society string, a jobs.MailingListArgs) (task.Result, error) {
	return resetMailingListPassword(ctx, d, society, "", a.ListName)
}

func resetMailingListPassword(ctx context.Context, d Deps, society, crsid, listName string) (task.Result, error) {
	_, notify, err := listOwnerEmail(ctx, d, society, crsid)
	if err != nil {
		return task.Result{}, err
	}

	mlist, err := mailman.GetList(listName)
	if err != nil {
		return task.Result{}, fmt.Errorf("reset mailing list password: %w", err)
	}
	result, err := mailman.ResetPassword(ctx, mlist)
	if err != nil {
		return task.Result{}, err
	}
	passwd, _ := result.Value().(task.Password)
	if err := notify(fmt.Sprintf("Mailing list %s password reset", listName), "reset-mailing-list-password", map[string]any{
		"list": listName, "password": passwd.String(),
	}); err != nil {
		return task.Result{}, err
	}
	return result, nil
}
