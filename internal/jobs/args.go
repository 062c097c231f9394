package jobs

import (
	"strconv"
	"strings"
)

// SignupArgs is the argument set for KindSignup: an unauthenticated
// sign-up, so it carries no owner crsid of its own — the subject's crsid
// travels inside args instead.
type SignupArgs struct {
	CRSid         string
	PreferredName string
	Surname       string
	Email         string
	MailHandler   string
	Social        bool
}

func EncodeSignupArgs(a SignupArgs) map[string]string {
	social := "n"
	if a.Social {
		social = "y"
	}
	return map[string]string{
		"crsid":          a.CRSid,
		"preferred_name": a.PreferredName,
		"surname":        a.Surname,
		"email":          a.Email,
		"mail_handler":   a.MailHandler,
		"social":         social,
	}
}

func DecodeSignupArgs(m map[string]string) SignupArgs {
	return SignupArgs{
		CRSid:         m["crsid"],
		PreferredName: m["preferred_name"],
		Surname:       m["surname"],
		Email:         m["email"],
		MailHandler:   m["mail_handler"],
		Social:        m["social"] == "y",
	}
}

// ReactivateArgs is the argument set for KindReactivate.
type ReactivateArgs struct {
	Email string
}

func EncodeReactivateArgs(a ReactivateArgs) map[string]string {
	return map[string]string{"email": a.Email}
}

func DecodeReactivateArgs(m map[string]string) ReactivateArgs {
	return ReactivateArgs{Email: m["email"]}
}

// UpdateNameArgs is the argument set for KindUpdateName.
type UpdateNameArgs struct {
	PreferredName string
	Surname       string
}

func EncodeUpdateNameArgs(a UpdateNameArgs) map[string]string {
	return map[string]string{"preferred_name": a.PreferredName, "surname": a.Surname}
}

func DecodeUpdateNameArgs(m map[string]string) UpdateNameArgs {
	return UpdateNameArgs{PreferredName: m["preferred_name"], Surname: m["surname"]}
}

// UpdateEmailArgs is the argument set for KindUpdateEmail.
type UpdateEmailArgs struct {
	Email string
}

func EncodeUpdateEmailArgs(a UpdateEmailArgs) map[string]string {
	return map[string]string{"email": a.Email}
}

func DecodeUpdateEmailArgs(m map[string]string) UpdateEmailArgs {
	return UpdateEmailArgs{Email: m["email"]}
}

// UpdateMailHandlerArgs is the argument set for KindUpdateMailHandler.
type UpdateMailHandlerArgs struct {
	MailHandler string
}

func EncodeUpdateMailHandlerArgs(a UpdateMailHandlerArgs) map[string]string {
	return map[string]string{"mail_handler": a.MailHandler}
}

func DecodeUpdateMailHandlerArgs(m map[string]string) UpdateMailHandlerArgs {
	return UpdateMailHandlerArgs{MailHandler: m["mail_handler"]}
}

// MailingListArgs is shared by the create/reset-password list job kinds,
// both the user- and society-owned variants.
type MailingListArgs struct {
	Society  string // empty for user-owned lists
	ListName string
}

func EncodeMailingListArgs(a MailingListArgs) map[string]string {
	m := map[string]string{"listname": a.ListName}
	if a.Society != "" {
		m["society"] = a.Society
	}
	return m
}

func DecodeMailingListArgs(m map[string]string) MailingListArgs {
	return MailingListArgs{Society: m["society"], ListName: m["listname"]}
}

// VhostArgs is shared by the add/change/remove vhost job kinds, both
// user- and society-owned.
type VhostArgs struct {
	Society string // empty for user-owned domains
	Domain  string
	Root    string // docroot relative to public_html, empty for none
}

func EncodeVhostArgs(a VhostArgs) map[string]string {
	m := map[string]string{"domain": a.Domain, "root": a.Root}
	if a.Society != "" {
		m["society"] = a.Society
	}
	return m
}

func DecodeVhostArgs(m map[string]string) VhostArgs {
	return VhostArgs{Society: m["society"], Domain: m["domain"], Root: m["root"]}
}

// CreateSocietyArgs is the argument set for KindCreateSociety. AdminCRSids
// is comma-joined in the args map, mirroring the original's encoding of a
// set into a single string value.
type CreateSocietyArgs struct {
	Society     string
	Description string
	AdminCRSids []string
}

func EncodeCreateSocietyArgs(a CreateSocietyArgs) map[string]string {
	return map[string]string{
		"society":     a.Society,
		"description": a.Description,
		"admins":      joinCRSids(a.AdminCRSids),
	}
}

func DecodeCreateSocietyArgs(m map[string]string) CreateSocietyArgs {
	return CreateSocietyArgs{
		Society:     m["society"],
		Description: m["description"],
		AdminCRSids: splitCRSids(m["admins"]),
	}
}

// UpdateSocietyDescriptionArgs is the argument set for
// KindUpdateSocietyDescription.
type UpdateSocietyDescriptionArgs struct {
	Society     string
	Description string
}

func EncodeUpdateSocietyDescriptionArgs(a UpdateSocietyDescriptionArgs) map[string]string {
	return map[string]string{"society": a.Society, "description": a.Description}
}

func DecodeUpdateSocietyDescriptionArgs(m map[string]string) UpdateSocietyDescriptionArgs {
	return UpdateSocietyDescriptionArgs{Society: m["society"], Description: m["description"]}
}

// UpdateSocietyRoleEmailArgs is the argument set for
// KindUpdateSocietyRoleEmail.
type UpdateSocietyRoleEmailArgs struct {
	Society string
	Email   string
}

func EncodeUpdateSocietyRoleEmailArgs(a UpdateSocietyRoleEmailArgs) map[string]string {
	return map[string]string{"society": a.Society, "email": a.Email}
}

func DecodeUpdateSocietyRoleEmailArgs(m map[string]string) UpdateSocietyRoleEmailArgs {
	return UpdateSocietyRoleEmailArgs{Society: m["society"], Email: m["email"]}
}

// AdminAction distinguishes the two ChangeSocietyAdmin operations.
type AdminAction string

const (
	AdminActionAdd    AdminAction = "add"
	AdminActionRemove AdminAction = "remove"
)

// ChangeSocietyAdminArgs is the argument set for KindChangeSocietyAdmin.
type ChangeSocietyAdminArgs struct {
	Society     string
	TargetCRSid string
	Action      AdminAction
}

func EncodeChangeSocietyAdminArgs(a ChangeSocietyAdminArgs) map[string]string {
	return map[string]string{"society": a.Society, "target_member": a.TargetCRSid, "action": string(a.Action)}
}

func DecodeChangeSocietyAdminArgs(m map[string]string) ChangeSocietyAdminArgs {
	return ChangeSocietyAdminArgs{Society: m["society"], TargetCRSid: m["target_member"], Action: AdminAction(m["action"])}
}

// CancelMemberArgs is the argument set for KindCancelMember.
type CancelMemberArgs struct {
	KeepGroups bool
}

func EncodeCancelMemberArgs(a CancelMemberArgs) map[string]string {
	v := "n"
	if a.KeepGroups {
		v = "y"
	}
	return map[string]string{"keep_groups": v}
}

func DecodeCancelMemberArgs(m map[string]string) CancelMemberArgs {
	return CancelMemberArgs{KeepGroups: m["keep_groups"] == "y"}
}

// TestArgs is the argument set for the KindTest diagnostic job used to
// exercise the runner's concurrency handling; SleepTime is clamped to 40s
// by the task layer, matching the original's safety cap.
type TestArgs struct {
	SleepTime int
}

func EncodeTestArgs(a TestArgs) map[string]string {
	return map[string]string{"sleep_time": strconv.Itoa(a.SleepTime)}
}

func DecodeTestArgs(m map[string]string) (TestArgs, error) {
	n, err := strconv.Atoi(m["sleep_time"])
	if err != nil {
		return TestArgs{}, err
	}
	return TestArgs{SleepTime: n}, nil
}

func joinCRSids(crsids []string) string {
	return strings.Join(crsids, ",")
}

func splitCRSids(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
