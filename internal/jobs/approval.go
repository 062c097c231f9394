package jobs

// RequiresApproval decides whether a newly created job of the given kind
// must start in the unapproved state rather than queued, based on whether
// any involved entity is flagged danger and on a handful of kind-specific
// policy overrides mirrored from jobs.py's `new` classmethods.
//
// entitiesDanger reports whether the owner, target member, or society
// involved in this job (whichever apply) are flagged danger=true.
func RequiresApproval(kind Kind, entitiesDanger bool) bool {
	switch kind {
	case KindSignup, KindCreateSociety:
		// Unauthenticated sign-ups and society creation always queue
		// directly; a human reviews them through other means.
		return false
	case KindTest:
		return false
	case KindAddUserVhost, KindAddSocietyVhost:
		// Every vhost addition requires approval regardless of danger,
		// since ownership of the requested domain isn't validated.
		return true
	default:
		return entitiesDanger
	}
}

// RequiresApprovalForRoleEmail extends RequiresApproval for
// KindUpdateSocietyRoleEmail, which also requires approval whenever a
// non-empty role email is being set (not just on danger).
func RequiresApprovalForRoleEmail(entitiesDanger bool, email string) bool {
	return entitiesDanger || email != ""
}

// RequiresApprovalForAdminRemoval extends RequiresApproval for
// KindChangeSocietyAdmin's remove action, which also requires approval
// when removing the sole remaining admin of a society that has a
// role_email configured.
func RequiresApprovalForAdminRemoval(entitiesDanger bool, action AdminAction, remainingAdmins int, hasRoleEmail bool) bool {
	if entitiesDanger {
		return true
	}
	return action == AdminActionRemove && remainingAdmins == 1 && hasRoleEmail
}
