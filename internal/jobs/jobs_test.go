package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/store"
)

func TestScrubRedactsSensitiveArgsOnly(t *testing.T) {
	t.Parallel()

	args := map[string]string{"domain": "foo.srcf.net", "root": "blog"}
	got := Scrub(KindAddUserVhost, args)
	assert.Equal(t, RedactionMarker, got["domain"])
	assert.Equal(t, RedactionMarker, got["root"])

	args["domain"] = "untouched.example.com"
	assert.NotEqual(t, args["domain"], got["domain"], "Scrub must not mutate the input map")
}

func TestScrubLeavesNonSensitiveKindsUntouched(t *testing.T) {
	t.Parallel()

	args := map[string]string{"sleep_time": "5"}
	got := Scrub(KindTest, args)
	assert.Equal(t, args, got)
}

func TestSignupArgsRoundTrip(t *testing.T) {
	t.Parallel()

	a := SignupArgs{CRSid: "abc123", PreferredName: "Ada", Surname: "Lovelace", Email: "ada@example.com", MailHandler: "forward", Social: true}
	got := DecodeSignupArgs(EncodeSignupArgs(a))
	assert.Equal(t, a, got)
}

func TestCreateSocietyArgsRoundTrip(t *testing.T) {
	t.Parallel()

	a := CreateSocietyArgs{Society: "cusu-tech", Description: "Tech society", AdminCRSids: []string{"abc123", "xyz789"}}
	got := DecodeCreateSocietyArgs(EncodeCreateSocietyArgs(a))
	assert.Equal(t, a, got)
}

func TestApplyRejectsWrongState(t *testing.T) {
	t.Parallel()

	err := Apply(context.Background(), nil, 1, store.JobStateQueued, ActionApprove, "")
	var invalid *ErrActionInvalid
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, store.JobStateQueued, invalid.State)
}

func TestRequiresApprovalVhostAlwaysTrue(t *testing.T) {
	t.Parallel()

	assert.True(t, RequiresApproval(KindAddUserVhost, false))
}

func TestRequiresApprovalSignupAlwaysFalse(t *testing.T) {
	t.Parallel()

	assert.False(t, RequiresApproval(KindSignup, true))
}

func TestRequiresApprovalForAdminRemovalSoleAdminWithRoleEmail(t *testing.T) {
	t.Parallel()

	assert.True(t, RequiresApprovalForAdminRemoval(false, AdminActionRemove, 1, true))
	assert.False(t, RequiresApprovalForAdminRemoval(false, AdminActionRemove, 2, true))
	assert.False(t, RequiresApprovalForAdminRemoval(false, AdminActionAdd, 1, true))
}
