package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/pkg/mailer"
)

func TestBuildMessage_CarriesBothParts(t *testing.T) {
	t.Parallel()

	email := &mailer.Email{
		To:      []string{"alice@example.com"},
		Subject: "Your password has been reset",
		HTML:    "<p>new password</p>",
		Text:    "new password",
	}

	msg, err := buildMessage("SRCF Sysadmins <sysadmins@srcf.net>", email)
	require.NoError(t, err)

	s := string(msg)
	require.Contains(t, s, "To: alice@example.com")
	require.Contains(t, s, "multipart/alternative")
	require.Contains(t, s, "new password")
	require.Contains(t, s, "<p>new password</p>")
	require.Contains(t, s, "Message-Id:")
}

func TestBuildMessage_OmitsMissingText(t *testing.T) {
	t.Parallel()

	email := &mailer.Email{
		To:      []string{"bob@example.com"},
		Subject: "Hi",
		HTML:    "<p>hi</p>",
	}

	msg, err := buildMessage("sysadmins@srcf.net", email)
	require.NoError(t, err)

	parts := strings.Split(string(msg), "--srcf-")
	require.Len(t, parts, 3) // preamble + html part + closing boundary
}
