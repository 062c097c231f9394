package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuppressed_NeverErrors(t *testing.T) {
	t.Parallel()

	s := NewSuppressed(nil)
	ctx := context.Background()

	require.NoError(t, s.NotifyMember(ctx, "ab123", "subject", "template", nil))
	require.NoError(t, s.NotifySociety(ctx, "rowing", "subject", "template", nil))
	require.NoError(t, s.NotifySysadmins(ctx, "subject", "body"))
}
