package notify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeData_StripsHTMLFromStrings(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"description": `<script>alert(1)</script>A society for rowing`,
		"count":       3,
	}

	out := sanitizeData(in)

	require.Equal(t, "A society for rowing", out["description"])
	require.Equal(t, 3, out["count"])
}

func TestDefaultConfig_HasFallbackSMTPHost(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NotEmpty(t, cfg.Host)
	require.NotEmpty(t, cfg.FromEmail)
}
