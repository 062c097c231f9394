package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/config"
)

func TestLoad_DefaultsWithNoFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "pip", cfg.UserHost)
	require.Equal(t, "pip", cfg.MailmanListHost)
	require.NotZero(t, cfg.AdvisoryLock)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SRCF_STORE_DSN", "postgres://runner@localhost/srcf")
	t.Setenv("SRCF_USER_HOST", "pipette")
	t.Setenv("SRCF_SMTP_HOST", "mail.internal:25")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "postgres://runner@localhost/srcf", cfg.StoreDSN)
	require.Equal(t, "pipette", cfg.UserHost)
	require.Equal(t, "mail.internal:25", cfg.SMTP.Host)
}
