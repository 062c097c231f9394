package bespoke

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/task"
)

func withWebStatusRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := webStatusRoot
	webStatusRoot = dir
	t.Cleanup(func() { webStatusRoot = prev })
	return dir
}

func TestSetWebStatusAppendsNewEntry(t *testing.T) {
	dir := withWebStatusRoot(t)
	path := filepath.Join(dir, "memberwebstatus")
	require.NoError(t, os.WriteFile(path, []byte("alice:static\n"), 0o644))

	result, err := SetWebStatus(OwnerMember, "bob", "php")
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice:static\nbob:php\n", string(got))
}

func TestSetWebStatusUpdatesExistingEntry(t *testing.T) {
	dir := withWebStatusRoot(t)
	path := filepath.Join(dir, "socwebstatus")
	require.NoError(t, os.WriteFile(path, []byte("cusu-tech:static\n"), 0o644))

	result, err := SetWebStatus(OwnerSociety, "cusu-tech", "proxy")
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cusu-tech:proxy\n", string(got))
}

func TestSetWebStatusUnchangedWhenAlreadySet(t *testing.T) {
	dir := withWebStatusRoot(t)
	path := filepath.Join(dir, "memberwebstatus")
	require.NoError(t, os.WriteFile(path, []byte("alice:static\n"), 0o644))

	result, err := SetWebStatus(OwnerMember, "alice", "static")
	require.NoError(t, err)
	assert.Equal(t, task.Unchanged, result.State())
}
