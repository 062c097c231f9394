package bespoke

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/plumbing/unix"
	"github.com/srcf/controlplane/internal/task"
)

func TestLinkSocietyHomeDirCreatesSymlinkForAdmin(t *testing.T) {
	home := t.TempDir()
	member := unix.User{Name: "alice", HomeDir: home}

	result, err := LinkSocietyHomeDir(member, "cusu-tech", true)
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())

	target, err := os.Readlink(filepath.Join(home, "cusu-tech"))
	require.NoError(t, err)
	assert.Equal(t, "/societies/cusu-tech", target)
}

func TestLinkSocietyHomeDirUnchangedWhenAlreadyLinked(t *testing.T) {
	home := t.TempDir()
	member := unix.User{Name: "alice", HomeDir: home}

	_, err := LinkSocietyHomeDir(member, "cusu-tech", true)
	require.NoError(t, err)

	result, err := LinkSocietyHomeDir(member, "cusu-tech", true)
	require.NoError(t, err)
	assert.Equal(t, task.Unchanged, result.State())
}

func TestLinkSocietyHomeDirRemovesSymlinkWhenNoLongerAdmin(t *testing.T) {
	home := t.TempDir()
	member := unix.User{Name: "alice", HomeDir: home}

	_, err := LinkSocietyHomeDir(member, "cusu-tech", true)
	require.NoError(t, err)

	result, err := LinkSocietyHomeDir(member, "cusu-tech", false)
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())

	_, err = os.Readlink(filepath.Join(home, "cusu-tech"))
	assert.Error(t, err)
}

func TestCreateForwardingFileWritesEmail(t *testing.T) {
	home := t.TempDir()
	u := unix.User{Name: "alice", HomeDir: home, UID: -1, GID: -1}

	result, err := CreateForwardingFile(u, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())

	got, err := os.ReadFile(filepath.Join(home, ".forward"))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com\n", string(got))
}

func TestSetHomeEximACLUsesEximUID(t *testing.T) {
	prevLookup := lookupEximUID
	lookupEximUID = func() (int, error) { return 42, nil }
	defer func() { lookupEximUID = prevLookup }()

	fake := &fakeRunner{}
	prevRunner := runner
	runner = fake
	defer func() { runner = prevRunner }()

	result, err := SetHomeEximACL(context.Background(), "/home/alice")
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{"/usr/bin/setfacl", "-m", "u:42:x", "/home/alice"}, fake.calls[0])
}

type fakeRunner struct {
	calls [][]string
	stdin [][]byte
}

func (f *fakeRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	f.stdin = append(f.stdin, stdin)
	return nil, nil
}
