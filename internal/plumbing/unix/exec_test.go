package unix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/task"
)

type fakeRunner struct {
	calls [][]string
	stdin [][]byte
	err   error
	out   []byte
}

func (f *fakeRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	f.stdin = append(f.stdin, stdin)
	return f.out, f.err
}

func withFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()
	fake := &fakeRunner{}
	prev := runner
	runner = fake
	t.Cleanup(func() { runner = prev })
	return fake
}

func TestResetPasswordWritesChpasswdLine(t *testing.T) {
	restore := task.StubHostname(userHost)
	defer restore()

	fake := withFakeRunner(t)

	result, err := ResetPassword(context.Background(), User{Name: "ab123"})
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{"/usr/sbin/chpasswd"}, fake.calls[0])
	assert.Contains(t, string(fake.stdin[0]), "ab123:")
}

func TestEnableUserTogglesNoLoginShell(t *testing.T) {
	restore := task.StubHostname(userHost)
	defer restore()

	fake := withFakeRunner(t)

	result, err := EnableUser(context.Background(), User{Name: "ab123", Shell: "/bin/bash"}, false)
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{"/usr/bin/chsh", "--shell", noLoginShells[0], "ab123"}, fake.calls[0])
}

func TestEnableUserUnchangedWhenAlreadyActive(t *testing.T) {
	restore := task.StubHostname(userHost)
	defer restore()

	fake := withFakeRunner(t)

	result, err := EnableUser(context.Background(), User{Name: "ab123", Shell: "/bin/bash"}, true)
	require.NoError(t, err)
	assert.Equal(t, task.Unchanged, result.State())
	assert.Empty(t, fake.calls)
}

func TestRequireHostRejectsWrongHostBeforeRunningCommands(t *testing.T) {
	fake := withFakeRunner(t)

	_, err := ResetPassword(context.Background(), User{Name: "ab123"})
	require.Error(t, err)
	assert.Empty(t, fake.calls)
}
