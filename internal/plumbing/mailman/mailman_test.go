package mailman

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/task"
)

func TestValidateListNameRejectsInvalidCharacters(t *testing.T) {
	t.Parallel()

	require.Error(t, validateListName("bad name"))
	require.NoError(t, validateListName("cusu-tech"))
}

func TestValidateListNameRejectsReservedSuffix(t *testing.T) {
	t.Parallel()

	err := validateListName("cusu-owner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved keyword")
}

func TestValidateListNameAllowsPlainName(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateListName("owner"))
}

func TestPythonReprListFormatsSingleQuotedItems(t *testing.T) {
	t.Parallel()

	got := pythonReprList([]string{"a@b.com", "c@d.com"})
	assert.Equal(t, "['a@b.com', 'c@d.com']", got)
}

func TestGetListReportsMissingList(t *testing.T) {
	dir := t.TempDir()
	prev := listsRoot
	listsRoot = dir
	defer func() { listsRoot = prev }()

	_, err := GetList("nonexistent")
	require.Error(t, err)
}

func TestGetListFindsExistingList(t *testing.T) {
	dir := t.TempDir()
	prev := listsRoot
	listsRoot = dir
	defer func() { listsRoot = prev }()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "cusu-tech"), 0o755))

	mlist, err := GetList("cusu-tech")
	require.NoError(t, err)
	assert.Equal(t, List("cusu-tech"), mlist)
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

func TestNewListRunsNewlistWithPasswordOnStdin(t *testing.T) {
	restoreHost := task.StubHostname(listHost)
	defer restoreHost()

	dir := t.TempDir()
	prevRoot := listsRoot
	listsRoot = dir
	defer func() { listsRoot = prevRoot }()

	fake := &fakeRunner{}
	prevRunner := runner
	runner = fake
	defer func() { runner = prevRunner }()

	result, err := NewList(context.Background(), "cusu-tech", "admin@cusu.net")
	require.NoError(t, err)
	assert.Equal(t, task.Created, result.State())
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{"/usr/sbin/newlist", "cusu-tech", "admin@cusu.net"}, fake.calls[0])
	assert.NotEmpty(t, fake.stdin[0])
}
