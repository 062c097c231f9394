package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/task"
)

func TestResultBool(t *testing.T) {
	t.Parallel()

	assert.False(t, task.New(task.Unchanged).Bool())
	assert.True(t, task.New(task.Success).Bool())
	assert.True(t, task.New(task.Created).Bool())
}

func TestBuilderAggregatesMaxState(t *testing.T) {
	t.Parallel()

	b := task.NewBuilder("tasks.Example")
	b.Step(task.New(task.Unchanged))
	b.Step(task.New(task.Success))
	b.Step(task.New(task.Created))
	b.Step(task.New(task.Unchanged))

	result := b.Build()
	assert.Equal(t, task.Created, result.State())
}

func TestBuilderExplicitStateOverridesAggregate(t *testing.T) {
	t.Parallel()

	b := task.NewBuilder("tasks.Example")
	b.Step(task.New(task.Created))
	b.SetState(task.Unchanged)

	result := b.Build()
	assert.Equal(t, task.Unchanged, result.State())
}

func TestBuilderStepValueChains(t *testing.T) {
	t.Parallel()

	b := task.NewBuilder("tasks.Example")
	v := b.StepValue(task.NewValue(task.Created, "widget"))
	require.Equal(t, "widget", v)

	result := b.BuildValue(v)
	assert.Equal(t, "widget", result.Value())
	assert.Equal(t, task.Created, result.State())
}

func TestResultStringTree(t *testing.T) {
	t.Parallel()

	b := task.NewBuilder("outer")
	b.Step(task.New(task.Success).Named("inner.a"))
	b.Step(task.New(task.Created).Named("inner.b"))
	result := b.Build()

	str := result.String()
	assert.Contains(t, str, "outer: created")
	assert.Contains(t, str, "  inner.a: success")
	assert.Contains(t, str, "  inner.b: created")
}

func TestPasswordRedactsInDebugRepr(t *testing.T) {
	t.Parallel()

	pw, err := task.NewPassword()
	require.NoError(t, err)

	repr := pw.GoString()
	assert.NotContains(t, repr, pw.String())
	assert.Contains(t, repr, "***")
}

func TestPasswordWrapPreservesRedaction(t *testing.T) {
	t.Parallel()

	pw, err := task.NewPassword()
	require.NoError(t, err)

	wrapped := pw.Wrap("bob:%s")
	assert.Equal(t, "bob:"+pw.String(), wrapped.String())
	assert.NotContains(t, wrapped.GoString(), pw.String())
}

func TestRequireHostRejectsWrongHost(t *testing.T) {
	t.Parallel()

	err := task.RequireHost("plumbing.EnsureUser", "definitely-not-this-host")
	require.Error(t, err)

	var wrongHost *task.ErrWrongHost
	require.ErrorAs(t, err, &wrongHost)
}
