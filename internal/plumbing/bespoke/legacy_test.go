package bespoke

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcf/controlplane/internal/task"
)

func withFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()
	fake := &fakeRunner{}
	prev := runner
	runner = fake
	t.Cleanup(func() { runner = prev })
	return fake
}

func TestQueueListSubscriptionSkipsWithNoLists(t *testing.T) {
	fake := withFakeRunner(t)

	result, err := QueueListSubscription(context.Background(), "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, task.Unchanged, result.State())
	assert.Empty(t, fake.calls)
}

func TestQueueListSubscriptionFormatsEntry(t *testing.T) {
	fake := withFakeRunner(t)

	result, err := QueueListSubscription(context.Background(), "Alice", "alice@example.com", "tech", "social")
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{
		"/usr/local/sbin/srcf-enqueue-mlsub",
		`soc-srcf-tech:"Alice" <alice@example.com>`,
		`soc-srcf-social:"Alice" <alice@example.com>`,
	}, fake.calls[0])
}

func TestMakeYPRejectsWrongHost(t *testing.T) {
	withFakeRunner(t)

	_, err := MakeYP(context.Background())
	require.Error(t, err)
}

func TestMakeYPRunsOnYPHost(t *testing.T) {
	restore := task.StubHostname(yphost)
	defer restore()
	fake := withFakeRunner(t)

	result, err := MakeYP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())
	assert.Equal(t, []string{"/usr/bin/make", "-C", "/var/yp"}, fake.calls[0])
}

func TestConfigureMailingListRunsBothSteps(t *testing.T) {
	fake := withFakeRunner(t)

	result, err := ConfigureMailingList(context.Background(), "cusu-tech")
	require.NoError(t, err)
	assert.Equal(t, task.Success, result.State())
	require.Len(t, fake.calls, 2)
	assert.Equal(t, []string{"/usr/sbin/config_list", "--inputfile", "/root/mailman-newlist-defaults", "cusu-tech"}, fake.calls[0])
	assert.Equal(t, []string{"/usr/local/sbin/gen_alias", "cusu-tech"}, fake.calls[1])
}
