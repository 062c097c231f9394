package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeArgsRoundTrip(t *testing.T) {
	t.Parallel()

	in := map[string]string{"crsid": "ab123", "society": "cusu"}
	got := decodeArgs(encodeArgs(in))
	assert.Equal(t, in, got)
}

func TestDecodeArgsTreatsNullAsEmptyString(t *testing.T) {
	t.Parallel()

	h := encodeArgs(map[string]string{"k": "v"})
	h["nullish"] = nil

	got := decodeArgs(h)
	assert.Equal(t, "", got["nullish"])
	assert.Equal(t, "v", got["k"])
}

func TestJobStateTransitionsRejectsIllegalEdge(t *testing.T) {
	t.Parallel()

	allowed := jobStateTransitions[JobStateWithdrawn]
	assert.Empty(t, allowed, "withdrawn is terminal")

	found := false
	for _, s := range jobStateTransitions[JobStateUnapproved] {
		if s == JobStateQueued {
			found = true
		}
	}
	assert.True(t, found, "unapproved must be approvable to queued")
}
