package unix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnaliasACLExpandsAndDedupes(t *testing.T) {
	t.Parallel()

	got := unaliasACL("RX")
	// R -> rntcy, X -> xtcy; union sorted+deduped.
	assert.Equal(t, "cnrtxy", got)
}

func TestUnaliasACLPassesThroughRawLetters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rw", unaliasACL("rw"))
}

func TestContainsAll(t *testing.T) {
	t.Parallel()

	assert.True(t, containsAll("rntcy", "rn"))
	assert.False(t, containsAll("rn", "rntcy"))
	assert.True(t, containsAll("abc", ""))
}
