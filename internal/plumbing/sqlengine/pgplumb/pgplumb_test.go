package pgplumb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentEscapesEmbeddedQuotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"ab123"`, quoteIdent("ab123"))
	assert.Equal(t, `"weird""name"`, quoteIdent(`weird"name`))
}
