package mysqlplumb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentDoublesBackticks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "`ab123`", quoteIdent("ab123"))
	assert.Equal(t, "`weird``name`", quoteIdent("weird`name"))
}

func TestEscapeLikeEscapesWildcards(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `ab\_123\%`, EscapeLike("ab_123%"))
}

func TestParseMyCnfReadsClientSection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".my.cnf")
	content := "[client]\nuser = ab123\npassword = hunter2\nhost = mysql.internal\n\n[mysql]\nuser = ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := parseMyCnf(path)
	require.NoError(t, err)
	assert.Equal(t, "ab123", cfg["user"])
	assert.Equal(t, "hunter2", cfg["password"])
	assert.Equal(t, "mysql.internal", cfg["host"])
}
