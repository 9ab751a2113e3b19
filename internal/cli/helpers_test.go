package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCommand executes the sift CLI with the given args and captures its
// combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// writeTempFile drops content into a fresh temp dir and returns its path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const flatBostonFilter = `{
  "type": "alumni",
  "operator": "AND",
  "textFilters": [
    {"field": "city", "value": "Boston", "matchType": "equals", "caseSensitive": false}
  ]
}`

const treeFilter = `{
  "kind": "operator",
  "id": "root",
  "operator": "OR",
  "children": [
    {"kind": "filter", "id": "l1", "filter": {
      "type": "alumni", "operator": "AND",
      "textFilters": [{"field": "city", "value": "Boston", "matchType": "equals", "caseSensitive": false}]
    }},
    {"kind": "filter", "id": "l2", "filter": {
      "type": "alumni", "operator": "AND",
      "textFilters": [{"field": "city", "value": "Chicago", "matchType": "equals", "caseSensitive": false}]
    }}
  ]
}`
