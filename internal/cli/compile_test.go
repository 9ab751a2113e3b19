package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_FlatConfig(t *testing.T) {
	path := writeTempFile(t, "filter.json", flatBostonFilter)

	out, err := runCommand(t, "compile", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, `SELECT *, 1 AS relevance FROM alumni WHERE city LIKE ? ESCAPE '\' ORDER BY id ASC COLLATE BINARY`)
	assert.Contains(t, out, "[0] Boston")
}

func TestCompile_Tree(t *testing.T) {
	path := writeTempFile(t, "tree.json", treeFilter)

	out, err := runCommand(t, "compile", "-f", path, "-t", "alumni")
	require.NoError(t, err)
	assert.Contains(t, out, "(city LIKE ? ESCAPE '\\' OR city LIKE ? ESCAPE '\\')")
	assert.Contains(t, out, "[0] Boston")
	assert.Contains(t, out, "[1] Chicago")
}

func TestCompile_TreeRequiresType(t *testing.T) {
	path := writeTempFile(t, "tree.json", treeFilter)

	_, err := runCommand(t, "compile", "-f", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--type")
}

func TestCompile_CountVariant(t *testing.T) {
	path := writeTempFile(t, "filter.json", flatBostonFilter)

	out, err := runCommand(t, "compile", "-f", path, "--count")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT COUNT(*) AS match_count FROM alumni")
	assert.NotContains(t, out, "ORDER BY")
}

func TestCompile_OptimizeCollapsesDuplicates(t *testing.T) {
	path := writeTempFile(t, "filter.json", `{
		"type": "alumni",
		"operator": "AND",
		"textFilters": [
			{"field": "last_name", "value": "hall", "matchType": "contains", "caseSensitive": false},
			{"field": "last_name", "value": "hall", "matchType": "contains", "caseSensitive": false}
		]
	}`)

	out, err := runCommand(t, "compile", "-f", path, "--optimize")
	require.NoError(t, err)

	firstLine, _, _ := strings.Cut(out, "\n")
	assert.Equal(t, 1, strings.Count(firstLine, "?"))
	assert.Contains(t, out, "[0] %hall%")
	assert.NotContains(t, out, "[1]")
}

func TestCompile_JSONOutput(t *testing.T) {
	path := writeTempFile(t, "filter.json", flatBostonFilter)

	out, err := runCommand(t, "compile", "-f", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Text   string `json:"text"`
			Params []any  `json:"params"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Contains(t, resp.Data.Text, "FROM alumni")
	require.Len(t, resp.Data.Params, 1)
	assert.Equal(t, "Boston", resp.Data.Params[0])
}

func TestCompile_UnknownFieldFails(t *testing.T) {
	path := writeTempFile(t, "filter.json", `{
		"type": "alumni",
		"operator": "AND",
		"textFilters": [
			{"field": "bogus", "value": "x", "matchType": "equals", "caseSensitive": false}
		]
	}`)

	_, err := runCommand(t, "compile", "-f", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
