package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/tannerhall/sift/internal/querysql"
)

// AssertGoldenSQL compares a compiled query against a golden fixture in
// testdata/golden/{name}.golden. Both the statement text and the ordered
// params are rendered, so a drifting placeholder/param correspondence
// fails the fixture even when the SQL text is unchanged.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGoldenSQL(t *testing.T, name string, q querysql.CompiledQuery) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(RenderQuery(q)))
}

// RenderQuery renders a compiled query to a stable textual form: the
// statement, a separator, then one line per bound value with its index
// and Go type.
func RenderQuery(q querysql.CompiledQuery) string {
	var b strings.Builder
	b.WriteString(q.Text)
	b.WriteString("\n--\n")
	for i, p := range q.Params {
		fmt.Fprintf(&b, "[%d] %T %v\n", i, p, p)
	}
	return b.String()
}
