package process

import (
	"context"
	"log/slog"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/querysql"
	"github.com/tannerhall/sift/internal/schema"
)

// ExecuteFunc runs a compiled query and returns its rows. Callers of
// EstimateCount inject it, which keeps this package ignorant of any
// concrete database engine. This is the subsystem's single asynchronous
// seam; ctx is the only cancellation primitive, and discarding results
// from stale overlapping calls is the caller's job.
type ExecuteFunc func(ctx context.Context, query string, params []any) ([]Record, error)

// countColumn is the aliased COUNT(*) column in count statements.
const countColumn = "match_count"

// EstimateCount compiles the COUNT variant of a flat config, executes it
// through exec, and returns the count.
//
// Every failure mode (compile error, execution error, empty result,
// missing or malformed count column) is logged at warn and mapped to 0.
// The count feeds an advisory live badge, not a decision point, so this
// function never panics and never returns an error.
func EstimateCount(ctx context.Context, reg *schema.Registry, cfg filter.Config, exec ExecuteFunc) int64 {
	q, err := querysql.NewCompiler(reg).CompileCount(cfg)
	if err != nil {
		slog.Warn("count estimation: compile failed", "type", cfg.Type, "error", err)
		return 0
	}
	return runCount(ctx, q, exec)
}

// EstimateTreeCount is EstimateCount for a filter tree.
func EstimateTreeCount(ctx context.Context, reg *schema.Registry, root filter.Node, ct filter.ContentType, exec ExecuteFunc) int64 {
	q, err := querysql.NewCompiler(reg).CompileTreeCount(root, ct)
	if err != nil {
		slog.Warn("count estimation: tree compile failed", "type", ct, "error", err)
		return 0
	}
	return runCount(ctx, q, exec)
}

func runCount(ctx context.Context, q querysql.CompiledQuery, exec ExecuteFunc) int64 {
	rows, err := exec(ctx, q.Text, q.Params)
	if err != nil {
		slog.Warn("count estimation: execute failed", "error", err)
		return 0
	}
	if len(rows) == 0 {
		slog.Warn("count estimation: executor returned no rows")
		return 0
	}
	n, ok := asNumber(rows[0][countColumn])
	if !ok {
		slog.Warn("count estimation: malformed count column", "value", rows[0][countColumn])
		return 0
	}
	return int64(n)
}
