package harness

import (
	"context"
	"fmt"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/process"
	"github.com/tannerhall/sift/internal/querysql"
	"github.com/tannerhall/sift/internal/schema"
	"github.com/tannerhall/sift/internal/store"
)

// Result captures one scenario execution across both paths.
type Result struct {
	// EvaluatorIDs are the ids Apply/ApplyTree kept, in fixture order.
	EvaluatorIDs []string

	// DatabaseIDs are the ids the optimized compiled query returned,
	// in the store's deterministic order (id ASC).
	DatabaseIDs []string

	// Compiled is the raw compiled statement.
	Compiled querysql.CompiledQuery

	// Optimized is the statement actually executed.
	Optimized querysql.CompiledQuery

	// Count is the COUNT-variant estimate through the store.
	Count int64
}

// Run executes a scenario: evaluate the filter in memory, seed an
// in-memory store with the same records, execute the compiled and
// optimized query, and estimate the count. Assertion against the
// expectation is left to the caller (see RunTest in testing contexts).
func Run(ctx context.Context, reg *schema.Registry, sc *Scenario) (*Result, error) {
	ct := filter.ContentType(sc.ContentType)

	records := make([]process.Record, 0, len(sc.Records))
	for _, rec := range sc.Records {
		records = append(records, process.Record(rec))
	}

	res := &Result{}
	compiler := querysql.NewCompiler(reg)

	st, err := store.OpenMemory(reg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	for i, rec := range records {
		if _, err := st.Insert(ctx, ct, rec); err != nil {
			return nil, fmt.Errorf("seed records[%d]: %w", i, err)
		}
	}

	var matched []process.Record
	if sc.Filter != nil {
		cfg, err := sc.DecodeFilter()
		if err != nil {
			return nil, err
		}
		if vr := process.Validate(reg, cfg); !vr.Valid {
			return nil, fmt.Errorf("invalid filter: %v", vr.Errors)
		}
		matched = process.Apply(records, cfg)
		if res.Compiled, err = compiler.Compile(cfg); err != nil {
			return nil, fmt.Errorf("compile: %w", err)
		}
		res.Count = process.EstimateCount(ctx, reg, cfg, st.Rows)
	} else {
		tree, err := sc.DecodeTree()
		if err != nil {
			return nil, err
		}
		matched = process.ApplyTree(records, tree)
		if res.Compiled, err = compiler.CompileTree(tree, ct); err != nil {
			return nil, fmt.Errorf("compile tree: %w", err)
		}
		res.Count = process.EstimateTreeCount(ctx, reg, tree, ct, st.Rows)
	}

	for _, rec := range matched {
		res.EvaluatorIDs = append(res.EvaluatorIDs, rec.ID())
	}

	res.Optimized = querysql.Optimize(res.Compiled)
	rows, err := st.Search(ctx, res.Optimized)
	if err != nil {
		return nil, fmt.Errorf("execute optimized query: %w", err)
	}
	for _, rec := range rows {
		res.DatabaseIDs = append(res.DatabaseIDs, rec.ID())
	}

	return res, nil
}
