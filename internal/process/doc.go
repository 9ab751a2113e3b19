// Package process is the filter processor: it validates flat configs
// against the schema registry, evaluates configs and trees directly
// against in-memory records, and estimates result counts through a
// caller-injected query executor.
//
// The in-memory evaluator and the query compiler in internal/querysql
// implement the same matching rules. Any change to one must land in the
// other; the parity tests in internal/harness execute both paths over
// the same records and compare the results.
package process
