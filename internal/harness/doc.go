// Package harness runs YAML-defined search scenarios through both halves
// of the subsystem at once: the in-memory evaluator and the compiled
// query against an in-memory SQLite store. A scenario passes only when
// both paths select the same records, which turns the compiler/evaluator
// parity requirement into an executable check instead of a convention.
//
// Golden-file helpers assert compiled SQL byte-for-byte, so accidental
// changes to statement shape or parameter order show up as fixture diffs.
package harness
