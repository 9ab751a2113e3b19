package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tannerhall/sift/internal/filter"
)

// Scenario defines one conformance scenario: a record fixture, a filter
// (flat config or tree), and the expected outcome. Scenarios are the
// executable form of the parity property: the evaluator and the compiled
// query must both select exactly the expected records.
type Scenario struct {
	// Name uniquely identifies this scenario. Used for golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// ContentType is the record domain under test.
	ContentType string `yaml:"contentType"`

	// Records is the in-memory fixture, seeded verbatim into the store.
	// Each record needs an id.
	Records []map[string]any `yaml:"records"`

	// Filter is a flat config in its JSON wire shape (camelCase keys).
	// Exactly one of Filter and Tree must be set.
	Filter map[string]any `yaml:"filter,omitempty"`

	// Tree is a filter tree in its JSON wire shape.
	Tree map[string]any `yaml:"tree,omitempty"`

	// Expect describes the required outcome.
	Expect Expectation `yaml:"expect"`
}

// Expectation is the asserted outcome of a scenario.
type Expectation struct {
	// MatchedIDs lists the ids the evaluator must keep, in fixture order.
	// The database must return the same set.
	MatchedIDs []string `yaml:"matchedIds"`

	// Count, when set, additionally asserts the COUNT-variant estimate.
	Count *int64 `yaml:"count,omitempty"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.check(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// LoadDir loads every *.yaml scenario in a directory, sorted by filename
// for deterministic test order.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// check enforces the scenario shape before any execution happens.
func (s *Scenario) check() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.ContentType == "" {
		return fmt.Errorf("contentType is required")
	}
	if (s.Filter == nil) == (s.Tree == nil) {
		return fmt.Errorf("exactly one of filter and tree must be set")
	}
	for i, rec := range s.Records {
		if _, ok := rec["id"].(string); !ok {
			return fmt.Errorf("records[%d]: id is required", i)
		}
	}
	return nil
}

// DecodeFilter converts the scenario's filter document to a typed config.
// The YAML shape uses the same camelCase keys as the JSON wire form, so
// the conversion runs through JSON with strict decoding.
func (s *Scenario) DecodeFilter() (filter.Config, error) {
	raw, err := json.Marshal(s.Filter)
	if err != nil {
		return filter.Config{}, fmt.Errorf("re-encode filter: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var cfg filter.Config
	if err := dec.Decode(&cfg); err != nil {
		return filter.Config{}, fmt.Errorf("decode filter: %w", err)
	}
	return cfg, nil
}

// DecodeTree converts the scenario's tree document to a typed node tree.
func (s *Scenario) DecodeTree() (filter.Node, error) {
	raw, err := json.Marshal(s.Tree)
	if err != nil {
		return nil, fmt.Errorf("re-encode tree: %w", err)
	}
	return filter.DecodeNode(raw)
}
