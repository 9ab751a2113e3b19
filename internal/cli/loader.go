package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tannerhall/sift/internal/filter"
)

// FilterInput is a loaded filter file: either a flat config or a tree.
type FilterInput struct {
	Config filter.Config
	Tree   filter.Node // nil for flat inputs
}

// IsTree reports whether the input is a filter tree.
func (in *FilterInput) IsTree() bool {
	return in.Tree != nil
}

// LoadFilterFile reads a filter document from disk. A JSON object with a
// "kind" key is a tree in node wire form; anything else is a flat config.
// Both shapes decode strictly: a filter file with unknown keys is a
// builder or transcription defect, not something to guess around.
func LoadFilterFile(path string) (*FilterInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter file: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse filter file %s: %w", path, err)
	}

	if _, ok := probe["kind"]; ok {
		tree, err := filter.DecodeNode(data)
		if err != nil {
			return nil, fmt.Errorf("filter file %s: %w", path, err)
		}
		return &FilterInput{Tree: tree}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg filter.Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("filter file %s: %w", path, err)
	}
	return &FilterInput{Config: cfg}, nil
}

// leafConfigs returns every flat config reachable from a tree, for
// commands that validate tree inputs leaf by leaf.
func leafConfigs(n filter.Node) []filter.Config {
	switch node := n.(type) {
	case *filter.Leaf:
		return []filter.Config{node.Config}
	case *filter.Branch:
		return childConfigs(node.Children)
	case *filter.Group:
		return childConfigs(node.Children)
	default:
		return nil
	}
}

func childConfigs(children []filter.Node) []filter.Config {
	var out []filter.Config
	for _, child := range children {
		if child != nil {
			out = append(out, leafConfigs(child)...)
		}
	}
	return out
}
