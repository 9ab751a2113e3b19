package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire kinds for tree nodes. The builder UI speaks this vocabulary.
const (
	KindFilter   = "filter"
	KindOperator = "operator"
	KindGroup    = "group"
)

// nodeJSON is the wire shape shared by all three node kinds.
type nodeJSON struct {
	Kind     string            `json:"kind"`
	ID       string            `json:"id"`
	Filter   *Config           `json:"filter,omitempty"`
	Operator Combinator        `json:"operator,omitempty"`
	Children []json.RawMessage `json:"children,omitempty"`
}

// EncodeNode serializes a tree to its wire form.
func EncodeNode(n Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("cannot encode nil node")
	}

	var doc nodeJSON
	switch node := n.(type) {
	case *Leaf:
		cfg := node.Config
		doc = nodeJSON{Kind: KindFilter, ID: node.NodeID, Filter: &cfg}
	case *Branch:
		children, err := encodeChildren(node.Children)
		if err != nil {
			return nil, err
		}
		doc = nodeJSON{Kind: KindOperator, ID: node.NodeID, Operator: node.Op, Children: children}
	case *Group:
		children, err := encodeChildren(node.Children)
		if err != nil {
			return nil, err
		}
		doc = nodeJSON{Kind: KindGroup, ID: node.NodeID, Children: children}
	default:
		// Unreachable: Node is sealed.
		return nil, fmt.Errorf("cannot encode node type %T", n)
	}
	return json.Marshal(doc)
}

func encodeChildren(children []Node) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(children))
	for i, child := range children {
		raw, err := EncodeNode(child)
		if err != nil {
			return nil, fmt.Errorf("child[%d]: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// DecodeNode parses a wire-form tree. Decoding is strict: unknown keys,
// unknown kinds, and fields that do not belong to the declared kind are
// all rejected, because a malformed tree indicates a builder defect.
func DecodeNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc nodeJSON
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("decode node: id is required")
	}

	switch doc.Kind {
	case KindFilter:
		if doc.Filter == nil {
			return nil, fmt.Errorf("decode node %s: filter nodes require a filter", doc.ID)
		}
		if len(doc.Children) > 0 {
			return nil, fmt.Errorf("decode node %s: filter nodes cannot have children", doc.ID)
		}
		if doc.Operator != "" {
			return nil, fmt.Errorf("decode node %s: filter nodes do not carry an operator", doc.ID)
		}
		return &Leaf{NodeID: doc.ID, Config: *doc.Filter}, nil

	case KindOperator:
		if !ValidCombinator(doc.Operator) {
			return nil, fmt.Errorf("decode node %s: operator must be AND or OR, got %q", doc.ID, doc.Operator)
		}
		if doc.Filter != nil {
			return nil, fmt.Errorf("decode node %s: operator nodes do not carry a filter", doc.ID)
		}
		children, err := decodeChildren(doc.ID, doc.Children)
		if err != nil {
			return nil, err
		}
		return &Branch{NodeID: doc.ID, Op: doc.Operator, Children: children}, nil

	case KindGroup:
		if doc.Operator != "" {
			return nil, fmt.Errorf("decode node %s: group nodes do not carry an operator", doc.ID)
		}
		if doc.Filter != nil {
			return nil, fmt.Errorf("decode node %s: group nodes do not carry a filter", doc.ID)
		}
		children, err := decodeChildren(doc.ID, doc.Children)
		if err != nil {
			return nil, err
		}
		return &Group{NodeID: doc.ID, Children: children}, nil

	default:
		return nil, fmt.Errorf("decode node %s: unknown kind %q", doc.ID, doc.Kind)
	}
}

func decodeChildren(parentID string, raw []json.RawMessage) ([]Node, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	children := make([]Node, 0, len(raw))
	for i, childRaw := range raw {
		child, err := DecodeNode(childRaw)
		if err != nil {
			return nil, fmt.Errorf("node %s child[%d]: %w", parentID, i, err)
		}
		children = append(children, child)
	}
	return children, nil
}
