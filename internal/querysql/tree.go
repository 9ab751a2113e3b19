package querysql

import (
	"errors"
	"fmt"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/schema"
)

// TreeError reports a structural defect found while compiling a filter
// tree. Malformed trees indicate builder bugs, not user input, so these
// surface as errors and callers fail fast and log.
type TreeError struct {
	// Code identifies the defect category.
	Code TreeErrorCode

	// NodeID identifies the offending node, when one exists.
	NodeID string

	// Message is a human-readable description.
	Message string
}

// TreeErrorCode categorizes tree compilation errors.
type TreeErrorCode string

const (
	// ErrCodeCycle indicates a node id was visited twice during descent.
	ErrCodeCycle TreeErrorCode = "CYCLE"

	// ErrCodeNilNode indicates a nil child in a children list.
	ErrCodeNilNode TreeErrorCode = "NIL_NODE"

	// ErrCodeBadRoot indicates the root is not an operator node.
	ErrCodeBadRoot TreeErrorCode = "BAD_ROOT"
)

// Error implements the error interface.
func (e *TreeError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycle returns true if the error is a revisited-node error.
// Uses errors.As to handle wrapped errors.
func IsCycle(err error) bool {
	var te *TreeError
	return errors.As(err, &te) && te.Code == ErrCodeCycle
}

// CompileTree converts a filter tree to a full SELECT statement over the
// given content type's table, by recursive descent:
//
//   - A filter node contributes the joined fragments of its config, using
//     the flat compiler's fragment generation. A config with no enabled
//     predicates contributes nothing.
//   - An operator node joins the fragments of its constrained children
//     with its combinator. Children that contribute nothing are skipped
//     rather than substituted with a literal true or false; zero
//     surviving children propagates "no constraint" upward.
//   - A group node does the same with an implicit AND.
//
// A subtree's fragment is parenthesized only when more than one part
// survives the join. Child param lists concatenate in the same left to
// right order their fragments join, which keeps the placeholder/param
// correspondence intact through arbitrary nesting.
//
// The root must be an operator node. Revisited node ids (the tree must be
// acyclic with globally unique ids) and nil children return a *TreeError.
func (c *Compiler) CompileTree(root filter.Node, ct filter.ContentType) (CompiledQuery, error) {
	spec, where, params, err := c.compileTreeWhere(root, ct)
	if err != nil {
		return CompiledQuery{}, err
	}
	return selectStatement(spec.Table, where, params), nil
}

// CompileTreeCount is CompileTree's COUNT(*) variant.
func (c *Compiler) CompileTreeCount(root filter.Node, ct filter.ContentType) (CompiledQuery, error) {
	spec, where, params, err := c.compileTreeWhere(root, ct)
	if err != nil {
		return CompiledQuery{}, err
	}
	return countStatement(spec.Table, where, params), nil
}

func (c *Compiler) compileTreeWhere(root filter.Node, ct filter.ContentType) (*schema.TypeSpec, string, []any, error) {
	spec, err := c.tableSpec(ct)
	if err != nil {
		return nil, "", nil, err
	}
	if root == nil {
		return nil, "", nil, &TreeError{Code: ErrCodeNilNode, Message: "root is nil"}
	}
	if _, ok := root.(*filter.Branch); !ok {
		return nil, "", nil, &TreeError{
			Code:    ErrCodeBadRoot,
			NodeID:  root.ID(),
			Message: fmt.Sprintf("root must be an operator node, got %T", root),
		}
	}

	seen := make(map[string]bool)
	where, params, err := c.compileNode(root, spec, seen)
	if err != nil {
		return nil, "", nil, err
	}
	return spec, where, params, nil
}

// compileNode compiles one subtree to a fragment and its params. An
// unconstrained subtree returns ("", nil, nil).
func (c *Compiler) compileNode(n filter.Node, spec *schema.TypeSpec, seen map[string]bool) (string, []any, error) {
	if n == nil {
		return "", nil, &TreeError{Code: ErrCodeNilNode, Message: "nil node in children"}
	}
	if seen[n.ID()] {
		return "", nil, &TreeError{
			Code:    ErrCodeCycle,
			NodeID:  n.ID(),
			Message: "node visited twice; tree must be acyclic with unique ids",
		}
	}
	seen[n.ID()] = true

	switch node := n.(type) {
	case *filter.Leaf:
		frags, params, err := c.configFragments(node.Config, spec)
		if err != nil {
			return "", nil, fmt.Errorf("node %s: %w", node.NodeID, err)
		}
		return parenthesize(frags, node.Config.Operator), params, nil
	case *filter.Branch:
		return c.compileChildren(node.Children, node.Op, spec, seen)
	case *filter.Group:
		return c.compileChildren(node.Children, filter.And, spec, seen)
	default:
		// Unreachable: Node is sealed.
		return "", nil, fmt.Errorf("unsupported node type %T", n)
	}
}

// compileChildren joins the surviving child fragments with op.
func (c *Compiler) compileChildren(children []filter.Node, op filter.Combinator, spec *schema.TypeSpec, seen map[string]bool) (string, []any, error) {
	var frags []string
	var params []any
	for _, child := range children {
		frag, childParams, err := c.compileNode(child, spec, seen)
		if err != nil {
			return "", nil, err
		}
		if frag == "" {
			continue
		}
		frags = append(frags, frag)
		params = append(params, childParams...)
	}
	return parenthesize(frags, op), params, nil
}

// parenthesize joins fragments with op, wrapping in parens only when more
// than one fragment survives. A single fragment needs no grouping and a
// vacuous join stays empty.
func parenthesize(frags []string, op filter.Combinator) string {
	switch len(frags) {
	case 0:
		return ""
	case 1:
		return frags[0]
	default:
		return "(" + joinFragments(frags, op) + ")"
	}
}
