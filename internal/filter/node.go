package filter

// Node is one node of a boolean filter tree.
//
// Node is a sealed interface using the marker method pattern: only Leaf,
// Branch, and Group implement it. Consumers switch exhaustively over the
// three shapes, so "unknown node type" is not a runtime failure mode.
//
// Tree invariants (the compiler verifies them during descent and fails
// fast on violations, since a malformed tree indicates a builder bug):
//   - the tree is acyclic with globally unique ids
//   - the root is always a Branch
type Node interface {
	// ID returns the node's tree-unique identifier.
	ID() string

	// filterNode is the sealing marker.
	filterNode()
}

// Leaf evaluates one flat Config. Wire kind "filter".
type Leaf struct {
	NodeID string
	Config Config
}

func (n *Leaf) ID() string  { return n.NodeID }
func (n *Leaf) filterNode() {}

// Branch combines its children with an explicit combinator. Wire kind
// "operator". Zero children is vacuously true.
type Branch struct {
	NodeID   string
	Op       Combinator
	Children []Node
}

func (n *Branch) ID() string  { return n.NodeID }
func (n *Branch) filterNode() {}

// Group combines its children with an implicit AND. Wire kind "group".
// It exists for visual and precedence grouping and stores no combinator.
type Group struct {
	NodeID   string
	Children []Node
}

func (n *Group) ID() string  { return n.NodeID }
func (n *Group) filterNode() {}
