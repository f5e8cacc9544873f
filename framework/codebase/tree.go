package codebase

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxDepth bounds tree construction when no depth is supplied.
const DefaultMaxDepth = 5

// NodeType distinguishes files from directories in a tree.
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeDirectory NodeType = "directory"
)

// Node is one entry of a project tree. Paths are slash-separated and relative
// to the tree root; the root itself has path ".".
type Node struct {
	Name      string   `json:"name"`
	Type      NodeType `json:"type"`
	Path      string   `json:"path,omitempty"`
	Size      int64    `json:"size,omitempty"`
	Extension string   `json:"extension,omitempty"`
	Children  []*Node  `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.Type == NodeDirectory }

// TreeOptions tunes Tree.
type TreeOptions struct {
	// MaxDepth caps recursion; entries deeper than MaxDepth are omitted.
	// Zero selects DefaultMaxDepth.
	MaxDepth int
	// IncludeMetadata adds size and extension to file nodes.
	IncludeMetadata bool
}

// Tree builds a pruned tree of relevant files under root. Directories with no
// qualifying descendants are dropped. The root node is always returned, with
// no children when nothing qualifies or root cannot be read.
func Tree(root string, opts TreeOptions) *Node {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	b := treeBuilder{root: root, maxDepth: maxDepth, metadata: opts.IncludeMetadata}
	if node := b.build(root, 0); node != nil {
		return node
	}
	return &Node{Name: filepath.Base(root), Type: NodeDirectory, Path: ".", Children: []*Node{}}
}

type treeBuilder struct {
	root     string
	maxDepth int
	metadata bool
}

func (b treeBuilder) build(path string, depth int) *Node {
	if depth > b.maxDepth {
		return nil
	}
	name := filepath.Base(path)
	if IsIgnored(name) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	rel := b.rel(path)
	if !info.IsDir() {
		if !IsRelevant(name) {
			return nil
		}
		node := &Node{Name: name, Type: NodeFile, Path: rel}
		if b.metadata {
			node.Size = info.Size()
			node.Extension = strings.ToLower(filepath.Ext(name))
		}
		return node
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	var children []*Node
	for _, entry := range entries {
		if child := b.build(filepath.Join(path, entry.Name()), depth+1); child != nil {
			children = append(children, child)
		}
	}
	if len(children) == 0 && depth > 0 {
		return nil
	}
	if children == nil {
		children = []*Node{}
	}
	return &Node{Name: name, Type: NodeDirectory, Path: rel, Children: children}
}

func (b treeBuilder) rel(path string) string {
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
