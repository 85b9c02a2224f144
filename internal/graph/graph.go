package graph

import (
	"errors"
	"slices"
	"time"
)

var ErrEmptyName = errors.New("node name is empty")
var ErrUnknownNode = errors.New("unknown node")
var ErrSelfEdge = errors.New("self edge")

// Node is a player that currently lives in the graph.
type Node struct {
	Name      string
	Rank      int
	Points    int
	AvatarRef string

	// UpdateDate is the timestamp of the last effect that touched the node.
	// Zero means the node was never touched.
	UpdateDate    time.Time
	LastScoreGain int
}

// Touch moves UpdateDate forward to ts. It never moves backwards.
func (n *Node) Touch(ts time.Time) {
	if ts.After(n.UpdateDate) {
		n.UpdateDate = ts
	}
}

type Edge struct {
	From     string
	To       string
	IsAttack bool
}

// Graph is the node/edge store the layout and renderers read from.
// It is not safe for concurrent use; the board goroutine owns it.
type Graph struct {
	nodes map[string]*Node
	order []string
	out   map[string][]*Edge
	in    map[string][]*Edge
}

func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		out:   make(map[string][]*Edge),
		in:    make(map[string][]*Edge),
	}
}

// AddNode inserts n. If a node with the same name exists it is returned unchanged.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.Name == "" {
		return nil, ErrEmptyName
	}
	if existing, ok := g.nodes[n.Name]; ok {
		return existing, nil
	}
	node := &n
	g.nodes[n.Name] = node
	g.order = append(g.order, n.Name)
	return node, nil
}

// Node returns nil when name is not in the graph.
func (g *Graph) Node(name string) *Node {
	return g.nodes[name]
}

// PruneNode removes the node and every edge it creates or receives.
func (g *Graph) PruneNode(name string) bool {
	if _, ok := g.nodes[name]; !ok {
		return false
	}
	for _, e := range slices.Clone(g.out[name]) {
		g.PruneEdge(e)
	}
	for _, e := range slices.Clone(g.in[name]) {
		g.PruneEdge(e)
	}
	delete(g.out, name)
	delete(g.in, name)
	delete(g.nodes, name)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == name })
	return true
}

func (g *Graph) AddEdge(from, to string, isAttack bool) (*Edge, error) {
	if from == to {
		return nil, ErrSelfEdge
	}
	if g.nodes[from] == nil || g.nodes[to] == nil {
		return nil, ErrUnknownNode
	}
	e := &Edge{From: from, To: to, IsAttack: isAttack}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
	return e, nil
}

// EdgesFrom returns a copy, so callers may prune while ranging over it.
func (g *Graph) EdgesFrom(name string) []*Edge {
	return slices.Clone(g.out[name])
}

func (g *Graph) EdgesTo(name string) []*Edge {
	return slices.Clone(g.in[name])
}

func (g *Graph) PruneEdge(e *Edge) bool {
	if e == nil {
		return false
	}
	before := len(g.out[e.From])
	g.out[e.From] = slices.DeleteFunc(g.out[e.From], func(x *Edge) bool { return x == e })
	g.in[e.To] = slices.DeleteFunc(g.in[e.To], func(x *Edge) bool { return x == e })
	return len(g.out[e.From]) != before
}

// EachNode visits nodes in insertion order. fn must not add or prune nodes.
func (g *Graph) EachNode(fn func(*Node)) {
	for _, name := range g.order {
		fn(g.nodes[name])
	}
}

// EachEdge visits edges grouped by creator, creators in node insertion order.
func (g *Graph) EachEdge(fn func(*Edge)) {
	for _, name := range g.order {
		for _, e := range g.out[name] {
			fn(e)
		}
	}
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}
