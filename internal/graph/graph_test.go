package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, names ...string) *Graph {
	t.Helper()
	g := New()
	for _, name := range names {
		_, err := g.AddNode(Node{Name: name})
		require.NoError(t, err)
	}
	return g
}

func TestAddNode_RejectsEmptyName(t *testing.T) {
	g := New()
	_, err := g.AddNode(Node{})
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("want ErrEmptyName, got %v", err)
	}
}

func TestAddNode_ExistingIsReturnedUnchanged(t *testing.T) {
	g := New()
	first, err := g.AddNode(Node{Name: "alice", Points: 10})
	require.NoError(t, err)

	second, err := g.AddNode(Node{Name: "alice", Points: 99})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 10, second.Points)
	assert.Equal(t, 1, g.NodeCount())
}

func TestNamesAreCaseSensitive(t *testing.T) {
	g := newGraph(t, "alice", "Alice")
	assert.Equal(t, 2, g.NodeCount())
	assert.NotSame(t, g.Node("alice"), g.Node("Alice"))
}

func TestAddEdge(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{name: "between known nodes", from: "a", to: "b"},
		{name: "self edge", from: "a", to: "a", wantErr: ErrSelfEdge},
		{name: "unknown target", from: "a", to: "zz", wantErr: ErrUnknownNode},
		{name: "unknown creator", from: "zz", to: "a", wantErr: ErrUnknownNode},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGraph(t, "a", "b")
			e, err := g.AddEdge(tc.from, tc.to, true)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, 0, g.EdgeCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []*Edge{e}, g.EdgesFrom(tc.from))
			assert.Equal(t, []*Edge{e}, g.EdgesTo(tc.to))
		})
	}
}

func TestPruneNode_RemovesIncidentEdges(t *testing.T) {
	g := newGraph(t, "a", "b", "c")
	_, err := g.AddEdge("a", "b", true)
	require.NoError(t, err)
	_, err = g.AddEdge("b", "c", false)
	require.NoError(t, err)
	_, err = g.AddEdge("c", "a", false)
	require.NoError(t, err)

	require.True(t, g.PruneNode("b"))

	assert.Nil(t, g.Node("b"))
	assert.Equal(t, 1, g.EdgeCount())
	g.EachEdge(func(e *Edge) {
		assert.NotEqual(t, "b", e.From)
		assert.NotEqual(t, "b", e.To)
	})
	assert.Empty(t, g.EdgesFrom("a"))
	assert.False(t, g.PruneNode("b"))
}

func TestPruneEdge_WhileRangingOverEdgesFrom(t *testing.T) {
	g := newGraph(t, "a", "b", "c")
	_, _ = g.AddEdge("a", "b", false)
	_, _ = g.AddEdge("a", "c", false)

	for _, e := range g.EdgesFrom("a") {
		assert.True(t, g.PruneEdge(e))
	}
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.EdgesTo("b"))
	assert.False(t, g.PruneEdge(nil))
}

func TestEachNode_InsertionOrder(t *testing.T) {
	g := newGraph(t, "c", "a", "b")
	g.PruneNode("a")
	_, _ = g.AddNode(Node{Name: "a"})

	var got []string
	g.EachNode(func(n *Node) { got = append(got, n.Name) })
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestTouch_NeverMovesBackwards(t *testing.T) {
	t1 := time.Date(2015, 6, 10, 14, 0, 0, 0, time.UTC)
	n := &Node{Name: "a"}

	n.Touch(t1)
	n.Touch(t1.Add(-time.Minute))
	assert.True(t, n.UpdateDate.Equal(t1))

	n.Touch(t1.Add(time.Second))
	assert.True(t, n.UpdateDate.Equal(t1.Add(time.Second)))
}
