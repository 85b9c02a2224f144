package board

import (
	"github.com/DoyleJ11/leaderboard-graph/internal/graph"
	"github.com/DoyleJ11/leaderboard-graph/internal/layout"
	"github.com/DoyleJ11/leaderboard-graph/internal/types"
)

// step advances the layout and publishes every BroadcastEvery ticks.
func (b *Board) step() {
	b.tick++
	b.syncLayout()
	b.layout.Step(b.springs())

	if b.pub != nil && b.tick%b.opts.BroadcastEvery == 0 {
		b.pub.Publish(b.frame(true))
	}
}

func (b *Board) syncLayout() {
	names := make([]string, 0, b.graph.NodeCount())
	b.graph.EachNode(func(n *graph.Node) { names = append(names, n.Name) })
	b.layout.Sync(names)
}

func (b *Board) springs() []layout.Spring {
	springs := make([]layout.Spring, 0, b.graph.EdgeCount())
	b.graph.EachEdge(func(e *graph.Edge) {
		springs = append(springs, layout.Spring{From: e.From, To: e.To})
	})
	return springs
}

// frame snapshots the graph. With consume set, queued score cues are handed
// out once and cleared.
func (b *Board) frame(consume bool) types.Frame {
	b.syncLayout()
	proj := b.layout.Project(b.opts.Viewport)

	f := types.Frame{
		Tick:          b.tick,
		Loaded:        b.sync.Loaded(),
		Paused:        b.paused,
		HighWaterMark: b.sync.HighWaterMark(),
		Nodes:         make([]types.NodeView, 0, b.graph.NodeCount()),
		Edges:         make([]types.EdgeView, 0, b.graph.EdgeCount()),
	}

	b.graph.EachNode(func(n *graph.Node) {
		pos, _ := b.layout.Position(n.Name)
		pt := proj.ToScreen(pos)
		f.Nodes = append(f.Nodes, types.NodeView{
			Name:      n.Name,
			Rank:      n.Rank,
			Points:    n.Points,
			AvatarRef: n.AvatarRef,
			UpdatedAt: n.UpdateDate,
			X:         pt.X,
			Y:         pt.Y,
		})
	})
	b.graph.EachEdge(func(e *graph.Edge) {
		f.Edges = append(f.Edges, types.EdgeView{From: e.From, To: e.To, IsAttack: e.IsAttack})
	})

	for _, c := range b.cues {
		pos, ok := b.layout.Position(c.name)
		if !ok {
			// node was pruned before anyone saw the cue
			continue
		}
		pt := proj.ToScreen(pos)
		f.Scores = append(f.Scores, types.ScoreCue{Name: c.name, Delta: c.delta, X: pt.X, Y: pt.Y})
	}
	if consume {
		b.cues = b.cues[:0]
	}
	return f
}

func (b *Board) nearest(x, y float64) types.Focus {
	b.syncLayout()
	proj := b.layout.Project(b.opts.Viewport)
	name, d, ok := b.layout.Nearest(layout.Vec{X: x, Y: y}, proj, b.opts.FocusRadius)
	if !ok {
		return types.Focus{}
	}
	return types.Focus{Found: true, Name: name, Distance: d}
}
