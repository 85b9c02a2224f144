package graphsync

import (
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/leaderboard-graph/internal/effect"
	"github.com/DoyleJ11/leaderboard-graph/internal/graph"
	"github.com/DoyleJ11/leaderboard-graph/internal/roster"
)

// Notifier receives score cues. It is the only outward call the synchronizer
// makes; implementations must not block.
type Notifier interface {
	AddScoreEffect(node *graph.Node, delta int)
}

type NotifierFunc func(node *graph.Node, delta int)

func (f NotifierFunc) AddScoreEffect(node *graph.Node, delta int) { f(node, delta) }

type Options struct {
	DecayThreshold time.Duration
	CreatorPolicy  effect.CreatorPolicy
	Logger         *zap.Logger
}

// Synchronizer reconciles roster snapshots and effect batches into a graph.
// A single goroutine must own it.
type Synchronizer struct {
	graph  *graph.Graph
	roster *roster.Roster
	loaded bool
	filter *effect.Filter
	decay  DecayPolicy
	notify Notifier
	log    *zap.Logger
}

// CycleResult summarises one effects cycle.
type CycleResult struct {
	Received int
	Accepted int
	Applied  int
	Skipped  int
	Pruned   []string
}

func New(g *graph.Graph, notify Notifier, opts Options) *Synchronizer {
	if opts.DecayThreshold <= 0 {
		opts.DecayThreshold = DefaultDecayThreshold
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if notify == nil {
		notify = NotifierFunc(func(*graph.Node, int) {})
	}
	return &Synchronizer{
		graph:  g,
		filter: effect.NewFilter(opts.CreatorPolicy),
		decay:  DecayPolicy{Threshold: opts.DecayThreshold},
		notify: notify,
		log:    opts.Logger,
	}
}

func (s *Synchronizer) Graph() *graph.Graph { return s.graph }

func (s *Synchronizer) Roster() *roster.Roster { return s.roster }

// Loaded reports whether a roster load has completed at least once.
func (s *Synchronizer) Loaded() bool { return s.loaded }

func (s *Synchronizer) HighWaterMark() time.Time { return s.filter.HighWaterMark() }

// SetRoster installs a completed roster and re-stamps rank, points and avatar
// of every node that has a match. UpdateDate is kept; unmatched nodes are left
// alone for the decay sweep.
func (s *Synchronizer) SetRoster(r *roster.Roster) {
	s.roster = r
	s.loaded = true

	restamped := 0
	s.graph.EachNode(func(n *graph.Node) {
		p, rank, ok := r.Lookup(n.Name)
		if !ok {
			return
		}
		n.Rank = rank
		n.Points = p.Points
		n.AvatarRef = p.AvatarRef
		restamped++
	})
	s.log.Debug("roster installed",
		zap.Int("players", r.Len()),
		zap.Int("restamped", restamped),
		zap.Int("nodes", s.graph.NodeCount()))
}

// Cycle filters a raw batch, applies what survives and sweeps decayed nodes.
// An empty filtered batch changes nothing.
func (s *Synchronizer) Cycle(batch []effect.Effect) CycleResult {
	res := CycleResult{Received: len(batch)}

	accepted := s.filter.Apply(batch)
	res.Accepted = len(accepted)
	if len(accepted) == 0 {
		return res
	}

	for _, e := range accepted {
		if s.Apply(e) {
			res.Applied++
		} else {
			res.Skipped++
		}
	}
	res.Pruned = s.Sweep()
	return res
}

// Apply applies one effect and reports whether it was applied. Effects naming
// a player that is neither in the graph nor in the roster are skipped without
// touching anything.
func (s *Synchronizer) Apply(e effect.Effect) bool {
	creator, ok := s.resolve(e.Creator)
	if !ok {
		s.log.Debug("skipping effect, creator not in roster", zap.String("creator", e.Creator))
		return false
	}
	target, ok := s.resolve(e.Target)
	if !ok {
		s.log.Debug("skipping effect, target not in roster", zap.String("target", e.Target))
		return false
	}

	c := creator.materialize(s.graph)
	t := target.materialize(s.graph)
	if c == nil || t == nil {
		return false
	}

	c.Touch(e.Timestamp)
	t.Touch(e.Timestamp)

	// at most one outgoing edge per creator
	for _, edge := range s.graph.EdgesFrom(c.Name) {
		s.graph.PruneEdge(edge)
	}
	if c.Name != t.Name {
		if _, err := s.graph.AddEdge(c.Name, t.Name, e.IsAttack()); err != nil {
			s.log.Warn("add edge", zap.Error(err))
		}
	}

	if t.LastScoreGain != e.ScoreGain {
		t.LastScoreGain = e.ScoreGain
		s.notify.AddScoreEffect(t, e.ScoreGain)
	}
	return true
}

// resolved is a node that exists or a roster player it can be created from.
type resolved struct {
	node   *graph.Node
	player roster.Player
	rank   int
}

func (s *Synchronizer) resolve(name string) (resolved, bool) {
	if n := s.graph.Node(name); n != nil {
		return resolved{node: n}, true
	}
	p, rank, ok := s.roster.Lookup(name)
	if !ok {
		return resolved{}, false
	}
	return resolved{player: p, rank: rank}, true
}

func (r resolved) materialize(g *graph.Graph) *graph.Node {
	if r.node != nil {
		return r.node
	}
	// creator and target may be the same new player
	n, err := g.AddNode(graph.Node{
		Name:      r.player.Name,
		Rank:      r.rank,
		Points:    r.player.Points,
		AvatarRef: r.player.AvatarRef,
	})
	if err != nil {
		return nil
	}
	return n
}
