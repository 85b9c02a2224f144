package graphsync

import (
	"time"

	"github.com/DoyleJ11/leaderboard-graph/internal/graph"
)

const DefaultDecayThreshold = 120 * time.Second

// DecayPolicy evicts nodes no effect has touched for longer than Threshold,
// measured against the high-water mark rather than the wall clock.
type DecayPolicy struct {
	Threshold time.Duration
}

// Expired treats a never-touched node as infinitely stale.
func (p DecayPolicy) Expired(n *graph.Node, hwm time.Time) bool {
	if n.UpdateDate.IsZero() {
		return true
	}
	return hwm.Sub(n.UpdateDate) > p.Threshold
}

// Sweep prunes expired nodes with their edges and returns their names. It
// does nothing until the first roster load completed.
func (s *Synchronizer) Sweep() []string {
	if !s.loaded {
		return nil
	}
	hwm := s.filter.HighWaterMark()

	var expired []string
	s.graph.EachNode(func(n *graph.Node) {
		if s.decay.Expired(n, hwm) {
			expired = append(expired, n.Name)
		}
	})
	for _, name := range expired {
		s.graph.PruneNode(name)
	}
	return expired
}
