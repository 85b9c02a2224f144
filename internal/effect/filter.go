package effect

import (
	"fmt"
	"time"
)

// CreatorPolicy picks which effect survives when a creator appears more than
// once in a batch.
type CreatorPolicy int

const (
	// FirstSeen keeps the first effect per creator in arrival order.
	FirstSeen CreatorPolicy = iota
	// Latest keeps the effect with the greatest timestamp per creator. Ties go
	// to the one seen first.
	Latest
)

func ParseCreatorPolicy(s string) (CreatorPolicy, error) {
	switch s {
	case "", "first":
		return FirstSeen, nil
	case "latest":
		return Latest, nil
	default:
		return FirstSeen, fmt.Errorf("unknown creator policy %q", s)
	}
}

func (p CreatorPolicy) String() string {
	if p == Latest {
		return "latest"
	}
	return "first"
}

// Filter holds the high-water mark across polling cycles.
type Filter struct {
	hwm    time.Time
	policy CreatorPolicy
}

func NewFilter(policy CreatorPolicy) *Filter {
	return &Filter{policy: policy}
}

func (f *Filter) HighWaterMark() time.Time { return f.hwm }

// Apply returns the effects at or after the previous high-water mark, one per
// creator, in arrival order. The mark advances to the newest timestamp in the
// whole batch, including effects that were filtered out.
func (f *Filter) Apply(batch []Effect) []Effect {
	prior := f.hwm
	fresh := make([]Effect, 0, len(batch))
	for _, e := range batch {
		if e.Timestamp.After(f.hwm) {
			f.hwm = e.Timestamp
		}
		// inclusive: a boundary effect may be seen twice, applying it is idempotent
		if !e.Timestamp.Before(prior) {
			fresh = append(fresh, e)
		}
	}
	return onePerCreator(fresh, f.policy)
}

func onePerCreator(batch []Effect, policy CreatorPolicy) []Effect {
	kept := make(map[string]int, len(batch))
	out := make([]Effect, 0, len(batch))
	for _, e := range batch {
		i, seen := kept[e.Creator]
		if !seen {
			kept[e.Creator] = len(out)
			out = append(out, e)
			continue
		}
		if policy == Latest && e.Timestamp.After(out[i].Timestamp) {
			out[i] = e
		}
	}
	return out
}
