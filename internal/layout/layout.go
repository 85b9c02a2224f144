package layout

import (
	"math"
	"slices"
)

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64  { return v.Sub(o).Len() }

// Spring is an edge the layout pulls together.
type Spring struct {
	From, To string
}

type body struct {
	pos Vec
	vel Vec
}

// Layout is a small force-directed simulation keyed by node name. Like the
// graph it is owned by one goroutine.
type Layout struct {
	tuning Tuning
	bodies map[string]*body
	placed int
}

func New(t Tuning) *Layout {
	return &Layout{tuning: t, bodies: make(map[string]*body)}
}

// golden angle, spreads new bodies on a sunflower spiral
const spiralAngle = 2.399963229728653

// Sync adds bodies for new names and drops bodies whose name is gone.
func (l *Layout) Sync(names []string) {
	keep := make(map[string]struct{}, len(names))
	for _, name := range names {
		keep[name] = struct{}{}
		if _, ok := l.bodies[name]; ok {
			continue
		}
		l.placed++
		r := l.tuning.SpringLength * math.Sqrt(float64(l.placed)) / 2
		a := spiralAngle * float64(l.placed)
		l.bodies[name] = &body{pos: Vec{r * math.Cos(a), r * math.Sin(a)}}
	}
	for name := range l.bodies {
		if _, ok := keep[name]; !ok {
			delete(l.bodies, name)
		}
	}
}

func (l *Layout) Len() int { return len(l.bodies) }

func (l *Layout) Position(name string) (Vec, bool) {
	b, ok := l.bodies[name]
	if !ok {
		return Vec{}, false
	}
	return b.pos, true
}

// Step advances the simulation by one tick.
func (l *Layout) Step(springs []Spring) {
	t := l.tuning
	names := l.sortedNames()
	force := make(map[string]Vec, len(names))

	for i, a := range names {
		pa := l.bodies[a].pos
		for _, b := range names[i+1:] {
			d := pa.Sub(l.bodies[b].pos)
			dist := math.Max(d.Len(), t.MinDistance)
			if d.Len() == 0 {
				// coincident bodies: push apart along a fixed axis
				d = Vec{X: 1}
			}
			push := d.Scale(t.Repulsion / (dist * dist * dist))
			force[a] = force[a].Add(push)
			force[b] = force[b].Sub(push)
		}
		force[a] = force[a].Sub(pa.Scale(t.Gravity))
	}

	for _, s := range springs {
		from, ok1 := l.bodies[s.From]
		to, ok2 := l.bodies[s.To]
		if !ok1 || !ok2 || s.From == s.To {
			continue
		}
		d := to.pos.Sub(from.pos)
		dist := d.Len()
		if dist == 0 {
			continue
		}
		pull := d.Scale(t.SpringStiffness * (dist - t.SpringLength) / dist)
		force[s.From] = force[s.From].Add(pull)
		force[s.To] = force[s.To].Sub(pull)
	}

	for _, name := range names {
		b := l.bodies[name]
		b.vel = b.vel.Add(force[name])
		b.vel = b.vel.Scale(1 / t.DampingDiv)
		if speed := b.vel.Len(); speed > t.MaxSpeed {
			b.vel = b.vel.Scale(t.MaxSpeed / speed)
		}
		b.pos = b.pos.Add(b.vel)
	}
}

// Bounds returns the world-space bounding box of all bodies.
func (l *Layout) Bounds() (lo, hi Vec, ok bool) {
	first := true
	for _, b := range l.bodies {
		if first {
			lo, hi, first = b.pos, b.pos, false
			continue
		}
		lo = Vec{math.Min(lo.X, b.pos.X), math.Min(lo.Y, b.pos.Y)}
		hi = Vec{math.Max(hi.X, b.pos.X), math.Max(hi.Y, b.pos.Y)}
	}
	return lo, hi, !first
}

func (l *Layout) sortedNames() []string {
	names := make([]string, 0, len(l.bodies))
	for name := range l.bodies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
