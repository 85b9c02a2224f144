package board

import (
	"time"

	"github.com/DoyleJ11/leaderboard-graph/internal/effect"
	"github.com/DoyleJ11/leaderboard-graph/internal/graphsync"
	"github.com/DoyleJ11/leaderboard-graph/internal/layout"
)

type Options struct {
	EffectsInterval time.Duration
	RosterInterval  time.Duration
	FrameInterval   time.Duration
	FetchTimeout    time.Duration
	// BroadcastEvery publishes one frame per this many layout steps.
	BroadcastEvery int

	DecayThreshold time.Duration
	CreatorPolicy  effect.CreatorPolicy

	Viewport    layout.Viewport
	Tuning      layout.Tuning
	FocusRadius float64
}

func DefaultOptions() Options {
	return Options{
		EffectsInterval: time.Second,
		RosterInterval:  10 * time.Second,
		FrameInterval:   time.Second / 30,
		FetchTimeout:    5 * time.Second,
		BroadcastEvery:  2,
		DecayThreshold:  graphsync.DefaultDecayThreshold,
		CreatorPolicy:   effect.FirstSeen,
		Viewport:        layout.Viewport{Width: 1280, Height: 720, Padding: 50},
		Tuning:          layout.DefaultTuning(),
		FocusRadius:     20,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.EffectsInterval <= 0 {
		o.EffectsInterval = d.EffectsInterval
	}
	if o.RosterInterval <= 0 {
		o.RosterInterval = d.RosterInterval
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = d.FrameInterval
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = d.FetchTimeout
	}
	if o.BroadcastEvery <= 0 {
		o.BroadcastEvery = 1
	}
	if o.DecayThreshold <= 0 {
		o.DecayThreshold = d.DecayThreshold
	}
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = d.Viewport
	}
	if o.Tuning == (layout.Tuning{}) {
		o.Tuning = d.Tuning
	}
	return o
}
