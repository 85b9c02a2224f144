package board

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/leaderboard-graph/internal/effect"
	"github.com/DoyleJ11/leaderboard-graph/internal/graph"
	"github.com/DoyleJ11/leaderboard-graph/internal/graphsync"
	"github.com/DoyleJ11/leaderboard-graph/internal/layout"
	"github.com/DoyleJ11/leaderboard-graph/internal/roster"
	"github.com/DoyleJ11/leaderboard-graph/internal/types"
)

// Fetcher is the upstream game API.
type Fetcher interface {
	Leaderboard(ctx context.Context, page int) (roster.Page, error)
	Effects(ctx context.Context) ([]effect.Effect, error)
}

// Publisher receives frames for render clients.
type Publisher interface {
	Publish(types.Frame)
}

type pendingCue struct {
	name  string
	delta int
}

// Board owns the graph and everything that mutates it. All state below is
// only touched by the loop goroutine; fetches run elsewhere and post their
// results back through the inbox.
type Board struct {
	inbox   chan Msg
	opts    Options
	fetcher Fetcher
	pub     Publisher

	graph  *graph.Graph
	sync   *graphsync.Synchronizer
	layout *layout.Layout
	pager  roster.Pager

	paused          bool
	effectsInFlight bool
	cues            []pendingCue
	tick            int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	log    *zap.Logger
}

func NewBoard(parent context.Context, fetcher Fetcher, pub Publisher, opts Options, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(parent)

	b := &Board{
		inbox:   make(chan Msg, 64),
		opts:    opts,
		fetcher: fetcher,
		pub:     pub,
		graph:   graph.New(),
		layout:  layout.New(opts.Tuning),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		log:     log,
	}
	b.sync = graphsync.New(b.graph, b, graphsync.Options{
		DecayThreshold: opts.DecayThreshold,
		CreatorPolicy:  opts.CreatorPolicy,
		Logger:         log.Named("sync"),
	})

	go b.loop()
	return b
}

// Expose the inbox so the HTTP and WS layers can send messages.
func (b *Board) Inbox() chan<- Msg { return b.inbox }

// Done is closed once the loop has exited.
func (b *Board) Done() <-chan struct{} { return b.done }

// maxPendingCues bounds the cue queue between two published frames; the
// oldest cues go first.
const maxPendingCues = 256

// AddScoreEffect queues a score cue for the next published frame. Without a
// publisher nothing would ever consume it, so it is dropped.
func (b *Board) AddScoreEffect(n *graph.Node, delta int) {
	if b.pub == nil {
		return
	}
	if len(b.cues) >= maxPendingCues {
		b.cues = append(b.cues[:0], b.cues[len(b.cues)-maxPendingCues+1:]...)
	}
	b.cues = append(b.cues, pendingCue{name: n.Name, delta: delta})
}

func (b *Board) loop() {
	defer close(b.done)

	effectsTick := time.NewTicker(b.opts.EffectsInterval)
	defer effectsTick.Stop()
	rosterTick := time.NewTicker(b.opts.RosterInterval)
	defer rosterTick.Stop()
	frameTick := time.NewTicker(b.opts.FrameInterval)
	defer frameTick.Stop()

	b.refreshRoster()

	for {
		select {
		case <-b.ctx.Done():
			return

		case m := <-b.inbox:
			if stop := b.handle(m); stop {
				b.cancel()
				return
			}

		case <-effectsTick.C:
			b.pollEffects()

		case <-rosterTick.C:
			b.refreshRoster()

		case <-frameTick.C:
			b.step()
		}
	}
}

func (b *Board) handle(m Msg) bool {
	switch msg := m.(type) {
	case GetState:
		msg.Reply <- b.frame(false)

	case Nearest:
		msg.Reply <- b.nearest(msg.X, msg.Y)

	case Pause:
		if !b.paused {
			b.paused = true
			// any page still in flight belongs to a dead sequence now
			b.pager.Cancel()
			b.log.Info("paused")
		}

	case Resume:
		if b.paused {
			b.paused = false
			b.log.Info("resumed")
			if !b.sync.Loaded() {
				b.refreshRoster()
			}
		}

	case PollEffects:
		b.pollEffects()

	case RefreshRoster:
		b.refreshRoster()

	case effectsFetched:
		b.onEffects(msg)

	case rosterPage:
		b.onRosterPage(msg)

	case Shutdown:
		return true
	}
	return false
}

func (b *Board) pollEffects() {
	if b.paused || !b.sync.Loaded() || b.effectsInFlight {
		return
	}
	b.effectsInFlight = true
	go func() {
		ctx, cancel := context.WithTimeout(b.ctx, b.opts.FetchTimeout)
		defer cancel()
		effects, err := b.fetcher.Effects(ctx)
		b.post(effectsFetched{effects: effects, err: err})
	}()
}

func (b *Board) onEffects(msg effectsFetched) {
	b.effectsInFlight = false
	if b.paused {
		return
	}
	if msg.err != nil {
		b.log.Warn("error getting effects", zap.Error(msg.err))
		return
	}

	res := b.sync.Cycle(msg.effects)
	if res.Accepted == 0 {
		return
	}
	b.log.Debug("effects cycle",
		zap.Int("received", res.Received),
		zap.Int("accepted", res.Accepted),
		zap.Int("applied", res.Applied),
		zap.Int("skipped", res.Skipped),
		zap.Strings("pruned", res.Pruned),
		zap.Time("high_water_mark", b.sync.HighWaterMark()))
}

// refreshRoster restarts pagination at page 0. The current roster stays in use
// until the new sequence completes.
func (b *Board) refreshRoster() {
	if b.paused {
		return
	}
	b.fetchPage(b.pager.Start())
}

func (b *Board) fetchPage(req roster.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(b.ctx, b.opts.FetchTimeout)
		defer cancel()
		pg, err := b.fetcher.Leaderboard(ctx, req.Page)
		b.post(rosterPage{req: req, page: pg, err: err})
	}()
}

func (b *Board) onRosterPage(msg rosterPage) {
	if b.paused {
		return
	}
	if msg.err != nil {
		b.log.Warn("error getting leaderboard", zap.Int("page", msg.req.Page), zap.Error(msg.err))
	}

	step := b.pager.Accept(msg.req.Gen, msg.req.Page, msg.page, msg.err)
	switch {
	case step.Stale:
		b.log.Debug("ignoring stale leaderboard page", zap.Uint64("gen", msg.req.Gen), zap.Int("page", msg.req.Page))
	case step.Next != nil:
		b.fetchPage(*step.Next)
	case step.Done != nil:
		b.sync.SetRoster(step.Done)
		b.log.Info("roster loaded",
			zap.Int("players", step.Done.Len()),
			zap.Int("pages", msg.req.Page),
			zap.Bool("partial", step.Failed))
	default:
		b.log.Warn("roster load failed, keeping previous roster", zap.Bool("loaded", b.sync.Loaded()))
	}
}

func (b *Board) post(m Msg) {
	select {
	case b.inbox <- m:
	case <-b.ctx.Done():
	}
}
