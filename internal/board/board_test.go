package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/leaderboard-graph/internal/effect"
	"github.com/DoyleJ11/leaderboard-graph/internal/graph"
	"github.com/DoyleJ11/leaderboard-graph/internal/roster"
	"github.com/DoyleJ11/leaderboard-graph/internal/types"
)

var t1 = time.Date(2015, 6, 10, 14, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	mu           sync.Mutex
	pages        [][]roster.Player
	pageErr      map[int]error
	effects      []effect.Effect
	effectsErr   error
	pageCalls    []int
	effectsCalls int
}

func (f *fakeFetcher) Leaderboard(ctx context.Context, page int) (roster.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls = append(f.pageCalls, page)
	if err := f.pageErr[page]; err != nil {
		return roster.Page{}, err
	}
	if page >= len(f.pages) {
		return roster.Page{}, nil
	}
	return roster.PageOf(f.pages[page]...), nil
}

func (f *fakeFetcher) Effects(ctx context.Context) ([]effect.Effect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effectsCalls++
	if f.effectsErr != nil {
		return nil, f.effectsErr
	}
	out := make([]effect.Effect, len(f.effects))
	copy(out, f.effects)
	return out, nil
}

func (f *fakeFetcher) setEffects(effects ...effect.Effect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effects = effects
}

func (f *fakeFetcher) setPages(pages ...[]roster.Player) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = pages
}

func (f *fakeFetcher) calls() (pages []int, effects int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.pageCalls...), f.effectsCalls
}

type chanPublisher chan types.Frame

func (c chanPublisher) Publish(f types.Frame) {
	select {
	case c <- f:
	default:
	}
}

// quietOptions disables the periodic triggers so tests drive cycles by hand.
func quietOptions() Options {
	o := DefaultOptions()
	o.EffectsInterval = time.Hour
	o.RosterInterval = time.Hour
	o.FrameInterval = time.Hour
	return o
}

func newBoard(t *testing.T, f *fakeFetcher, pub Publisher, opts Options) *Board {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBoard(ctx, f, pub, opts, nil)
	t.Cleanup(func() {
		b.Inbox() <- Shutdown{}
		<-b.Done()
		cancel()
	})
	return b
}

// tryState is safe to call from require.Eventually's goroutine.
func tryState(b *Board) (types.Frame, bool) {
	reply := make(chan types.Frame, 1)
	b.Inbox() <- GetState{Reply: reply}
	select {
	case f := <-reply:
		return f, true
	case <-time.After(time.Second):
		return types.Frame{}, false
	}
}

func getState(t *testing.T, b *Board) types.Frame {
	t.Helper()
	f, ok := tryState(b)
	if !ok {
		t.Fatalf("timed out waiting for state")
	}
	return f
}

func waitFor(t *testing.T, b *Board, cond func(types.Frame) bool) types.Frame {
	t.Helper()
	var mu sync.Mutex
	var last types.Frame
	require.Eventually(t, func() bool {
		f, ok := tryState(b)
		mu.Lock()
		last = f
		mu.Unlock()
		return ok && cond(f)
	}, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	return last
}

func loaded(f types.Frame) bool { return f.Loaded }

func roster2() []roster.Player {
	return []roster.Player{{Name: "A", Points: 10}, {Name: "B", Points: 5}}
}

func TestBoard_LoadsRosterThenAppliesEffects(t *testing.T) {
	f := &fakeFetcher{pages: [][]roster.Player{roster2(), {{Name: "A"}, {Name: "C", Points: 1}}}}
	b := newBoard(t, f, nil, quietOptions())

	waitFor(t, b, loaded)
	pages, _ := f.calls()
	assert.Equal(t, []int{0, 1, 2}, pages)

	f.setEffects(effect.Effect{Creator: "A", Target: "B", Timestamp: t1, Type: effect.TypeAttack})
	b.Inbox() <- PollEffects{}

	st := waitFor(t, b, func(f types.Frame) bool { return len(f.Edges) == 1 })
	assert.Equal(t, []types.EdgeView{{From: "A", To: "B", IsAttack: true}}, st.Edges)
	require.Len(t, st.Nodes, 2)
	assert.Equal(t, "A", st.Nodes[0].Name)
	assert.Equal(t, 1, st.Nodes[0].Rank)
	assert.Equal(t, 2, st.Nodes[1].Rank)
	assert.True(t, st.HighWaterMark.Equal(t1))
}

func TestBoard_NoEffectsPollBeforeRosterLoad(t *testing.T) {
	f := &fakeFetcher{pageErr: map[int]error{0: errors.New("down")}}
	b := newBoard(t, f, nil, quietOptions())

	require.Eventually(t, func() bool {
		pages, _ := f.calls()
		return len(pages) == 1
	}, time.Second, 5*time.Millisecond)

	b.Inbox() <- PollEffects{}
	st := getState(t, b)
	assert.False(t, st.Loaded, "a failed first page keeps the board unloaded")

	_, effects := f.calls()
	assert.Equal(t, 0, effects)
}

func TestBoard_RefreshRestampsNodes(t *testing.T) {
	f := &fakeFetcher{pages: [][]roster.Player{roster2()}}
	b := newBoard(t, f, nil, quietOptions())
	waitFor(t, b, loaded)

	f.setEffects(effect.Effect{Creator: "A", Target: "B", Timestamp: t1})
	b.Inbox() <- PollEffects{}
	waitFor(t, b, func(f types.Frame) bool { return len(f.Nodes) == 2 })

	f.setPages([]roster.Player{{Name: "B", Points: 99}, {Name: "A", Points: 10}})
	b.Inbox() <- RefreshRoster{}

	st := waitFor(t, b, func(f types.Frame) bool { return len(f.Nodes) == 2 && f.Nodes[1].Rank == 1 })
	assert.Equal(t, 99, st.Nodes[1].Points)
	assert.Equal(t, 2, st.Nodes[0].Rank)
	assert.True(t, st.Nodes[0].UpdatedAt.Equal(t1))
}

func TestBoard_FailedRefreshKeepsPreviousRoster(t *testing.T) {
	f := &fakeFetcher{pages: [][]roster.Player{roster2()}}
	b := newBoard(t, f, nil, quietOptions())
	waitFor(t, b, loaded)

	f.mu.Lock()
	f.pageErr = map[int]error{0: errors.New("down")}
	f.mu.Unlock()
	b.Inbox() <- RefreshRoster{}
	require.Eventually(t, func() bool {
		pages, _ := f.calls()
		return len(pages) == 3
	}, time.Second, 5*time.Millisecond)

	f.setEffects(effect.Effect{Creator: "A", Target: "B", Timestamp: t1})
	b.Inbox() <- PollEffects{}
	waitFor(t, b, func(f types.Frame) bool { return len(f.Edges) == 1 })
}

func TestBoard_PauseGatesFetches(t *testing.T) {
	f := &fakeFetcher{pages: [][]roster.Player{roster2()}}
	b := newBoard(t, f, nil, quietOptions())
	waitFor(t, b, loaded)

	b.Inbox() <- Pause{}
	f.setEffects(effect.Effect{Creator: "A", Target: "B", Timestamp: t1})
	b.Inbox() <- PollEffects{}
	b.Inbox() <- RefreshRoster{}

	st := getState(t, b)
	assert.True(t, st.Paused)
	assert.Empty(t, st.Nodes)
	pages, effects := f.calls()
	assert.Equal(t, 0, effects)
	assert.Len(t, pages, 2)

	b.Inbox() <- Resume{}
	b.Inbox() <- PollEffects{}
	st = waitFor(t, b, func(f types.Frame) bool { return len(f.Edges) == 1 })
	assert.False(t, st.Paused)
}

func TestBoard_EffectsErrorLeavesGraphAlone(t *testing.T) {
	f := &fakeFetcher{pages: [][]roster.Player{roster2()}, effectsErr: errors.New("timeout")}
	b := newBoard(t, f, nil, quietOptions())
	waitFor(t, b, loaded)

	b.Inbox() <- PollEffects{}
	require.Eventually(t, func() bool {
		_, n := f.calls()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	st := getState(t, b)
	assert.Empty(t, st.Nodes)

	// once the failed result lands the in-flight guard is released and polls go out again
	f.mu.Lock()
	f.effectsErr = nil
	f.mu.Unlock()
	f.setEffects(effect.Effect{Creator: "B", Target: "A", Timestamp: t1})
	require.Eventually(t, func() bool {
		b.Inbox() <- PollEffects{}
		st, ok := tryState(b)
		return ok && len(st.Edges) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBoard_PublishesFramesWithScoreCues(t *testing.T) {
	f := &fakeFetcher{pages: [][]roster.Player{roster2()}}
	pub := make(chanPublisher, 64)
	opts := quietOptions()
	opts.FrameInterval = 5 * time.Millisecond
	opts.BroadcastEvery = 1
	b := newBoard(t, f, pub, opts)
	waitFor(t, b, loaded)

	f.setEffects(effect.Effect{Creator: "A", Target: "B", Timestamp: t1, ScoreGain: 3})
	b.Inbox() <- PollEffects{}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case fr := <-pub:
			if len(fr.Scores) == 0 {
				continue
			}
			require.Len(t, fr.Scores, 1)
			assert.Equal(t, "B", fr.Scores[0].Name)
			assert.Equal(t, 3, fr.Scores[0].Delta)
			for _, n := range fr.Nodes {
				assert.GreaterOrEqual(t, n.X, 0.0)
				assert.LessOrEqual(t, n.X, opts.Viewport.Width)
			}
			return
		case <-deadline:
			t.Fatalf("no frame carried the score cue")
		}
	}
}

func TestBoard_NearestFindsNode(t *testing.T) {
	f := &fakeFetcher{pages: [][]roster.Player{{{Name: "solo"}}}}
	b := newBoard(t, f, nil, quietOptions())
	waitFor(t, b, loaded)

	f.setEffects(effect.Effect{Creator: "solo", Target: "solo", Timestamp: t1})
	b.Inbox() <- PollEffects{}
	st := waitFor(t, b, func(f types.Frame) bool { return len(f.Nodes) == 1 })

	reply := make(chan types.Focus, 1)
	b.Inbox() <- Nearest{X: st.Nodes[0].X + 3, Y: st.Nodes[0].Y, Reply: reply}
	focus := <-reply
	assert.True(t, focus.Found)
	assert.Equal(t, "solo", focus.Name)

	b.Inbox() <- Nearest{X: st.Nodes[0].X + 300, Y: st.Nodes[0].Y, Reply: reply}
	assert.False(t, (<-reply).Found)
}

func TestBoard_ShutdownStopsLoop(t *testing.T) {
	f := &fakeFetcher{}
	b := NewBoard(context.Background(), f, nil, quietOptions(), nil)

	b.Inbox() <- Shutdown{}
	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatalf("board did not stop")
	}
}

func TestBoard_ScoreCueQueueIsBounded(t *testing.T) {
	t.Run("no publisher", func(t *testing.T) {
		b := &Board{}
		b.AddScoreEffect(&graph.Node{Name: "A"}, 1)
		assert.Empty(t, b.cues)
	})

	t.Run("capped, oldest dropped", func(t *testing.T) {
		b := &Board{pub: make(chanPublisher, 1)}
		for i := 0; i < maxPendingCues+10; i++ {
			b.AddScoreEffect(&graph.Node{Name: "A"}, i)
		}
		require.Len(t, b.cues, maxPendingCues)
		assert.Equal(t, 10, b.cues[0].delta)
		assert.Equal(t, maxPendingCues+9, b.cues[len(b.cues)-1].delta)
	})
}
