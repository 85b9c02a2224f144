package board

import (
	"github.com/DoyleJ11/leaderboard-graph/internal/effect"
	"github.com/DoyleJ11/leaderboard-graph/internal/roster"
	"github.com/DoyleJ11/leaderboard-graph/internal/types"
)

type Msg interface{ isBoardMsg() }

// GetState replies with the current frame. Pending score cues are included
// but not consumed.
type GetState struct {
	Reply chan types.Frame
}

// Nearest asks for the node closest to a screen point.
type Nearest struct {
	X, Y  float64
	Reply chan types.Focus
}

type Pause struct{}

type Resume struct{}

// PollEffects and RefreshRoster run a cycle now instead of waiting for the
// next tick. Pause still applies.
type PollEffects struct{}

type RefreshRoster struct{}

type Shutdown struct{}

func (GetState) isBoardMsg()      {}
func (Nearest) isBoardMsg()       {}
func (Pause) isBoardMsg()         {}
func (Resume) isBoardMsg()        {}
func (PollEffects) isBoardMsg()   {}
func (RefreshRoster) isBoardMsg() {}
func (Shutdown) isBoardMsg()      {}

// fetch results posted back by the fetch goroutines

type effectsFetched struct {
	effects []effect.Effect
	err     error
}

type rosterPage struct {
	req  roster.Request
	page roster.Page
	err  error
}

func (effectsFetched) isBoardMsg() {}
func (rosterPage) isBoardMsg()     {}
