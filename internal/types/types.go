package types

import "time"

type ClientMessage struct {
	Type string  `json:"type"` // "Pause" | "Resume" | "Focus"
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

type ServerMessage struct {
	Type  string `json:"type"` // "Frame" | "Focus" | "Error"
	Frame *Frame `json:"frame,omitempty"`
	Focus *Focus `json:"focus,omitempty"`
	Error string `json:"error,omitempty"`
}

// Frame is everything a renderer needs to draw one picture of the graph.
// Positions are already projected into the configured viewport.
type Frame struct {
	Tick          int        `json:"tick"`
	Loaded        bool       `json:"loaded"`
	Paused        bool       `json:"paused"`
	HighWaterMark time.Time  `json:"high_water_mark"`
	Nodes         []NodeView `json:"nodes"`
	Edges         []EdgeView `json:"edges"`
	Scores        []ScoreCue `json:"scores,omitempty"`
}

type NodeView struct {
	Name      string    `json:"name"`
	Rank      int       `json:"rank"`
	Points    int       `json:"points"`
	AvatarRef string    `json:"avatar_ref,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
}

type EdgeView struct {
	From     string `json:"from"`
	To       string `json:"to"`
	IsAttack bool   `json:"is_attack"`
}

// ScoreCue asks the renderer to float a score delta near a node.
type ScoreCue struct {
	Name  string  `json:"name"`
	Delta int     `json:"delta"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Focus is the answer to a nearest-node query.
type Focus struct {
	Found    bool    `json:"found"`
	Name     string  `json:"name,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}
