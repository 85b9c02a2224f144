// Package types holds the JSON shapes exchanged with render clients over /ws
// and returned by the HTTP endpoints.
//
// Client -> Server
//
//	Pause: {}
//	Resume: {}
//	Focus:
//	  x: number   // screen space, same viewport as frame positions
//	  y: number
//
// Server -> Client
//
//	Frame:
//	  tick: number
//	  loaded: boolean            // first roster load has completed
//	  paused: boolean
//	  high_water_mark: string    // RFC3339, newest effect timestamp seen
//	  nodes: { name, rank, points, avatar_ref, updated_at, x, y }[]
//	  edges: { from, to, is_attack }[]
//	  scores: { name, delta, x, y }[]  // optional, one-shot
//
//	Focus:
//	  found: boolean
//	  name: string
//	  distance: number
//
//	Error:
//	  error: string
package types
