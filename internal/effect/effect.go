package effect

import (
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/leaderboard-graph/internal/roster"
)

var ErrMissingCreator = errors.New("effect has no creator")
var ErrMissingTarget = errors.New("effect has no target")
var ErrBadTimestamp = errors.New("effect timestamp is not a date")

const TypeAttack = "Attack"

// Effect is one interaction between two players, already validated.
type Effect struct {
	Creator   string
	Target    string
	Timestamp time.Time
	Type      string
	ScoreGain int
}

func (e Effect) IsAttack() bool { return e.Type == TypeAttack }

// Record is the effects endpoint wire shape.
type Record struct {
	Creator   string   `json:"Creator"`
	Targets   string   `json:"Targets"`
	Timestamp string   `json:"Timestamp"`
	Effect    *Payload `json:"Effect,omitempty"`
}

type Payload struct {
	EffectType string `json:"EffectType"`
	VoteGain   *int   `json:"VoteGain,omitempty"`
}

// Parse validates a wire record. Missing optional fields default to a
// non-attack with zero score gain.
func Parse(rec Record) (Effect, error) {
	creator := roster.NormalizeName(rec.Creator)
	if creator == "" {
		return Effect{}, ErrMissingCreator
	}
	target := roster.NormalizeName(rec.Targets)
	if target == "" {
		return Effect{}, ErrMissingTarget
	}
	ts, err := ParseTimestamp(rec.Timestamp)
	if err != nil {
		return Effect{}, err
	}

	e := Effect{Creator: creator, Target: target, Timestamp: ts}
	if rec.Effect != nil {
		e.Type = rec.Effect.EffectType
		if rec.Effect.VoteGain != nil {
			e.ScoreGain = *rec.Effect.VoteGain
		}
	}
	return e, nil
}

// ParseBatch keeps the records that parse, in order.
func ParseBatch(recs []Record) (effects []Effect, skipped int) {
	effects = make([]Effect, 0, len(recs))
	for _, rec := range recs {
		e, err := Parse(rec)
		if err != nil {
			skipped++
			continue
		}
		effects = append(effects, e)
	}
	return effects, skipped
}

// upstream serialises dates without a zone; those are UTC. The fractional
// layout accepts any number of digits.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrBadTimestamp
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	for _, layout := range zonelessLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}
