package roster

import (
	"golang.org/x/text/unicode/norm"
)

// Player is one leaderboard row.
type Player struct {
	Name      string
	AvatarRef string
	Points    int
}

// Entry is the leaderboard wire shape.
type Entry struct {
	PlayerName string `json:"PlayerName"`
	AvatarUrl  string `json:"AvatarUrl"`
	Points     int    `json:"Points"`
}

// ParseEntries converts wire entries to players. Entries without a name are
// dropped; skipped reports how many.
func ParseEntries(entries []Entry) (players []Player, skipped int) {
	players = make([]Player, 0, len(entries))
	for _, e := range entries {
		name := NormalizeName(e.PlayerName)
		if name == "" {
			skipped++
			continue
		}
		players = append(players, Player{Name: name, AvatarRef: e.AvatarUrl, Points: e.Points})
	}
	return players, skipped
}

// Page is one leaderboard page. Entries counts what the server sent,
// including entries that were dropped, so an all-invalid page is not mistaken
// for the end of the leaderboard.
type Page struct {
	Players []Player
	Entries int
}

func (p Page) Empty() bool { return p.Entries == 0 }

// PageOf builds a page where every entry parsed.
func PageOf(players ...Player) Page {
	return Page{Players: players, Entries: len(players)}
}

// ParsePage is ParseEntries wrapped into a Page.
func ParsePage(entries []Entry) (Page, int) {
	players, skipped := ParseEntries(entries)
	return Page{Players: players, Entries: len(entries)}, skipped
}

// NormalizeName puts a player name into NFC so both upstream endpoints key the
// same player identically. Case is preserved.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// Roster is an immutable ranked snapshot. Rank is the 1-based position in
// server order.
type Roster struct {
	players []Player
	index   map[string]int
}

// Lookup is safe on a nil Roster and reports not found.
func (r *Roster) Lookup(name string) (Player, int, bool) {
	if r == nil {
		return Player{}, 0, false
	}
	i, ok := r.index[name]
	if !ok {
		return Player{}, 0, false
	}
	return r.players[i], i + 1, true
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.players)
}

// Players returns a copy in rank order.
func (r *Roster) Players() []Player {
	if r == nil {
		return nil
	}
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

// Builder accumulates pages. The first occurrence of a name wins.
type Builder struct {
	players []Player
	index   map[string]int
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

func (b *Builder) Add(players ...Player) {
	for _, p := range players {
		if p.Name == "" {
			continue
		}
		if _, dup := b.index[p.Name]; dup {
			continue
		}
		b.index[p.Name] = len(b.players)
		b.players = append(b.players, p)
	}
}

func (b *Builder) Len() int { return len(b.players) }

// Build snapshots the builder; later Adds do not affect the result.
func (b *Builder) Build() *Roster {
	r := &Roster{
		players: make([]Player, len(b.players)),
		index:   make(map[string]int, len(b.index)),
	}
	copy(r.players, b.players)
	for k, v := range b.index {
		r.index[k] = v
	}
	return r
}
