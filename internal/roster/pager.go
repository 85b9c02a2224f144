package roster

// Request asks for one leaderboard page within a pagination sequence.
type Request struct {
	Gen  uint64
	Page int
}

// Step is what the caller should do after a page result was accepted.
type Step struct {
	// Stale is set when the result belongs to a superseded sequence or an
	// unexpected page. Nothing else is set.
	Stale bool
	// Next is the page to fetch next, nil once the sequence ended.
	Next *Request
	// Done is the completed roster. It is nil when the sequence ended in a
	// failure before any player was collected.
	Done *Roster
	// Failed reports that the sequence ended because a fetch failed.
	Failed bool
}

// Pager drives paginated roster loads. It does no I/O: the caller fetches the
// requested page and feeds the result back through Accept.
type Pager struct {
	gen      uint64
	page     int
	active   bool
	building *Builder
}

// Start begins a new sequence at page 0 and invalidates any in-flight one.
func (p *Pager) Start() Request {
	p.gen++
	p.page = 0
	p.active = true
	p.building = NewBuilder()
	return Request{Gen: p.gen, Page: 0}
}

// Cancel invalidates the in-flight sequence, if any.
func (p *Pager) Cancel() {
	p.gen++
	p.active = false
	p.building = nil
}

func (p *Pager) Active() bool { return p.active }

func (p *Pager) Generation() uint64 { return p.gen }

// Accept folds one page result into the sequence. The sequence ends on a page
// the server sent with no entries; an error ends it early.
func (p *Pager) Accept(gen uint64, page int, pg Page, err error) Step {
	if !p.active || gen != p.gen || page != p.page {
		return Step{Stale: true}
	}

	if err != nil || pg.Empty() {
		p.active = false
		built := p.building
		p.building = nil
		if err != nil && built.Len() == 0 {
			return Step{Failed: true}
		}
		return Step{Done: built.Build(), Failed: err != nil}
	}

	p.building.Add(pg.Players...)
	p.page++
	return Step{Next: &Request{Gen: p.gen, Page: p.page}}
}
