package browse

import "ticketdesk/internal/model"

// Browser is the transient browsing state behind one staff member's ticket
// table: the last loaded list for the selected event scope, both text
// filters, and the pagination cursor. It is not safe for concurrent use;
// callers serialize access per session.
type Browser struct {
	scope    string
	loadSeq  uint64
	loaded   bool
	tickets  []model.Ticket
	filtered []model.Ticket
	name     string
	email    string
	page     int
	perPage  int
}

// LoadToken ties a reload completion back to the request that started it.
type LoadToken struct {
	seq uint64
}

func NewBrowser() *Browser {
	return &Browser{page: 1, perPage: DefaultPageSize}
}

// Scope returns the event id the current ticket list was loaded for; empty
// means all events.
func (b *Browser) Scope() string { return b.scope }

// Loaded reports whether any ticket list has been installed yet.
func (b *Browser) Loaded() bool { return b.loaded }

// BeginLoad records that a reload for the given event scope has started and
// returns the token its completion must present. Starting a newer load
// invalidates every earlier token.
func (b *Browser) BeginLoad(scope string) LoadToken {
	b.loadSeq++
	b.scope = scope
	return LoadToken{seq: b.loadSeq}
}

// CompleteLoad installs the fetched tickets unless a newer load started
// after the token was issued, so a slow response for an older event scope
// never overwrites the list of a newer one. Reports whether the result was
// applied.
func (b *Browser) CompleteLoad(tok LoadToken, tickets []model.Ticket) bool {
	if tok.seq != b.loadSeq {
		return false
	}
	b.loaded = true
	b.tickets = tickets
	b.refilter()
	return true
}

// SetFilters replaces both text queries and recomputes the filtered set.
func (b *Browser) SetFilters(name, email string) {
	if name == b.name && email == b.email {
		return
	}
	b.name = name
	b.email = email
	b.refilter()
}

// SetPerPage switches the page size; values outside PageSizes fall back to
// the default. Any change lands back on page 1.
func (b *Browser) SetPerPage(n int) {
	if !ValidPageSize(n) {
		n = DefaultPageSize
	}
	if n == b.perPage {
		return
	}
	b.perPage = n
	b.page = 1
}

// GoToPage moves the cursor, clamped to [1, TotalPages].
func (b *Browser) GoToPage(page int) {
	b.page = ClampPage(page, b.TotalPages())
}

// refilter recomputes the filtered set and resets to the first page, which
// keeps the cursor from landing on an out-of-range empty page.
func (b *Browser) refilter() {
	b.filtered = Filter(b.tickets, b.name, b.email)
	b.page = 1
}

// Page returns the tickets visible on the current page.
func (b *Browser) Page() []model.Ticket {
	return Paginate(b.filtered, b.page, b.perPage)
}

// Tokens returns the windowed page display for the current position.
func (b *Browser) Tokens() []Token {
	return PageTokens(b.page, b.TotalPages())
}

func (b *Browser) TotalPages() int    { return TotalPages(len(b.filtered), b.perPage) }
func (b *Browser) CurrentPage() int   { return b.page }
func (b *Browser) PerPage() int       { return b.perPage }
func (b *Browser) FilteredCount() int { return len(b.filtered) }
func (b *Browser) TotalCount() int    { return len(b.tickets) }
