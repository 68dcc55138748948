// Package browse implements the client-side half of the ticket table: text
// filtering over an already-fetched ticket list, offset pagination with a
// windowed page display, and a guard against stale scope reloads.
package browse

import (
	"strings"

	"ticketdesk/internal/model"
)

// PageSizes are the selectable page sizes; anything else falls back to
// DefaultPageSize.
var PageSizes = []int{10, 25, 50, 100}

const DefaultPageSize = 25

// Token is one entry of the pagination control: either a concrete page
// number or an ellipsis standing for a collapsed run of pages.
type Token struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// ValidPageSize reports whether n is one of the selectable page sizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// TotalPages is ceil(n/size), never below 1 so an empty list still has a
// current page to stand on.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (n + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage forces page into [1, total].
func ClampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Filter applies the customer name and email queries as case-insensitive
// substring matches. Both must match when both are non-empty; a blank query
// matches everything.
func Filter(tickets []model.Ticket, name, email string) []model.Ticket {
	if strings.TrimSpace(name) == "" && strings.TrimSpace(email) == "" {
		return tickets
	}
	name = strings.ToLower(name)
	email = strings.ToLower(email)
	filtered := make([]model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.TrimSpace(name) != "" && !strings.Contains(strings.ToLower(t.CustomerName), name) {
			continue
		}
		if strings.TrimSpace(email) != "" && !strings.Contains(strings.ToLower(t.CustomerEmail), email) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// Paginate returns the slice of tickets visible on the given page.
func Paginate(tickets []model.Ticket, page, size int) []model.Ticket {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, TotalPages(len(tickets), size))
	start := (page - 1) * size
	if start >= len(tickets) {
		return nil
	}
	end := start + size
	if end > len(tickets) {
		end = len(tickets)
	}
	return tickets[start:end]
}

// PageTokens builds the windowed page display for (current, total): always
// the first page, the last page, the current page and its direct neighbors,
// with every skipped run collapsed into a single ellipsis.
func PageTokens(current, total int) []Token {
	if total < 1 {
		total = 1
	}
	current = ClampPage(current, total)
	var tokens []Token
	for p := 1; p <= total; p++ {
		switch {
		case p == 1 || p == total || (p >= current-1 && p <= current+1):
			tokens = append(tokens, Token{Page: p})
		case p == current-2 || p == current+2:
			tokens = append(tokens, Token{Ellipsis: true})
		}
	}
	return tokens
}
