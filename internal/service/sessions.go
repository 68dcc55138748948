package service

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/wb-go/wbf/ginext"

	"ticketdesk/internal/browse"
	"ticketdesk/internal/form"
)

const sessionCookie = "ticketdesk_session"

// session is one staff member's transient dashboard state: the event form
// machine and the ticket browser. Nothing here survives a restart; the
// ticketing service is the only state of record.
type session struct {
	mu      sync.Mutex
	form    *form.Form
	browser *browse.Browser
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := &session{
		form:    form.New(),
		browser: browse.NewBrowser(),
	}
	s.sessions[id] = sess
	return sess
}

func newSessionID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// session resolves the caller's session from the cookie, minting a new one
// on first contact.
func (s *service) session(ctx *ginext.Context) *session {
	id, err := ctx.Cookie(sessionCookie)
	if err != nil || id == "" {
		id = newSessionID()
		ctx.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	}
	return s.sessions.get(id)
}
