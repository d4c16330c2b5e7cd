package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "moodfm_session"
	userIDKey   = "user_id"

	// sessionMaxAge bounds how long a login survives, in seconds.
	sessionMaxAge = 3600 * 16
)

// SessionManager owns the cookie session store. Downstream code only ever
// sees the resolved user id; everything else about the session is opaque.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a cookie-backed session store signed with the
// given secret.
func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// session fetches the request's session. A tampered or stale cookie yields a
// fresh anonymous session rather than an error.
func (m *SessionManager) session(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, sessionName)
	return s
}

// SignIn clears any existing session state and records the authenticated
// user id.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	s := m.session(r)
	for k := range s.Values {
		delete(s.Values, k)
	}
	s.Values[userIDKey] = userID

	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SignOut clears all session state, returning the client to anonymous. The
// cookie itself stays alive so a farewell flash can still be delivered.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	s := m.session(r)
	for k := range s.Values {
		delete(s.Values, k)
	}

	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the authenticated user id for the request, or false
// when the session is anonymous.
func (m *SessionManager) CurrentUser(r *http.Request) (int64, bool) {
	v, ok := m.session(r).Values[userIDKey]
	if !ok {
		return 0, false
	}

	id, ok := v.(int64)
	return id, ok
}

// Flash queues a one-shot notice for the next rendered page.
func (m *SessionManager) Flash(w http.ResponseWriter, r *http.Request, message string) {
	s := m.session(r)
	s.AddFlash(message)
	// Save errors here only lose the notice, never state.
	_ = s.Save(r, w)
}

// Flashes drains and returns all queued notices.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	s := m.session(r)

	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save(r, w)

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
