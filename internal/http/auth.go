package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mondash/internal/monzo"
	"mondash/internal/session"
)

const sessionCookie = "mondash_session"

// AuthStatus is the outcome of the session guard. Handlers branch on it
// explicitly instead of relying on redirects buried in middleware.
type AuthStatus int

const (
	// Authenticated means the session carries a live credential and the
	// outcome includes a ready API client.
	Authenticated AuthStatus = iota
	// NeedsReauth means there is no usable credential: no cookie, no
	// session row, or an expired token. The caller starts a fresh flow.
	NeedsReauth
	// BadRequest means the request carried a cookie that cannot be a
	// session id. The caller rejects it.
	BadRequest
)

type authOutcome struct {
	status AuthStatus
	sess   session.Session
	api    *monzo.Client
}

// authenticate inspects the session cookie and classifies the request. An
// error is returned only for session-store failures.
func (s *Server) authenticate(r *http.Request) (authOutcome, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return authOutcome{status: NeedsReauth}, nil
	}
	if !validSessionID(c.Value) {
		return authOutcome{status: BadRequest}, nil
	}

	sess, err := s.sessions.Get(r.Context(), c.Value)
	if errors.Is(err, session.ErrNotFound) {
		return authOutcome{status: NeedsReauth}, nil
	}
	if err != nil {
		return authOutcome{}, err
	}
	if !sess.Authenticated(time.Now()) {
		// Reuse the existing session row so the cookie stays stable
		// across re-authentication.
		return authOutcome{status: NeedsReauth, sess: sess}, nil
	}
	return authOutcome{
		status: Authenticated,
		sess:   sess,
		api:    monzo.NewWithBaseURL(s.apiURL, sess.AccessToken),
	}, nil
}

// validSessionID accepts the ids NewID produces: lowercase hex, or the
// timestamp fallback form.
func validSessionID(id string) bool {
	if len(id) < 8 || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r == 's' || r == 'e' || r == '_':
		default:
			return false
		}
	}
	return true
}

// startAuth issues a fresh OAuth state, persists it on the session and
// redirects the browser to the hosted login page.
func (s *Server) startAuth(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if sess.ID == "" {
		sess.ID = session.NewID()
	}
	sess.State = session.NewID()
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		slog.ErrorContext(r.Context(), "Session save failed", "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthCodeURL(sess.State), http.StatusFound)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
