package http

import (
	"errors"
	"log/slog"
	"net/http"

	"mondash/internal/core"
	"mondash/internal/monzo"
	"mondash/internal/session"
)

// handleDashboard refreshes the user's ledger, runs aggregation and transfer
// matching over the full item list and renders the result.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	out, err := s.authenticate(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}
	switch out.status {
	case BadRequest:
		http.Error(w, "invalid session cookie", http.StatusBadRequest)
		return
	case NeedsReauth:
		s.startAuth(w, r, out.sess)
		return
	}
	sess, api := out.sess, out.api
	ctx := r.Context()

	if sess.UserID == "" {
		userID, err := api.WhoAmI(ctx)
		if err != nil {
			s.upstreamError(w, r, err, sess)
			return
		}
		sess.UserID = userID
		if err := s.sessions.Save(ctx, sess); err != nil {
			slog.ErrorContext(ctx, "Session save failed", "error", err)
			http.Error(w, "session store unavailable", http.StatusInternalServerError)
			return
		}
	}

	led, appended, err := s.cache.GetOrRefresh(ctx, sess.UserID, api)
	if err != nil {
		s.upstreamError(w, r, err, sess)
		return
	}
	balances, err := api.Balances(ctx, led.AccountIDs())
	if err != nil {
		s.upstreamError(w, r, err, sess)
		return
	}

	if s.publisher != nil && appended > 0 {
		// Display does not depend on the event; a broker outage only
		// costs the notification.
		if err := s.publisher.PublishLedgerRefresh(ctx, sess.UserID, appended, len(led.Items)); err != nil {
			slog.WarnContext(ctx, "Refresh event publish failed", "error", err, "user", sess.UserID)
		}
	}

	summary := core.Aggregate(led.Items)
	dupes := core.MatchTransfers(led.Items)
	data := buildDashboard(sess.UserID, led, balances, summary, dupes)

	if s.templates == nil {
		slog.ErrorContext(ctx, "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(ctx, "Dashboard template execution failed", "error", err, "template", "dashboard.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// upstreamError maps API-client failures: a rejected credential restarts the
// OAuth flow, anything else surfaces as a gateway or internal error.
func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error, sess session.Session) {
	if errors.Is(err, monzo.ErrNotAuthorized) {
		slog.InfoContext(r.Context(), "Credential rejected upstream, restarting auth", "user", sess.UserID)
		s.startAuth(w, r, sess)
		return
	}
	var apiErr *monzo.APIError
	if errors.As(err, &apiErr) {
		slog.ErrorContext(r.Context(), "Upstream error", "status", apiErr.Status, "path", apiErr.Path)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}
	slog.ErrorContext(r.Context(), "Dashboard error", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// handleCallback completes the OAuth flow: verifies state, exchanges the
// code and stores the credential on the session.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := r.Cookie(sessionCookie)
	if err != nil {
		http.Error(w, "no session", http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Get(ctx, c.Value)
	if errors.Is(err, session.ErrNotFound) {
		http.Error(w, "unknown session", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "Session lookup failed", "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" || sess.State == "" || state != sess.State {
		slog.WarnContext(ctx, "OAuth state mismatch", "session", sess.ID)
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "Code exchange failed", "error", err)
		http.Error(w, "code exchange failed", http.StatusBadGateway)
		return
	}

	sess.AccessToken = tok.AccessToken
	sess.ExpiresAt = tok.Expiry
	if tok.UserID != "" {
		sess.UserID = tok.UserID
	}
	sess.State = "" // single use
	if err := s.sessions.Save(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "Session save failed", "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(ctx, "Authentication completed", "user", sess.UserID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleClear drops the user's cached ledger so the next dashboard request
// performs a full fetch. The session and its credential survive.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	out, err := s.authenticate(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}
	if out.status == Authenticated && out.sess.UserID != "" {
		s.cache.Invalidate(out.sess.UserID)
		slog.InfoContext(r.Context(), "Ledger cache cleared", "user", out.sess.UserID)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout drops the cached ledger and the session itself, then clears
// the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, err := s.sessions.Get(ctx, c.Value); err == nil {
			if sess.UserID != "" {
				s.cache.Invalidate(sess.UserID)
			}
			if err := s.sessions.Delete(ctx, sess.ID); err != nil {
				slog.ErrorContext(ctx, "Session delete failed", "error", err, "session", sess.ID)
			}
			slog.InfoContext(ctx, "Logged out", "user", sess.UserID)
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
