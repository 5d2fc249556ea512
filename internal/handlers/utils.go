package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jason-s-yu/swick/internal/auth"
	"github.com/sirupsen/logrus"
)

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// sessionFromRequest authenticates the session cookie.
func sessionFromRequest(r *http.Request) (auth.Session, error) {
	token := extractCookieToken(r.Header.Get("Cookie"), auth.SessionCookieName)
	if token == "" {
		return auth.Session{}, errNoSession
	}
	return auth.AuthenticateSession(token)
}

// issueSession signs s and sets it as the session cookie.
func issueSession(w http.ResponseWriter, s auth.Session) error {
	token, err := auth.CreateSessionToken(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ensureSession returns the caller's session, issuing a fresh guest session
// when the cookie is missing or no longer valid.
func ensureSession(w http.ResponseWriter, r *http.Request) (auth.Session, error) {
	if s, err := sessionFromRequest(r); err == nil {
		return s, nil
	}
	s := auth.NewSession("Guest")
	if err := issueSession(w, s); err != nil {
		return auth.Session{}, err
	}
	return s, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("failed to encode response: %v", err)
	}
}
