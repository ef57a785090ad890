package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// CSRFCookieName is the double-submit cookie the desk layout script mirrors
// back as the _csrf form field. It must stay readable from page scripts, so
// the cookie is deliberately not HttpOnly.
const CSRFCookieName = "garagedesk_csrf"

// CSRFMiddleware guards the desk's mutating routes with a double-submit
// token. Safe methods pass through after seeding the cookie, so the first
// page view already carries a token for the forms it renders.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ensureDeskToken(w, r)
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if !tokenMatches(r, token) {
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// tokenMatches accepts the token from either the X-CSRF-Token header or the
// _csrf form field. The header form serves fetch calls, the field serves
// plain form posts.
func tokenMatches(r *http.Request, want string) bool {
	got := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if got == "" {
		got = strings.TrimSpace(r.FormValue("_csrf"))
	}
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// ensureDeskToken returns the caller's token, minting one when the cookie is
// missing or blank. All mutating routes live under /desk, so the cookie is
// scoped there.
func ensureDeskToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CSRFCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	token := randomToken(32)
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/desk",
		HttpOnly: false,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func randomToken(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
