package dashboard

import (
	"net/http"

	"github.com/spacesedan/sentiboard/internal/session"
)

// sessionFor returns the caller's session, starting a new one (and setting
// the cookie) when the cookie is missing or the session has expired.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(SESSION_COOKIE); err == nil {
		if sess, ok := s.opts.Sessions.Get(c.Value); ok {
			return sess
		}
	}
	sess := s.opts.Sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SESSION_COOKIE,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SESSION_COOKIE); err == nil {
		s.opts.Sessions.End(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SESSION_COOKIE,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
