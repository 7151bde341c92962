package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/session"
	"go.uber.org/zap"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}

// withSession loads the visitor's session from the cookie, starting a new one
// when the cookie is missing, malformed or points at an expired session.
func (a *app) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := a.loadSession(r)
		if sess == nil {
			sess = session.New(uuid.NewString())
			http.SetCookie(w, &http.Cookie{
				Name:     a.cfg.Session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(a.cfg.Session.TTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func (a *app) loadSession(r *http.Request) *session.Session {
	cookie, err := r.Cookie(a.cfg.Session.CookieName)
	if err != nil {
		return nil
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return nil
	}

	sess, err := a.sessions.Load(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, database.ErrSessionNotFound) {
			a.logger.Warn("load session", zap.String("session_id", cookie.Value), zap.Error(err))
		}
		return nil
	}
	return sess
}

// saveSession writes sess back if a handler changed it.
func (a *app) saveSession(ctx context.Context, sess *session.Session) error {
	if !sess.Modified() {
		return nil
	}
	return a.sessions.Save(ctx, sess)
}
