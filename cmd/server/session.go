package main

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const sessionKey contextKey = "sessionID"

// cookieConfig controls how the session cookie is issued
type cookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// sessionMiddleware makes sure every request carries a session ID.
// Unknown or malformed cookies are replaced with a fresh random ID.
func sessionMiddleware(cfg cookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cfg.Name); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, newSessionCookie(cfg, id))
			}

			ctx := context.WithValue(r.Context(), sessionKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newSessionCookie(cfg cookieConfig, id string) *http.Cookie {
	c := &http.Cookie{
		Name:     cfg.Name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.TTL > 0 {
		c.MaxAge = int(cfg.TTL.Seconds())
	}
	return c
}

func expiredSessionCookie(cfg cookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// sessionID returns the ID placed on the context by sessionMiddleware
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey).(string)
	return id
}
