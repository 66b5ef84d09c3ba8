package session

import (
	"context"
	"encoding/gob"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/gorilla/sessions"
)

const (
	identityKey = "identity"
	lastSeenKey = "last_seen"
)

const (
	CustomerCookie = "studio-customer"
	AdminCookie    = "studio-admin"
)

var ErrUnauthenticated = errors.New("session: not authenticated")

func init() {
	gob.Register(models.Customer{})
	gob.Register(models.AdminUser{})
	gob.Register(map[string]string{})
}

type identityCtxKey[T any] struct{}

// Scope is one isolated login surface of the backend: its own cookie, its
// own backend cookie jar, its own identity type.
type Scope[T any] struct {
	Name       string
	Store      sessions.Store
	API        *api.Client
	LoginPath  string
	MePath     string
	LogoutPath string

	// Optimistic lets Identity fall back to the last identity saved in the
	// cookie when nothing was verified during the current request.
	Optimistic bool

	// IdleTimeout expires a session that has not been verified for this
	// long. Zero disables it.
	IdleTimeout time.Duration

	// ID reads the backend id of an identity. A /me answer without one is
	// treated as no session.
	ID func(T) int

	Now func() time.Time
}

func NewCustomerScope(store sessions.Store, client *api.Client) *Scope[models.Customer] {
	return &Scope[models.Customer]{
		Name:       CustomerCookie,
		Store:      store,
		API:        client,
		LoginPath:  "/api/customers/login",
		MePath:     "/api/customers/me",
		LogoutPath: "/api/customers/logout",
		Optimistic: true,
		ID:         func(c models.Customer) int { return c.ID },
	}
}

func NewAdminScope(store sessions.Store, client *api.Client, idle time.Duration) *Scope[models.AdminUser] {
	return &Scope[models.AdminUser]{
		Name:        AdminCookie,
		Store:       store,
		API:         client,
		LoginPath:   "/api/admins/login",
		MePath:      "/api/admins/me",
		LogoutPath:  "/api/admins/logout",
		IdleTimeout: idle,
		ID:          func(a models.AdminUser) int { return a.ID },
	}
}

func (s *Scope[T]) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Session returns the request's cookie session for this scope. A cookie
// that fails to decode yields a fresh, empty session.
func (s *Scope[T]) Session(r *http.Request) *sessions.Session {
	sess, err := s.Store.Get(r, s.Name)
	if err != nil {
		slog.Debug("Discarding unreadable session cookie", "cookie", s.Name, "error", err)
	}
	return sess
}

// Client returns an API client bound to this scope's backend cookies.
// Callers that may receive new cookies must save the session afterwards.
func (s *Scope[T]) Client(r *http.Request) *api.Client {
	return s.API.WithJar(newJar(s.Session(r)))
}

// WithIdentity records an identity verified during this request.
func (s *Scope[T]) WithIdentity(r *http.Request, id T) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityCtxKey[T]{}, id))
}

// Identity returns the identity verified during this request or, for
// optimistic scopes, the provisional one remembered in the cookie.
func (s *Scope[T]) Identity(r *http.Request) (T, bool) {
	if id, ok := r.Context().Value(identityCtxKey[T]{}).(T); ok {
		return id, true
	}
	if !s.Optimistic {
		var zero T
		return zero, false
	}
	id, ok := s.Session(r).Values[identityKey].(T)
	return id, ok
}

// IsAuthenticated is Identity without the value.
func (s *Scope[T]) IsAuthenticated(r *http.Request) bool {
	_, ok := s.Identity(r)
	return ok
}

// Expired reports whether the idle window has lapsed since the last
// verified request.
func (s *Scope[T]) Expired(r *http.Request) bool {
	if s.IdleTimeout <= 0 {
		return false
	}
	last, ok := s.Session(r).Values[lastSeenKey].(int64)
	if !ok {
		return false
	}
	return s.now().Sub(time.Unix(last, 0)) > s.IdleTimeout
}

// Refresh asks the backend who the session belongs to. Success replaces the
// stored identity; a 401, or an answer naming nobody, clears it along with
// the backend cookies. Any other failure leaves the session as it was.
func (s *Scope[T]) Refresh(w http.ResponseWriter, r *http.Request) (T, error) {
	var zero, id T
	sess := s.Session(r)
	err := s.API.WithJar(newJar(sess)).Get(r.Context(), s.MePath, &id)
	switch {
	case err == nil && s.ID != nil && s.ID(id) <= 0:
		slog.Warn("Identity endpoint answered without an id", "cookie", s.Name, "path", s.MePath)
		s.clear(sess)
		s.save(w, r, sess)
		return zero, ErrUnauthenticated
	case err == nil:
		sess.Values[identityKey] = id
		if s.IdleTimeout > 0 {
			sess.Values[lastSeenKey] = s.now().Unix()
		}
		s.save(w, r, sess)
		return id, nil
	case api.IsUnauthorized(err):
		s.clear(sess)
		s.save(w, r, sess)
		return zero, ErrUnauthenticated
	default:
		return zero, err
	}
}

// Login posts credentials and, on success, re-queries the backend for the
// identity rather than trusting the login response.
func (s *Scope[T]) Login(w http.ResponseWriter, r *http.Request, credentials interface{}) (T, error) {
	var zero T
	sess := s.Session(r)
	s.clear(sess)
	if err := s.API.WithJar(newJar(sess)).Send(r.Context(), http.MethodPost, s.LoginPath, credentials, nil); err != nil {
		s.save(w, r, sess)
		return zero, err
	}
	return s.Refresh(w, r)
}

// Logout tells the backend (best effort) and always forgets the identity.
func (s *Scope[T]) Logout(w http.ResponseWriter, r *http.Request) {
	sess := s.Session(r)
	if err := s.API.WithJar(newJar(sess)).Send(r.Context(), http.MethodPost, s.LogoutPath, nil, nil); err != nil {
		slog.Warn("Backend logout failed, clearing local session anyway", "cookie", s.Name, "error", err)
	}
	s.clear(sess)
	s.save(w, r, sess)
}

func (s *Scope[T]) clear(sess *sessions.Session) {
	delete(sess.Values, identityKey)
	delete(sess.Values, lastSeenKey)
	newJar(sess).clear()
}

func (s *Scope[T]) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		slog.Error("Failed to save session", "cookie", s.Name, "error", err)
	}
}

// NewCookieStore builds a cookie store with the site's cookie options.
func NewCookieStore(key []byte, secure bool, domain string) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"
	if domain != "" {
		store.Options.Domain = domain
	}
	return store
}
