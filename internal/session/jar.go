package session

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/sessions"
)

const apiCookiesKey = "api_cookies"

// sessionJar keeps the backend's cookies inside the signed browser session,
// so each browser session maps to exactly one backend session. The backend
// is a single host, so domain and path are not tracked.
type sessionJar struct {
	mu   sync.Mutex
	sess *sessions.Session
}

func newJar(sess *sessions.Session) *sessionJar {
	return &sessionJar{sess: sess}
}

func (j *sessionJar) values() map[string]string {
	if m, ok := j.sess.Values[apiCookiesKey].(map[string]string); ok {
		return m
	}
	m := make(map[string]string)
	j.sess.Values[apiCookiesKey] = m
	return m
}

func (j *sessionJar) SetCookies(_ *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	m := j.values()
	for _, c := range cookies {
		if c.MaxAge < 0 || c.Value == "" {
			delete(m, c.Name)
			continue
		}
		m[c.Name] = c.Value
	}
}

func (j *sessionJar) Cookies(_ *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, _ := j.sess.Values[apiCookiesKey].(map[string]string)
	out := make([]*http.Cookie, 0, len(m))
	for name, value := range m {
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out
}

func (j *sessionJar) clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.sess.Values, apiCookiesKey)
}
