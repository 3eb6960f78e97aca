// Package auth resolves the identity that scopes session visibility. The
// photobooth core only ever asks three things of it: who is signed in (or
// nil for anonymous), tell me when that changes, and sign out.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
)

// Provider is the identity collaborator injected into handlers and the
// persistence gateway.
type Provider interface {
	// CurrentIdentity returns the signed-in user id, or nil for
	// anonymous visitors.
	CurrentIdentity(r *http.Request) *string
	// OnIdentityChange registers a callback fired whenever a session is
	// established or torn down.
	OnIdentityChange(fn func(userID *string))
	// SignOut tears down the session cookie.
	SignOut(w http.ResponseWriter, r *http.Request)
}

const sessionCookie = "photobooth_session"

// CodeExchanger swaps an OAuth authorization code for a stable user id.
// The concrete exchanger talks to the external identity provider; tests
// inject a fake.
type CodeExchanger func(code string) (userID string, err error)

// CookieProvider implements Provider with random session tokens kept in an
// in-memory registry.
type CookieProvider struct {
	exchange  CodeExchanger
	mu        sync.RWMutex
	sessions  map[string]string // token -> userID
	listeners []func(userID *string)
}

func NewCookieProvider(exchange CodeExchanger) *CookieProvider {
	return &CookieProvider{
		exchange: exchange,
		sessions: make(map[string]string),
	}
}

func (p *CookieProvider) CurrentIdentity(r *http.Request) *string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if userID, ok := p.sessions[c.Value]; ok {
		return &userID
	}
	return nil
}

func (p *CookieProvider) OnIdentityChange(fn func(userID *string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Establish creates a session for userID and sets the cookie.
func (p *CookieProvider) Establish(w http.ResponseWriter, userID string) {
	token := newToken()
	p.mu.Lock()
	p.sessions[token] = userID
	listeners := append([]func(*string){}, p.listeners...)
	p.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	for _, fn := range listeners {
		fn(&userID)
	}
}

func (p *CookieProvider) SignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		p.mu.Lock()
		delete(p.sessions, c.Value)
		listeners := append([]func(*string){}, p.listeners...)
		p.mu.Unlock()
		for _, fn := range listeners {
			fn(nil)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func newToken() string {
	b := make([]byte, 24)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
