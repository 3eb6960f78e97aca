package auth

import (
	"log"
	"net/http"
	"net/url"
)

// HandleCallback is the OAuth redirect target. Provider errors bounce back
// to the login page with the message; a successful code exchange establishes
// the session and lands on the photobook.
func (p *CookieProvider) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = errParam
		}
		log.Printf("OAuth error: %s (%s)", errParam, desc)
		http.Redirect(w, r, "/login?error="+url.QueryEscape(desc), http.StatusSeeOther)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("missing authorization code"), http.StatusSeeOther)
		return
	}

	userID, err := p.exchange(code)
	if err != nil {
		log.Printf("Code exchange failed: %v", err)
		http.Redirect(w, r, "/login?error="+url.QueryEscape("Authentication failed: "+err.Error()), http.StatusSeeOther)
		return
	}

	p.Establish(w, userID)
	http.Redirect(w, r, "/photobook", http.StatusSeeOther)
}
