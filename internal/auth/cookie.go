package auth

import (
	"net/http"
	"time"
)

// CookieName is the transport slot the middleware reads the token from.
const CookieName = "token"

// clearedValue is what logout overwrites the cookie with. Paired with a
// near-immediate expiry it makes stale clients drop the credential.
const clearedValue = "none"

// CookiePolicy carries the immutable cookie settings decided at startup.
// Secure also switches SameSite to None, which browsers require for
// cross-site cookies over HTTPS.
type CookiePolicy struct {
	Days   int
	Secure bool
}

// Set writes the token cookie with an expiry of Days days from now.
func (p CookiePolicy) Set(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(p.Days) * 24 * time.Hour),
		HttpOnly: true,
	}
	if p.Secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, c)
}

// Clear overwrites the token cookie with a sentinel value expiring in ten
// seconds.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    clearedValue,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	}
	if p.Secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, c)
}
