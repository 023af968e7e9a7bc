package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieManager sets and clears the session cookie carrying the token.
type CookieManager struct {
	name   string
	secure bool
	ttl    time.Duration
}

// NewCookieManager creates a cookie manager. Secure should be true in production.
func NewCookieManager(name string, secure bool, ttl time.Duration) *CookieManager {
	return &CookieManager{name: name, secure: secure, ttl: ttl}
}

// Name returns the cookie name.
func (m *CookieManager) Name() string {
	return m.name
}

// Set writes the token cookie.
func (m *CookieManager) Set(c echo.Context, token string) {
	c.SetCookie(m.cookie(token, int(m.ttl/time.Second)))
}

// Clear expires the token cookie.
func (m *CookieManager) Clear(c echo.Context) {
	c.SetCookie(m.cookie("", -1))
}

// Read returns the token from the request cookie, if any.
func (m *CookieManager) Read(c echo.Context) (string, bool) {
	ck, err := c.Cookie(m.name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (m *CookieManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
