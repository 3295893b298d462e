package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenCookiePath scopes the token cookie to the API.
const TokenCookiePath = "/api"

// Manager builds and writes the token cookie.
type Manager struct {
	Name   string
	Domain string
	Secure bool
}

func NewCookie(name, domain string, secure bool) *Manager {
	return &Manager{Name: name, Domain: domain, Secure: secure}
}

// TokenCookie returns the HttpOnly cookie carrying token until exp.
func (m *Manager) TokenCookie(token string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.Name,
		Value:    token,
		Path:     TokenCookiePath,
		Domain:   m.Domain,
		Expires:  exp,
		MaxAge:   maxAgeFrom(exp),
		Secure:   m.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie directive that expires the token immediately.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.Name,
		Value:    "",
		Path:     TokenCookiePath,
		Domain:   m.Domain,
		MaxAge:   -1,
		Secure:   m.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) Set(c *gin.Context, token string, exp time.Time) {
	http.SetCookie(c.Writer, m.TokenCookie(token, exp))
}

func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, m.ClearCookie())
}

// Token reads the token cookie from the request; empty when absent.
func (m *Manager) Token(c *gin.Context) string {
	v, err := c.Cookie(m.Name)
	if err != nil {
		return ""
	}
	return v
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
