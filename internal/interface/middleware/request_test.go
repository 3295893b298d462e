package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
}

func serveIP(t *testing.T, proxies []string, platform, remote string, headers map[string]string) string {
	t.Helper()
	r := gin.New()
	require.NoError(t, TrustProxies(r, proxies, platform))
	r.Use(RealIP())
	r.POST("/api/auth/login", func(c *gin.Context) { c.String(http.StatusOK, KeyByIPAndPath()(c)) })

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestRealIP_IgnoresHeadersFromUntrustedPeer(t *testing.T) {
	const remote = "203.0.113.9:4000"
	want := "rl:path:/api/auth/login:ip:203.0.113.9"

	assert.Equal(t, want, serveIP(t, nil, "", remote, nil))
	for _, h := range []map[string]string{
		{"X-Forwarded-For": "1.1.1.1"},
		{"X-Forwarded-For": "2.2.2.2, 10.0.0.1"},
		{"X-Forwarded-For": "127.0.0.1"},
		{"CF-Connecting-IP": "198.51.100.1"},
		{"X-Real-IP": "198.51.100.2"},
	} {
		assert.Equal(t, want, serveIP(t, nil, "", remote, h), h)
	}
}

func TestRealIP_TrustedProxy(t *testing.T) {
	got := serveIP(t, []string{"10.0.0.0/8"}, "", "10.1.1.1:4000", map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, "rl:path:/api/auth/login:ip:198.51.100.1", got)
}

func TestRealIP_Cloudflare(t *testing.T) {
	got := serveIP(t, nil, "cloudflare", "203.0.113.9:4000", map[string]string{"CF-Connecting-IP": "198.51.100.7"})
	assert.Equal(t, "rl:path:/api/auth/login:ip:198.51.100.7", got)
}

func TestTrustProxies_RejectsGarbage(t *testing.T) {
	assert.Error(t, TrustProxies(gin.New(), []string{"not-a-cidr"}, ""))
}

func TestAllowPrivateIP_SpoofedLoopback(t *testing.T) {
	r := gin.New()
	require.NoError(t, TrustProxies(r, nil, ""))
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) {
		if AllowPrivateIP()(c) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{
		"127.0.0.1":   true,
		"10.1.2.3":    true,
		"192.168.0.4": true,
		"8.8.8.8":     false,
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(ctxRealIPKey, ip)
		assert.Equal(t, want, allow(c), ip)
	}
}

func TestRateLimit_NilClientPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, 1, 0, KeyByIP(), nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
