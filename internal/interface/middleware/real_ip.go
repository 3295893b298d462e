package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxRealIPKey = "real_ip"

// TrustProxies limits which peers gin accepts forwarding headers from. With no
// proxies only the socket address counts. platform "cloudflare" makes gin read
// CF-Connecting-IP; set it only when every request arrives through Cloudflare.
func TrustProxies(engine *gin.Engine, proxies []string, platform string) error {
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return err
	}
	switch strings.ToLower(platform) {
	case "cloudflare":
		engine.TrustedPlatform = gin.PlatformCloudflare
	case "appengine":
		engine.TrustedPlatform = gin.PlatformGoogleAppEngine
	default:
		engine.TrustedPlatform = ""
	}
	return nil
}

// RealIP stores the caller address under "real_ip" for rate limiting and logs.
// Forwarding headers only count when the engine trusts the peer (see TrustProxies).
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxRealIPKey, c.ClientIP())
		c.Next()
	}
}
