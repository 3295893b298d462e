package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/config"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Optional backends (redis, gcs, es, rabbitmq) stay nil when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	avatars     *helpers.GCSUploader
	esClient    *elasticsearch.Client
	rabbitPub   *helpers.RabbitPublisher

	jwtManager *helpers.JWTManager
	cookies    *helpers.Manager
	hasher     helpers.PasswordHasher
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		return helpers.NewNopLogger()
	}
	return logger
}
func SetPGPool(p *pgxpool.Pool)               { pgPool = p }
func GetPGPool() *pgxpool.Pool                { return pgPool }
func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetAvatars(u *helpers.GCSUploader)       { avatars = u }
func GetAvatars() *helpers.GCSUploader        { return avatars }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }

// GetJWT returns the configured token manager, building one from config on first use.
func GetJWT() *helpers.JWTManager {
	if jwtManager == nil && cfg != nil {
		jwtManager = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	}
	return jwtManager
}

func SetCookies(m *helpers.Manager) { cookies = m }
func GetCookies() *helpers.Manager {
	if cookies == nil && cfg != nil {
		cookies = helpers.NewCookie(cfg.CookieName, cfg.CookieDomain, cfg.CookieSecure)
	}
	return cookies
}

func SetHasher(h helpers.PasswordHasher) { hasher = h }
func GetHasher() helpers.PasswordHasher {
	if hasher == nil {
		cost := 0
		if cfg != nil {
			cost = cfg.BcryptCost
		}
		hasher = helpers.NewBcryptHasher(cost)
	}
	return hasher
}
