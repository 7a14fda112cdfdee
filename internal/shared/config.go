package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	ImageBase   string
	ImageKey    string
	ImageDomain string
	Workers     int

	// Per-surface cache TTLs; every surface defaults to two hours.
	AreaTTL   time.Duration
	IndexTTL  time.Duration
	DetailTTL time.Duration
	ListTTL   time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	ttl := func(k string) time.Duration {
		return time.Duration(atoi(k, 7200)) * time.Second
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/love_home?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		ImageBase:   env("IMAGE_BASE_URL", "https://up.image-store.example.com"),
		ImageKey:    env("IMAGE_API_KEY", ""),
		ImageDomain: env("IMAGE_DOMAIN_PREFIX", "https://img.lovehome.example.com/"),
		Workers:     atoi("SEED_WORKERS", 8),
		AreaTTL:     ttl("AREA_TTL_SECONDS"),
		IndexTTL:    ttl("INDEX_TTL_SECONDS"),
		DetailTTL:   ttl("DETAIL_TTL_SECONDS"),
		ListTTL:     ttl("LIST_TTL_SECONDS"),
	}
	if c.ImageKey == "" {
		log.Warn().Msg("IMAGE_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
