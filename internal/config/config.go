package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load(".env")
}

func Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetOr(key, defaultVal string) string {
	if v := Get(key); v != "" {
		return v
	}
	return defaultVal
}

func GetBool(key, defaultVal string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		v = defaultVal
	}
	return v == "1" || v == "true" || v == "yes"
}

func GetDuration(key string, defaultVal time.Duration) time.Duration {
	v := Get(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

var (
	SECAPIKey  = Get("SEC_API_KEY")
	APIBaseURL = GetOr("SEC_API_BASE_URL", "https://api.sec-api.io")

	DataDir  = GetOr("FINDOSS_DATA_DIR", "data")
	Port     = GetOr("PORT", "8000")
	LogLevel = GetOr("LOG_LEVEL", "info")

	// FetchCacheTTL bounds how long an upstream response is reused
	// before a ticker is fetched again.
	FetchCacheTTL = GetDuration("FETCH_CACHE_TTL", 5*time.Minute)

	AdminAPIKey = Get("ADMIN_API_KEY")
	TraceStdout = GetBool("TRACE_STDOUT", "false")
)
