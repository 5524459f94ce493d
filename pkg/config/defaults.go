// Package config provides centralized default values for Upskill
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	PublicBaseURL      string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	DBDriver    string
	DBPath      string
	TursoURL    string
	TursoToken  string
	MediaPath   string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Cache TTL Configuration
	DashboardTTL      time.Duration
	ProductStatsTTL   time.Duration
	ModuleContentTTL  time.Duration
	ClientConfigTTL   time.Duration
	ExpertSessionsTTL time.Duration

	// Cache Write Queue
	CacheWriteQueueSize int

	// Cleanup
	CleanupInterval time.Duration
	CleanupVerbose  bool

	// Observability
	SlowQueryThreshold time.Duration

	// Security
	JWTSecret         string
	AESKey            string
	AdminPasswordHash string

	// External Services
	AssemblyAIKey string
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	// Cache Warming
	WarmOnStartup     bool
	WarmerConcurrency int
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	PublicBaseURL = getEnvString("PUBLIC_BASE_URL", "http://localhost:8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "upskill.db")
	TursoURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken = getEnvString("TURSO_AUTH_TOKEN", "")
	MediaPath = getEnvString("MEDIA_PATH", "media")

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Cache TTLs
	DashboardTTL = time.Duration(getEnvInt("DASHBOARD_TTL_MINUTES", 5)) * time.Minute
	ProductStatsTTL = time.Duration(getEnvInt("PRODUCT_STATS_TTL_MINUTES", 10)) * time.Minute
	ModuleContentTTL = time.Duration(getEnvInt("MODULE_CONTENT_TTL_HOURS", 1)) * time.Hour
	ClientConfigTTL = time.Duration(getEnvInt("CLIENT_CONFIG_TTL_HOURS", 24)) * time.Hour
	ExpertSessionsTTL = time.Duration(getEnvInt("EXPERT_SESSIONS_TTL_MINUTES", 15)) * time.Minute

	// Cache Write Queue
	CacheWriteQueueSize = getEnvInt("CACHE_WRITE_QUEUE_SIZE", 1024)

	// Cleanup
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute
	CleanupVerbose = getEnvBool("CACHE_CLEANUP_VERBOSE", false)

	// Observability
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 500*time.Millisecond)

	// Security
	JWTSecret = getEnvString("JWT_SECRET", "")
	AESKey = getEnvString("AES_KEY", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")

	// External Services
	AssemblyAIKey = getEnvString("ASSEMBLYAI_API_KEY", "")
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	EmailFrom = getEnvString("EMAIL_FROM", "noreply@upskillhq.com")
	EmailFromName = getEnvString("EMAIL_FROM_NAME", "Upskill")

	// Cache Warming
	WarmOnStartup = getEnvBool("WARM_CACHE_ON_STARTUP", true)
	WarmerConcurrency = getEnvInt("CACHE_WARMER_CONCURRENCY", 4)
}
