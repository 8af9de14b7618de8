// Package config provides centralized default values for the AzurNet engine
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
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Persistence Configuration
	DataDir         string
	SnapshotBackend string // "file" or "sql"
	DBDriver        string // "sqlite3" or "libsql"
	DBPath          string
	LibSQLURL       string
	SaveDebounce    time.Duration

	// Reporting Configuration
	ActiveVisitorWindow time.Duration
	TopPagesLimit       int
	TrendDays           int

	// Geolocation Configuration
	GeoEndpoint string
	GeoTimeout  time.Duration

	// Admin Auth Configuration
	JWTSecret     string
	AdminPassword string

	// Lead Notification Configuration
	ResendAPIKey  string
	LeadEmailFrom string
	LeadEmailTo   string

	// Live Stream Configuration
	LiveBroadcastInterval time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Persistence Configuration
	DataDir = getEnvString("DATA_DIR", "data")
	SnapshotBackend = getEnvString("SNAPSHOT_BACKEND", "file")
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "data/azurnet.db")
	LibSQLURL = getEnvString("LIBSQL_URL", "")
	SaveDebounce = getEnvDuration("SAVE_DEBOUNCE", 5*time.Second)

	// Reporting Configuration
	ActiveVisitorWindow = getEnvDuration("ACTIVE_VISITOR_WINDOW", 30*time.Minute)
	TopPagesLimit = getEnvInt("TOP_PAGES_LIMIT", 10)
	TrendDays = getEnvInt("TREND_DAYS", 30)

	// Geolocation Configuration
	GeoEndpoint = getEnvString("GEO_ENDPOINT", "http://ip-api.com/json")
	GeoTimeout = getEnvDuration("GEO_TIMEOUT", 3*time.Second)

	// Admin Auth Configuration
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")

	// Lead Notification Configuration
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	LeadEmailFrom = getEnvString("LEAD_EMAIL_FROM", "noreply@azurnet.fr")
	LeadEmailTo = getEnvString("LEAD_EMAIL_TO", "")

	// Live Stream Configuration
	LiveBroadcastInterval = getEnvDuration("LIVE_BROADCAST_INTERVAL", 10*time.Second)
}
