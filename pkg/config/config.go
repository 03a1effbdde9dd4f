package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	Debug   bool
	Port    string

	// Logging
	LogLevel string
	LogJSON  bool

	// Database
	DatabaseURL string

	// Filesystem layout
	DataDir   string // settings files + lock marker
	BackupDir string // dump artifacts
	LogsDir   string // per-run operation logs

	// External PostgreSQL client tools
	PgDumpPath string
	PsqlPath   string
	SchemaFile string // checked-in schema definition, preferred for full-reset re-init

	// Bounded timeout around every dump/psql invocation
	CommandTimeout time.Duration

	// InfluxDB (optional time-series mirror of operation events)
	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	// Default admin seeded on first migration and after a full reset
	AdminEmail    string
	AdminPassword string
}

var AppConfig *Config

// Load loads configuration from environment
func Load() *Config {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		AppName:        getEnv("APP_NAME", "CashierAdmin"),
		Debug:          getEnvBool("DEBUG", true),
		Port:           getEnv("PORT", "8000"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		LogJSON:        getEnvBool("LOG_JSON", false),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DataDir:        getEnv("DATA_DIR", "."),
		BackupDir:      getEnv("BACKUP_DIR", "./backup"),
		LogsDir:        getEnv("LOGS_DIR", "./logs"),
		PgDumpPath:     getEnv("PG_DUMP_PATH", "pg_dump"),
		PsqlPath:       getEnv("PSQL_PATH", "psql"),
		SchemaFile:     getEnv("SCHEMA_FILE", "./schema.sql"),
		CommandTimeout: getEnvDuration("COMMAND_TIMEOUT", 30*time.Minute),
		InfluxDBURL:    getEnv("INFLUXDB_URL", ""),
		InfluxDBToken:  getEnv("INFLUXDB_TOKEN", ""),
		InfluxDBOrg:    getEnv("INFLUXDB_ORG", "cashier"),
		InfluxDBBucket: getEnv("INFLUXDB_BUCKET", "operations"),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@cashier.local"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
	}

	AppConfig = config
	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Invalid boolean for %s, using default: %v", key, defaultValue)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("Invalid duration for %s, using default: %s", key, defaultValue)
			return defaultValue
		}
		return d
	}
	return defaultValue
}
