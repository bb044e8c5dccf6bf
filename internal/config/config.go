package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Strings carry identifiers and secrets,
// ints carry counts and day spans.
type Config struct {
	Env                  string        // application environment (e.g. "dev", "prod")
	Port                 string        // HTTP port to listen on
	DBUser               string        // database username
	DBPass               string        // database password (optional)
	DBHost               string        // database host address
	DBPort               string        // database port number
	DBName               string        // database name
	DBMaxOpenConns       int           // connection pool ceiling
	DBMaxIdleConns       int           // idle connections kept warm
	DBConnMaxLifetime    time.Duration // recycle pooled connections older than this
	DBPingTimeout        time.Duration // how long Open waits for the startup ping
	JWTSecret            string        // secret used to verify JWTs from the identity service
	ErrorLogMaxPersist   int           // how many recent error entries to mirror into Redis
	SightseeingStaleDays int           // days after which an unsynced sightseeing option is stale
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must(); missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                  must("APP_ENV"),
		Port:                 must("APP_PORT"),
		DBUser:               must("DB_USER"),
		DBPass:               os.Getenv("DB_PASS"), // empty allowed
		DBHost:               must("DB_HOST"),
		DBPort:               must("DB_PORT"),
		DBName:               must("DB_NAME"),
		DBMaxOpenConns:       intOr("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       intOr("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime:    envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBPingTimeout:        envDur("DB_PING_TIMEOUT", 5*time.Second),
		JWTSecret:            must("JWT_SECRET"),
		ErrorLogMaxPersist:   intOr("ERROR_LOG_MAX_PERSISTED", 1000),
		SightseeingStaleDays: intOr("SIGHTSEEING_STALE_DAYS", 7),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr reads an optional integer variable, falling back to the default
// when unset or malformed.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		log.Printf("invalid int for %s: %q, using default %d", key, s, def)
		return def
	}
	return n
}
