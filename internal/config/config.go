package config // package config loads application configuration from environment variables

import (
    "log"  // log is used to report configuration errors and halt execution
    "os"   // os provides access to environment variables
    "time" // time expresses the lock wait/lease durations
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Lock timings are the
// bounded wait for seat-lock acquisition and the lease after which the
// lock service reclaims a crashed holder's lock.
type Config struct {
    Env       string        // application environment (e.g. "dev", "prod")
    Port      string        // HTTP port to listen on
    DBUser    string        // database username
    DBPass    string        // database password (optional)
    DBHost    string        // database host address
    DBPort    string        // database port number
    DBName    string        // database name
    JWTSecret string        // secret used to verify JWTs
    LockWait  time.Duration // how long seat-lock acquisition may block
    LockLease time.Duration // maximum seat-lock hold time before expiry
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Lock timings default to 10s wait / 30s lease when unset.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),
        Port:      must("APP_PORT"),
        DBUser:    must("DB_USER"),
        DBPass:    os.Getenv("DB_PASS"), // empty allowed
        DBHost:    must("DB_HOST"),
        DBPort:    must("DB_PORT"),
        DBName:    must("DB_NAME"),
        JWTSecret: must("JWT_SECRET"),
        LockWait:  envDur("SEAT_LOCK_WAIT", 10*time.Second),
        LockLease: envDur("SEAT_LOCK_LEASE", 30*time.Second),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
