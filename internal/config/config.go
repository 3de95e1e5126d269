package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// defaultZones matches the three checkpoints of the reference deployment.
// Additional zones can be configured without a schema change.
var defaultZones = []string{"corridor", "gate", "entrance"}

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/varco.db"

	// Zones known to the system. Every access record gets one activation
	// row per zone at creation time.
	Zones []string

	// Code generation
	CodeLength      int
	CodeMaxAttempts int

	// Expiry reaper
	ReaperIntervalSeconds int

	// Operator auth. Either a bcrypt hash, or (dev only) a plain password
	// hashed at startup.
	AdminUser         string
	AdminPasswordHash string
	AdminPassword     string
	SessionTTLMinutes int

	// A scanner is reported offline once it has been silent this long.
	ScannerOnlineWindowSeconds int
}

func FromEnv() Config {
	// Optional .env file for local development; absence is not an error.
	_ = godotenv.Load()

	addr := getenvDefault("VARCO_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("VARCO_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("VARCO_DB_PATH", "./data/varco.db")

	zones := splitCSV(os.Getenv("VARCO_ZONES"))
	if len(zones) == 0 {
		zones = defaultZones
	}

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		Zones: zones,

		CodeLength:      getenvInt("VARCO_CODE_LENGTH", 5),
		CodeMaxAttempts: getenvInt("VARCO_CODE_MAX_ATTEMPTS", 50),

		ReaperIntervalSeconds: getenvInt("VARCO_REAPER_INTERVAL_SECONDS", 30),

		AdminUser:         getenvDefault("VARCO_ADMIN_USER", "manager"),
		AdminPasswordHash: os.Getenv("VARCO_ADMIN_PASSWORD_HASH"),
		AdminPassword:     os.Getenv("VARCO_ADMIN_PASSWORD"),
		SessionTTLMinutes: getenvInt("VARCO_SESSION_TTL_MINUTES", 60),

		ScannerOnlineWindowSeconds: getenvInt("VARCO_SCANNER_ONLINE_WINDOW_SECONDS", 120),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
