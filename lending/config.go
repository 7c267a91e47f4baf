package lending

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default lending terms: two weeks free, then one currency unit per day.
const (
	DefaultGraceDays = 14
	DefaultDailyRate = 1.0
)

// Config holds runtime settings. Every field has a default so the program
// runs with no environment at all.
type Config struct {
	DBPath    string  // path to the SQLite database file
	LogPath   string  // path to the log file
	GraceDays int     // fee-free window after borrowing, in days
	DailyRate float64 // fee per overdue day
}

// LoadConfig reads settings from the environment, after loading an optional
// .env file from the working directory. Unset or malformed values fall back
// to the defaults.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		DBPath:    "cdlibrary.db",
		LogPath:   "cdlibrary.log",
		GraceDays: DefaultGraceDays,
		DailyRate: DefaultDailyRate,
	}
	if v := os.Getenv("CDLIB_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CDLIB_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("CDLIB_GRACE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.GraceDays = n
		}
	}
	if v := os.Getenv("CDLIB_DAILY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.DailyRate = f
		}
	}
	return cfg
}
