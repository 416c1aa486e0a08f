package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MDharunPrasad/photo-kiosk/internal/imaging"
	"github.com/MDharunPrasad/photo-kiosk/internal/kvstore"
)

type Config struct {
	HTTP   HTTPConfig
	Store  StoreConfig
	Upload UploadConfig
	TG     TGConfig
	Logger LogConfig
}

type HTTPConfig struct {
	Addr string
}

type StoreConfig struct {
	DBPath      string
	Capacity    int64
	BundlesFile string
}

type UploadConfig struct {
	Quality      float64
	MaxDimension uint
	// Delay between sequential photo adds in a batch upload, so one
	// burst does not hammer the persistence layer.
	Delay time.Duration
}

// TGConfig - optional admin alert channel. Empty token disables it.
type TGConfig struct {
	Token    string
	AdminIDs []int64
}

type LogConfig struct {
	Level  slog.Level
	AppEnv string
}

func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "docker" {
		_ = godotenv.Load() // missing .env is fine
	}

	return &Config{
		HTTP: HTTPConfig{
			Addr: envString("KIOSK_ADDR", ":8080"),
		},
		Store: StoreConfig{
			DBPath:      envString("KIOSK_DB_PATH", "kiosk.db"),
			Capacity:    envInt64("KIOSK_STORE_CAPACITY", kvstore.DefaultCapacity),
			BundlesFile: envString("KIOSK_BUNDLES_FILE", ""),
		},
		Upload: UploadConfig{
			Quality:      envFloat("UPLOAD_QUALITY", imaging.DefaultQuality),
			MaxDimension: uint(envInt64("UPLOAD_MAX_DIMENSION", imaging.DefaultMaxDimension)),
			Delay:        envDuration("UPLOAD_DELAY", 100*time.Millisecond),
		},
		TG: TGConfig{
			Token:    os.Getenv("TELEGRAM_TOKEN"),
			AdminIDs: parseAdminIDs(os.Getenv("ADMINS_ID")),
		},
		Logger: GetLogConfig(),
	}, nil
}

func GetLogConfig() LogConfig {
	appEnv := os.Getenv("APP_ENV")
	if appEnv != "local" && appEnv != "docker" {
		appEnv = "prod"
	}

	return LogConfig{
		Level:  levelFromEnv(),
		AppEnv: appEnv,
	}
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseAdminIDs(raw string) []int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	adminIDs := make([]int64, 0, len(parts))

	for _, strID := range parts {
		strID = strings.TrimSpace(strID)
		if strID == "" {
			continue
		}
		id, err := strconv.ParseInt(strID, 10, 64)
		if err != nil {
			continue
		}
		adminIDs = append(adminIDs, id)
	}

	return adminIDs
}

// env helpers

func envString(key, def string) string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	return raw
}

func envInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return def
	}
	return d
}
