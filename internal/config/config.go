package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type HTTPConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	Driver string
	Path   string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type ScheduleConfig struct {
	DueWindowDays      int
	HoursPerDepartment float64
	HistoryLimit       int
}

type DocumentsConfig struct {
	PDFFontPath string
	BackupDir   string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Store       StoreConfig
	DB          DBConfig
	Auth        AuthConfig
	Schedule    ScheduleConfig
	Documents   DocumentsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("STORE_DRIVER", StoreDriverSQLite)
	v.SetDefault("STORE_PATH", "./data/maintenance.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("HISTORY_LIMIT", 50)
	v.SetDefault("SCHEDULE_DUE_WINDOW_DAYS", 7)
	v.SetDefault("SCHEDULE_HOURS_PER_DEPARTMENT", 2)
	v.SetDefault("BACKUP_DIR", ".")

	_ = v.ReadInConfig()

	lifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
			Path:   v.GetString("STORE_PATH"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Schedule: ScheduleConfig{
			DueWindowDays:      v.GetInt("SCHEDULE_DUE_WINDOW_DAYS"),
			HoursPerDepartment: v.GetFloat64("SCHEDULE_HOURS_PER_DEPARTMENT"),
			HistoryLimit:       v.GetInt("HISTORY_LIMIT"),
		},
		Documents: DocumentsConfig{
			PDFFontPath: v.GetString("PDF_FONT_PATH"),
			BackupDir:   v.GetString("BACKUP_DIR"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.Auth.AccessSecret) != ""
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case StoreDriverSQLite:
		if strings.TrimSpace(cfg.Store.Path) == "" {
			return fmt.Errorf("STORE_PATH is required for the sqlite store")
		}
	case StoreDriverPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
	if cfg.Schedule.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if cfg.Schedule.DueWindowDays < 0 {
		return fmt.Errorf("SCHEDULE_DUE_WINDOW_DAYS must not be negative")
	}
	if cfg.Schedule.HoursPerDepartment <= 0 {
		return fmt.Errorf("SCHEDULE_HOURS_PER_DEPARTMENT must be positive")
	}
	return nil
}

// ParseList splits a comma separated value, dropping blanks.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
