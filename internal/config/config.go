package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBPath     string `yaml:"db_path"`

	ServerPort string `yaml:"server_port"`
	GinMode    string `yaml:"gin_mode"`
	LogLevel   string `yaml:"log_level"`

	JWTSecret      string `yaml:"jwt_secret"`
	JWTExpiryHours int    `yaml:"jwt_expiry_hours"`

	PositionGap   int           `yaml:"position_gap"`
	UndoWindow    time.Duration `yaml:"undo_window"`
	CommitTimeout time.Duration `yaml:"commit_timeout"`

	RedisURL     string `yaml:"redis_url"`
	ToastChannel string `yaml:"toast_channel"`

	RenumberSchedule  string        `yaml:"renumber_schedule"`
	SweepSchedule     string        `yaml:"sweep_schedule"`
	MinTaskGap        int           `yaml:"min_task_gap"`
	PendingStaleAfter time.Duration `yaml:"pending_stale_after"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DBDriver:   "postgres",
		DBHost:     "localhost",
		DBPort:     "5431",
		DBUser:     "kanban_user",
		DBPassword: "kanban_pass",
		DBName:     "kanban_db",
		DBPath:     "ideaboard.db",

		ServerPort: "8080",
		GinMode:    "debug",
		LogLevel:   "info",

		JWTSecret:      "supersecretkey",
		JWTExpiryHours: 72,

		PositionGap:   1000,
		UndoWindow:    5 * time.Second,
		CommitTimeout: 30 * time.Second,

		ToastChannel: "ideaboard:toasts",

		RenumberSchedule:  "@every 10m",
		SweepSchedule:     "@every 1m",
		MinTaskGap:        8,
		PendingStaleAfter: 10 * time.Minute,
	}
}

// Load reads .env, then the YAML file named by CONFIG_FILE (if any), then
// environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.ToastChannel = getEnv("TOAST_CHANNEL", cfg.ToastChannel)
	cfg.RenumberSchedule = getEnv("RENUMBER_SCHEDULE", cfg.RenumberSchedule)
	cfg.SweepSchedule = getEnv("SWEEP_SCHEDULE", cfg.SweepSchedule)

	var err error
	if cfg.JWTExpiryHours, err = getEnvInt("JWT_EXPIRY_HOURS", cfg.JWTExpiryHours); err != nil {
		return nil, err
	}
	if cfg.PositionGap, err = getEnvInt("POSITION_GAP", cfg.PositionGap); err != nil {
		return nil, err
	}
	if cfg.MinTaskGap, err = getEnvInt("MIN_TASK_GAP", cfg.MinTaskGap); err != nil {
		return nil, err
	}
	if cfg.UndoWindow, err = getEnvDuration("UNDO_WINDOW", cfg.UndoWindow); err != nil {
		return nil, err
	}
	if cfg.CommitTimeout, err = getEnvDuration("COMMIT_TIMEOUT", cfg.CommitTimeout); err != nil {
		return nil, err
	}
	if cfg.PendingStaleAfter, err = getEnvDuration("PENDING_STALE_AFTER", cfg.PendingStaleAfter); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver))
	}
	if c.PositionGap < 2 {
		errs = append(errs, fmt.Errorf("POSITION_GAP must be at least 2, got %d", c.PositionGap))
	}
	if c.UndoWindow <= 0 {
		errs = append(errs, errors.New("UNDO_WINDOW must be positive"))
	}
	if c.CommitTimeout <= 0 {
		errs = append(errs, errors.New("COMMIT_TIMEOUT must be positive"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTExpiryHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_HOURS must be positive"))
	}
	if c.MinTaskGap < 1 || c.MinTaskGap >= c.PositionGap {
		errs = append(errs, fmt.Errorf("MIN_TASK_GAP must be in [1, POSITION_GAP), got %d", c.MinTaskGap))
	}
	return errors.Join(errs...)
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
