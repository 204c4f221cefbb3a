package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Worker   WorkerConfig   `yaml:"worker"`
	Mail     MailConfig     `yaml:"mail"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// FlightsCacheTTL is in seconds. Zero disables the cache.
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	LedgerTopic        string   `yaml:"ledger_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// Storage backends for ledger snapshots.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type LedgerConfig struct {
	// Today is the fixed reference date (YYYY-MM-DD). Empty means the
	// calendar day the process starts on.
	Today      string `yaml:"today"`
	Storage    string `yaml:"storage"`
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// ReferenceDate resolves Today against now.
func (c LedgerConfig) ReferenceDate(now time.Time) (time.Time, error) {
	if c.Today == "" {
		return domain.DateOf(now), nil
	}
	d, err := domain.ParseDate(c.Today)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ledger.today %q: %w", c.Today, err)
	}
	return d, nil
}

type WorkerConfig struct {
	SnapshotIntervalSeconds int `yaml:"snapshot_interval_seconds"`
	SendAttempts            int `yaml:"send_attempts"`
	SendRetryMillis         int `yaml:"send_retry_millis"`
}

type MailConfig struct {
	APIKey    string `yaml:"api_key"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	switch cfg.Ledger.Storage {
	case StorageFile, StoragePostgres, StorageSQLite:
	default:
		return nil, fmt.Errorf("unknown ledger.storage %q", cfg.Ledger.Storage)
	}
	if _, err := cfg.Ledger.ReferenceDate(time.Now()); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("MAILERSEND_API_KEY"); v != "" {
		c.Mail.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Ledger.Storage == "" {
		c.Ledger.Storage = StorageFile
	}
	if c.Ledger.DataDir == "" {
		c.Ledger.DataDir = "resources/data"
	}
	if c.Ledger.SQLitePath == "" {
		c.Ledger.SQLitePath = "ledger.db"
	}
	if c.Worker.SnapshotIntervalSeconds == 0 {
		c.Worker.SnapshotIntervalSeconds = 60
	}
	if c.Worker.SendAttempts == 0 {
		c.Worker.SendAttempts = 3
	}
	if c.Worker.SendRetryMillis == 0 {
		c.Worker.SendRetryMillis = 500
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "flightledger-notifier"
	}
	if c.Mail.FromName == "" {
		c.Mail.FromName = "Flight Ledger"
	}
}
