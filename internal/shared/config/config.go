package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
	BackendSheets   = "sheets"
	BackendMemory   = "memory"
)

// Upload backends.
const (
	UploadLocal    = "local"
	UploadFirebase = "firebase"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	Sheets    SheetsConfig
	Uploads   UploadsConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
	Telegram  TelegramConfig
	Timezone  string
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
	// PublicBaseURL prefixes payslip links. Empty means links are
	// relative to the serving host.
	PublicBaseURL string
	MaxUploadMB   int64
}

type StoreConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SQLiteConfig struct {
	Path string
}

type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
}

type UploadsConfig struct {
	Backend                 string
	Dir                     string
	FirebaseCredentialsFile string
	FirebaseBucket          string
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
	SampleRatio  float64
}

type TelegramConfig struct {
	Token        string
	MessagesFile string
	Workers      int
}

func Load() (*Config, error) {
	backend := strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite))

	defaultPort := "5432"
	if backend == BackendMySQL {
		defaultPort = "3306"
	}
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", defaultPort))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	botWorkers, err := strconv.Atoi(getEnv("BOT_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_WORKERS: %w", err)
	}

	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_TRACE_SAMPLE_RATIO", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return nil, fmt.Errorf("invalid OTEL_TRACE_SAMPLE_RATIO: %q, want 0..1", os.Getenv("OTEL_TRACE_SAMPLE_RATIO"))
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "16"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", os.Getenv("MAX_UPLOAD_MB"))
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "5000"),
			Host:          getEnv("HOST", "0.0.0.0"),
			AllowedHosts:  splitList(getEnv("ALLOWED_HOSTS", "")),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			MaxUploadMB:   maxUpload,
		},
		Store: StoreConfig{
			Backend: backend,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "spendlog"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "spendlog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "spendlog.db"),
		},
		Sheets: SheetsConfig{
			CredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
			SpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		},
		Uploads: UploadsConfig{
			Backend:                 strings.ToLower(getEnv("UPLOAD_BACKEND", UploadLocal)),
			Dir:                     getEnv("UPLOAD_DIR", "uploads"),
			FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			FirebaseBucket:          getEnv("FIREBASE_STORAGE_BUCKET", ""),
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "spendlog"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9464"),
			SampleRatio:  sampleRatio,
		},
		Telegram: TelegramConfig{
			Token:        getEnv("TELEGRAM_BOT_TOKEN", ""),
			MessagesFile: getEnv("BOT_MESSAGES_FILE", ""),
			Workers:      botWorkers,
		},
		Timezone: getEnv("TIMEZONE", "Asia/Kolkata"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendPostgres, BackendMySQL, BackendSQLite, BackendMemory:
	case BackendSheets:
		if c.Sheets.CredentialsFile == "" {
			return fmt.Errorf("SHEETS_CREDENTIALS_FILE is required when STORE_BACKEND=sheets")
		}
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required when STORE_BACKEND=sheets")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Uploads.Backend {
	case UploadLocal:
		if c.Uploads.Dir == "" {
			return fmt.Errorf("UPLOAD_DIR is required when UPLOAD_BACKEND=local")
		}
	case UploadFirebase:
		if c.Uploads.FirebaseBucket == "" {
			return fmt.Errorf("FIREBASE_STORAGE_BUCKET is required when UPLOAD_BACKEND=firebase")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_BACKEND %q", c.Uploads.Backend)
	}

	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}
	return nil
}

// IsSQL reports whether the configured store is one of the database/sql
// backends.
func (c *StoreConfig) IsSQL() bool {
	switch c.Backend {
	case BackendPostgres, BackendMySQL, BackendSQLite:
		return true
	}
	return false
}

// ConnectionString returns the lib/pq keyword DSN.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
