// Package config loads application configuration from files, the environment
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/pattern"
)

// Viper keys.
const (
	KeyDatabasePath             = "database.path"
	KeyServerAddress            = "server.address"
	KeyServerReadTimeout        = "server.read_timeout"
	KeyServerWriteTimeout       = "server.write_timeout"
	KeyServerShutdownTimeout    = "server.shutdown_timeout"
	KeyServerRequestTimeout     = "server.request_timeout"
	KeyServerAllowedOrigins     = "server.allowed_origins"
	KeyServerTLS                = "server.tls"
	KeyServerCertDir            = "server.cert_dir"
	KeyLoggingLevel             = "logging.level"
	KeyLoggingFormat            = "logging.format"
	KeyRejectArchivedCategories = "ledger.reject_archived_categories"
	KeyImportRules              = "import.rules"
)

// Config is the typed application configuration.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Server   ServerConfig
	Ledger   LedgerConfig
	Import   ImportConfig
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address         string
	CertDir         string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	// TLS serves HTTPS with a self-signed localhost certificate kept in CertDir.
	TLS bool
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
}

// LedgerConfig carries business-rule switches.
type LedgerConfig struct {
	RejectArchivedCategories bool
}

// ImportConfig configures statement imports.
type ImportConfig struct {
	// Rules file imported lines under categories by description.
	Rules []pattern.Rule
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "~/.local/share/spice/ledger.db")
	v.SetDefault(KeyServerAddress, "127.0.0.1:8080")
	v.SetDefault(KeyServerReadTimeout, 15*time.Second)
	v.SetDefault(KeyServerWriteTimeout, 15*time.Second)
	v.SetDefault(KeyServerShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyServerRequestTimeout, 30*time.Second)
	v.SetDefault(KeyServerAllowedOrigins, []string{})
	v.SetDefault(KeyServerTLS, false)
	v.SetDefault(KeyServerCertDir, "~/.local/share/spice/certs")
	v.SetDefault(KeyLoggingLevel, "info")
	v.SetDefault(KeyLoggingFormat, "console")
	v.SetDefault(KeyRejectArchivedCategories, false)
}

// LoadDotEnv loads a .env file into the process environment. Variables that
// are already set win, and a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the configuration held by v. Paths are expanded and the result
// is validated.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString(KeyDatabasePath)),
		},
		Server: ServerConfig{
			Address:         v.GetString(KeyServerAddress),
			ReadTimeout:     v.GetDuration(KeyServerReadTimeout),
			WriteTimeout:    v.GetDuration(KeyServerWriteTimeout),
			ShutdownTimeout: v.GetDuration(KeyServerShutdownTimeout),
			RequestTimeout:  v.GetDuration(KeyServerRequestTimeout),
			AllowedOrigins:  v.GetStringSlice(KeyServerAllowedOrigins),
			TLS:             v.GetBool(KeyServerTLS),
			CertDir:         ExpandPath(v.GetString(KeyServerCertDir)),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString(KeyLoggingLevel)),
			Format: strings.ToLower(v.GetString(KeyLoggingFormat)),
		},
		Ledger: LedgerConfig{
			RejectArchivedCategories: v.GetBool(KeyRejectArchivedCategories),
		},
	}

	if err := v.UnmarshalKey(KeyImportRules, &cfg.Import.Rules); err != nil {
		return nil, fmt.Errorf("%w: import rules: %v", common.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database path is required", common.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("%w: server address is required", common.ErrInvalidConfig)
	}
	if c.Server.TLS && strings.TrimSpace(c.Server.CertDir) == "" {
		return fmt.Errorf("%w: server cert dir is required for TLS", common.ErrInvalidConfig)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 || c.Server.RequestTimeout < 0 {
		return fmt.Errorf("%w: server timeouts must not be negative", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format: %s", common.ErrInvalidConfig, c.Logging.Format)
	}
	if _, err := pattern.NewMatcher(c.Import.Rules); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return nil
}

// ExpandPath expands a leading ~ and $VARS in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// EnvKeyReplacer maps nested keys such as database.path to SPICE_DATABASE_PATH.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
