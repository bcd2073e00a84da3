// Package config loads runtime configuration from the environment and an
// optional config file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	AppName            string `mapstructure:"app_name"`
	LogLevel           string `mapstructure:"log_level"`
	PrettyLogs         bool   `mapstructure:"pretty_logs"`
	StartupMaxAttempts int    `mapstructure:"startup_max_attempts"`

	// PostgreSQL (entity and staging store)
	DatabaseDriver                string        `mapstructure:"db_driver"`
	DatabaseHost                  string        `mapstructure:"db_host"`
	DatabasePort                  string        `mapstructure:"db_port"`
	DatabaseUserName              string        `mapstructure:"db_user_name"`
	DatabasePassword              string        `mapstructure:"db_password"`
	DatabaseName                  string        `mapstructure:"db_name"`
	DatabaseSSLMode               string        `mapstructure:"db_ssl_mode"`
	DatabaseMaxOpenConns          int           `mapstructure:"db_max_open_conns"`
	DatabaseMaxIdleConns          int           `mapstructure:"db_max_idle_conns"`
	DatabaseConnMaxLifetime       time.Duration `mapstructure:"db_conn_max_lifetime"`
	DatabaseMigrationFolderPath   string        `mapstructure:"db_migration_folder_path"`
	DatabaseMigrationVersion      int           `mapstructure:"db_migration_version"`
	DatabaseMigrationForce        int           `mapstructure:"db_migration_force"`
	DatabaseMigrationAutoRollback bool          `mapstructure:"db_migration_auto_rollback"`

	// Reconciliation engine
	EngineAbortOnParseError bool `mapstructure:"engine_abort_on_parse_error"`
	MinUnaccompaniedAge     int  `mapstructure:"min_unaccompanied_age"`
	SchoolYearStartMonth    int  `mapstructure:"school_year_start_month"`
	SchoolYearStartDay      int  `mapstructure:"school_year_start_day"`

	// Tracing
	TracingEnabled    bool   `mapstructure:"tracing_enabled"`
	OTLPEndpoint      string `mapstructure:"otlp_endpoint"`
	OTLPClientType    string `mapstructure:"otlp_client_type"`
	TracingSampleRate int    `mapstructure:"tracing_sample_rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "fern")
	v.SetDefault("log_level", "info")
	v.SetDefault("pretty_logs", false)
	v.SetDefault("startup_max_attempts", 5)

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user_name", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "fern")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_lifetime", "10s")
	v.SetDefault("db_migration_folder_path", "db/pg")
	v.SetDefault("db_migration_version", 0)
	v.SetDefault("db_migration_force", 0)
	v.SetDefault("db_migration_auto_rollback", true)

	v.SetDefault("engine_abort_on_parse_error", false)
	v.SetDefault("min_unaccompanied_age", 12)
	v.SetDefault("school_year_start_month", 9)
	v.SetDefault("school_year_start_day", 4)

	v.SetDefault("tracing_enabled", false)
	v.SetDefault("otlp_endpoint", "localhost:4317")
	v.SetDefault("otlp_client_type", "grpc")
	v.SetDefault("tracing_sample_rate", 1)
}

// Load reads configuration from FERN_* environment variables, with an
// optional config file layered underneath when path names one.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FERN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return cfg, nil
}

// DatabaseDSN assembles the Postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUserName, c.DatabasePassword, c.DatabaseName, c.DatabaseSSLMode,
	)
}

// SchoolYearStart returns the reference date for the unaccompanied age
// computation in the given year.
func (c *Config) SchoolYearStart(year int) time.Time {
	return time.Date(year, time.Month(c.SchoolYearStartMonth), c.SchoolYearStartDay, 0, 0, 0, 0, time.UTC)
}
