package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	GeoIP    GeoIPConfig    `mapstructure:"geoip"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	AdminPort   int    `mapstructure:"admin_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	SecretKey   string `mapstructure:"secret_key"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type RiskConfig struct {
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
	IPAttemptLimit     int           `mapstructure:"ip_attempt_limit"`
	EmailAttemptLimit  int           `mapstructure:"email_attempt_limit"`
	MaxTravelSpeedKmh  float64       `mapstructure:"max_travel_speed_kmh"`
	ProfileIdleExpiry  time.Duration `mapstructure:"profile_idle_expiry"`
	ProfileSweepPeriod time.Duration `mapstructure:"profile_sweep_period"`
}

type MonitorConfig struct {
	MaintenancePeriod time.Duration `mapstructure:"maintenance_period"`
	DecayAfter        time.Duration `mapstructure:"decay_after"`
	DecayPoints       int           `mapstructure:"decay_points"`
	SnapshotDir       string        `mapstructure:"snapshot_dir"`
}

type AuditConfig struct {
	MaxEvents        int  `mapstructure:"max_events"`
	ArchiveEnabled   bool `mapstructure:"archive_enabled"`
	RetentionDays    int  `mapstructure:"retention_days"`
	StreamingEnabled bool `mapstructure:"streaming_enabled"`
}

type KafkaConfig struct {
	Host  string `mapstructure:"host"`
	Port  string `mapstructure:"port"`
	Topic string `mapstructure:"topic"`
}

// GeoIPConfig points at a JSON table mapping CIDR prefixes to locations.
// Geo velocity checks are skipped when no table is configured.
type GeoIPConfig struct {
	TablePath string `mapstructure:"table_path"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues()

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(out, decodeHook); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Risk.RateLimitWindow == 0 {
		globalConfig.Risk.RateLimitWindow = time.Hour
	}
	if globalConfig.Risk.IPAttemptLimit == 0 {
		globalConfig.Risk.IPAttemptLimit = 20
	}
	if globalConfig.Risk.EmailAttemptLimit == 0 {
		globalConfig.Risk.EmailAttemptLimit = 10
	}
	if globalConfig.Risk.MaxTravelSpeedKmh == 0 {
		globalConfig.Risk.MaxTravelSpeedKmh = 1000
	}
	if globalConfig.Risk.ProfileIdleExpiry == 0 {
		globalConfig.Risk.ProfileIdleExpiry = 30 * 24 * time.Hour
	}
	if globalConfig.Risk.ProfileSweepPeriod == 0 {
		globalConfig.Risk.ProfileSweepPeriod = time.Hour
	}
	if globalConfig.Monitor.MaintenancePeriod == 0 {
		globalConfig.Monitor.MaintenancePeriod = 5 * time.Minute
	}
	if globalConfig.Monitor.DecayAfter == 0 {
		globalConfig.Monitor.DecayAfter = 7 * 24 * time.Hour
	}
	if globalConfig.Monitor.DecayPoints == 0 {
		globalConfig.Monitor.DecayPoints = 5
	}
	if globalConfig.Monitor.SnapshotDir == "" {
		globalConfig.Monitor.SnapshotDir = "data"
	}
	if globalConfig.Audit.MaxEvents == 0 {
		globalConfig.Audit.MaxEvents = 100000
	}
	if globalConfig.Audit.RetentionDays == 0 {
		globalConfig.Audit.RetentionDays = 365
	}
}

func GetConfig() *Config {
	return &globalConfig
}
