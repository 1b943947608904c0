package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/local-notification/internal/logger"
)

// Config holds settings shared by notifyd and notifyctl.
type Config struct {
	// ServerAddress is the gRPC address notifyd listens on and notifyctl dials.
	ServerAddress string `yaml:"server_addr"`
	// Timeout bounds every RPC made by notifyctl.
	Timeout time.Duration `yaml:"timeout"`
	// AlarmDB is the SQLite file holding pending alerts.
	AlarmDB string `yaml:"alarm_db"`
	// ConsentFile stores the user's answer to the notification permission prompt.
	ConsentFile string `yaml:"consent_file"`
	// IntentFile is the YAML file describing launch parameters.
	IntentFile string `yaml:"intent_file"`
	// MinRepeatInterval coalesces shorter repeat intervals up to this value. Zero disables it.
	MinRepeatInterval time.Duration `yaml:"min_repeat_interval"`
	// Presenter selects how fired alerts are shown: "desktop" or "log".
	Presenter string `yaml:"presenter"`
	// PresenterRate caps presented notifications per second.
	PresenterRate float64 `yaml:"presenter_rate"`
	// Permission selects the consent model: "none", "static" or "prompt".
	Permission string `yaml:"permission"`
	// PermissionGrant is the answer used by the "static" permission model.
	PermissionGrant bool `yaml:"permission_grant"`
	// LogLevel is the minimum level written by the logger.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "local-notification.yaml"

	// DefaultAlarmDBFilename is the default SQLite file for pending alerts.
	DefaultAlarmDBFilename = "local-notification-alarms.db"

	// DefaultConsentFilename is the default file for the permission answer.
	DefaultConsentFilename = "local-notification-consent.json"

	// DefaultIntentFilename is the default launch intent file.
	DefaultIntentFilename = "local-notification-intent.yaml"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultPresenterRate is the default number of notifications shown per second.
	DefaultPresenterRate = 1.0

	// DefaultFilePermissions is the default file permission for files written by the tools.
	DefaultFilePermissions = 0o600
)

// Presenter kinds.
const (
	PresenterDesktop = "desktop"
	PresenterLog     = "log"
)

// Permission models.
const (
	PermissionNone   = "none"
	PermissionStatic = "static"
	PermissionPrompt = "prompt"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerAddressRequired is returned when server address is missing.
	errServerAddressRequired = errors.New("server address must be provided")
	// errUnknownPresenter is returned for an unsupported presenter kind.
	errUnknownPresenter = errors.New("unknown presenter")
	// errUnknownPermission is returned for an unsupported permission model.
	errUnknownPermission = errors.New("unknown permission model")
	// errUnknownLogLevel is returned for an unparsable log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNegativeInterval is returned when min_repeat_interval is negative.
	errNegativeInterval = errors.New("min repeat interval must not be negative")
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults for optional ones.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg.ServerAddress == "" {
		return errServerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.AlarmDB == "" {
		cfg.AlarmDB = DefaultAlarmDBFilename
	}

	if cfg.ConsentFile == "" {
		cfg.ConsentFile = DefaultConsentFilename
	}

	if cfg.IntentFile == "" {
		cfg.IntentFile = DefaultIntentFilename
	}

	if cfg.MinRepeatInterval < 0 {
		return errNegativeInterval
	}

	if cfg.PresenterRate <= 0 {
		cfg.PresenterRate = DefaultPresenterRate
	}

	cfg.Presenter = strings.ToLower(strings.TrimSpace(cfg.Presenter))
	switch cfg.Presenter {
	case "":
		cfg.Presenter = PresenterDesktop
	case PresenterDesktop, PresenterLog:
	default:
		return fmt.Errorf("%w: %q", errUnknownPresenter, cfg.Presenter)
	}

	cfg.Permission = strings.ToLower(strings.TrimSpace(cfg.Permission))
	switch cfg.Permission {
	case "":
		cfg.Permission = PermissionNone
	case PermissionNone, PermissionStatic, PermissionPrompt:
	default:
		return fmt.Errorf("%w: %q", errUnknownPermission, cfg.Permission)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}
