package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/logger"
)

// Config holds the settings of the alarm controller and the panel client.
type Config struct {
	// LogLevel is the minimum level of log messages.
	LogLevel string `yaml:"log_level"`
	// Panel configures the remote panel gRPC endpoint.
	Panel Panel `yaml:"panel"`
	// Beeper selects the beeper backend: "log" or "terminal".
	Beeper string `yaml:"beeper"`
	// Journal configures the alarm audit journal.
	Journal Journal `yaml:"journal"`
	// MuteLimits overrides the mute limit of alarms by name.
	MuteLimits map[string]int `yaml:"mute_limits,omitempty"`
	// Simulation maps front-panel keys to alarms for bench testing.
	Simulation Simulation `yaml:"simulation"`
	// TickInterval is the period of the controller tick hook.
	TickInterval time.Duration `yaml:"tick_interval"`
}

// Panel configures the remote panel endpoint.
type Panel struct {
	// ListenAddress is where the controller serves the panel, and where the
	// panel client connects.
	ListenAddress string `yaml:"listen_addr"`
	// Timeout bounds each panel call.
	Timeout time.Duration `yaml:"timeout"`
}

// Journal configures the audit journal.
type Journal struct {
	// Driver is "none", "file" or "sqlite".
	Driver string `yaml:"driver"`
	// Path is the journal file or database location.
	Path string `yaml:"path"`
}

// Simulation configures simulated alarm keys.
type Simulation struct {
	// Keys maps a key name to the alarm it raises.
	Keys map[string]string `yaml:"keys,omitempty"`
}

// Journal drivers.
const (
	JournalNone   = "none"
	JournalFile   = "file"
	JournalSQLite = "sqlite"
)

const (
	// DefaultConfigFilename is the default settings file name.
	DefaultConfigFilename = "vent-alarm.yaml"

	// DefaultListenAddress is the default panel endpoint.
	DefaultListenAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration of a panel call.
	DefaultTimeout = 5 * time.Second

	// DefaultTickInterval is the default period of the tick hook.
	DefaultTickInterval = time.Second

	// DefaultJournalFile is the default journal path for the file driver.
	DefaultJournalFile = "vent-alarm-journal.jsonl"

	// DefaultJournalDatabase is the default journal path for the sqlite driver.
	DefaultJournalDatabase = "vent-alarm-journal.db"

	// DefaultFilePermissions is the permission of files written by the controller.
	DefaultFilePermissions = 0o600
)

var (
	errConfigIsNotSet      = errors.New("configuration is not set")
	errInvalidLogLevel     = errors.New("invalid log level")
	errInvalidBeeper       = errors.New("beeper must be \"log\" or \"terminal\"")
	errInvalidJournal      = errors.New("journal driver must be \"none\", \"file\" or \"sqlite\"")
	errInvalidTickInterval = errors.New("tick interval must not be negative")
)

// Default returns the settings used when no file exists.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads settings from path and validates them.
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

// LoadOrDefault is Load falling back to Default when the file is missing.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes settings to path.
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

// Validate checks settings and fills in defaults.
//
//nolint:cyclop // A flat list of field checks reads best.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.LogLevel)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Panel.ListenAddress == "" {
		cfg.Panel.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.Panel.ListenAddress); err != nil {
		return fmt.Errorf("invalid panel address: %w", err)
	}

	if cfg.Panel.Timeout <= 0 {
		cfg.Panel.Timeout = DefaultTimeout
	}

	switch cfg.Beeper {
	case "":
		cfg.Beeper = "log"
	case "log", "terminal":
	default:
		return fmt.Errorf("%w: %q", errInvalidBeeper, cfg.Beeper)
	}

	switch cfg.Journal.Driver {
	case "":
		cfg.Journal.Driver = JournalFile
	case JournalNone, JournalFile, JournalSQLite:
	default:
		return fmt.Errorf("%w: %q", errInvalidJournal, cfg.Journal.Driver)
	}

	if cfg.Journal.Path == "" {
		switch cfg.Journal.Driver {
		case JournalFile:
			cfg.Journal.Path = DefaultJournalFile
		case JournalSQLite:
			cfg.Journal.Path = DefaultJournalDatabase
		}
	}

	for key := range cfg.Simulation.Keys {
		if _, err := event.SimulatedKey(key); err != nil {
			return fmt.Errorf("invalid simulation key: %w", err)
		}
	}

	if cfg.TickInterval < 0 {
		return errInvalidTickInterval
	}

	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	return nil
}
