package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "config.yaml"

type Config struct {
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	Import   Import   `yaml:"import"`
	Policies Policies `yaml:"policies"`
}

type Database struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

type Import struct {
	// HeaderRow skips the first record of every CSV file.
	HeaderRow bool `yaml:"header_row"`
}

// Policies names every business rule whose behaviour differed between
// revisions of the schema. Each one is chosen explicitly here.
type Policies struct {
	AddGenreMissingUser  MissingRowPolicy `yaml:"add_genre_missing_user"`
	DeleteMissingViewer  MissingRowPolicy `yaml:"delete_missing_viewer"`
	UpdateReleaseMissing MissingRowPolicy `yaml:"update_release_missing"`
	PopularTieBreak      TieBreakPolicy   `yaml:"popular_tie_break"`
	ActiveViewerWindow   WindowPolicy     `yaml:"active_viewer_window"`
	EmptyResult          EmptyPolicy      `yaml:"empty_result"`
}

// MissingRowPolicy decides what an operation does when its target row is absent.
type MissingRowPolicy string

const (
	MissingSucceed MissingRowPolicy = "succeed"
	MissingFail    MissingRowPolicy = "fail"
	MissingInsert  MissingRowPolicy = "insert"
)

// TieBreakPolicy orders releases with equal review counts.
type TieBreakPolicy string

const (
	TieBreakRidDesc TieBreakPolicy = "rid_desc"
	TieBreakRidAsc  TieBreakPolicy = "rid_asc"
)

// WindowPolicy decides how session timestamps are compared to a date range.
type WindowPolicy string

const (
	WindowDate      WindowPolicy = "date"
	WindowTimestamp WindowPolicy = "timestamp"
)

// EmptyPolicy decides what a query prints when it matches no rows.
type EmptyPolicy string

const (
	EmptyFail   EmptyPolicy = "fail"
	EmptySilent EmptyPolicy = "silent"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: Database{
			Driver:          "mysql",
			DSN:             "test:password@tcp(127.0.0.1:3306)/cs122a",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
		},
		Log: Log{
			Level:  "error",
			Format: "console",
		},
		Policies: DefaultPolicies(),
	}
}

// DefaultPolicies follows the most recent schema revision.
func DefaultPolicies() Policies {
	return Policies{
		AddGenreMissingUser:  MissingSucceed,
		DeleteMissingViewer:  MissingSucceed,
		UpdateReleaseMissing: MissingInsert,
		PopularTieBreak:      TieBreakRidDesc,
		ActiveViewerWindow:   WindowDate,
		EmptyResult:          EmptyFail,
	}
}

// LoadConfig reads path over the defaults. A missing file is only an error
// when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return config, nil
		}
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides file settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("STREAMING_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("STREAMING_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is empty")
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", c.Log.Format)
	}
	return c.Policies.Validate()
}

func (p Policies) Validate() error {
	if err := oneOf("add_genre_missing_user", p.AddGenreMissingUser, MissingSucceed, MissingFail); err != nil {
		return err
	}
	if err := oneOf("delete_missing_viewer", p.DeleteMissingViewer, MissingSucceed, MissingFail); err != nil {
		return err
	}
	if err := oneOf("update_release_missing", p.UpdateReleaseMissing, MissingInsert, MissingFail); err != nil {
		return err
	}
	if err := oneOf("popular_tie_break", p.PopularTieBreak, TieBreakRidDesc, TieBreakRidAsc); err != nil {
		return err
	}
	if err := oneOf("active_viewer_window", p.ActiveViewerWindow, WindowDate, WindowTimestamp); err != nil {
		return err
	}
	return oneOf("empty_result", p.EmptyResult, EmptyFail, EmptySilent)
}

func oneOf[T ~string](key string, value T, allowed ...T) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("policy %s: unsupported value %q (allowed: %v)", key, value, allowed)
}
