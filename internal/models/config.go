package models

import "time"

// Config represents the main configuration
type Config struct {
	Filters FiltersConfig `mapstructure:"filters"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
}

// FiltersConfig locates the game's filter directory
type FiltersConfig struct {
	Directory string `mapstructure:"directory"`
	Extension string `mapstructure:"extension"`
}

// HTTPConfig contains HTTP client settings
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// StoreConfig contains workspace database settings
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level      string            `mapstructure:"level"`
	TimeFormat string            `mapstructure:"time_format"`
	File       string            `mapstructure:"file"`
	NoColor    bool              `mapstructure:"no_color"`
	JSON       bool              `mapstructure:"json"`
	NoTerminal bool              `mapstructure:"no_terminal"`
	Rotation   LogRotationConfig `mapstructure:"rotation"`
}

// LogRotationConfig is passed to the rotating file writer
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// FilterExtension returns the configured extension, ".filter" by default
func (c *Config) FilterExtension() string {
	if c.Filters.Extension == "" {
		return ".filter"
	}
	return c.Filters.Extension
}
