package config

import (
	"fmt"
	"strconv"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceCfgFile  ConfigSource = "config file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Default values.
const (
	DefaultTasksFile = "tasks.json"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Field names, as written in TOML.
const (
	FieldTasksFile     = "tasks_file"
	FieldSchemaFile    = "schema_file"
	FieldLogLevel      = "log_level"
	FieldLogFormat     = "log_format"
	FieldLogTimestamps = "log_timestamps"
	FieldLogCaller     = "log_caller"
)

// Config holds the full configuration for taskman.
type Config struct {
	// Paths
	TasksFile  string `toml:"tasks_file"`
	SchemaFile string `toml:"schema_file"` // empty uses the built-in schema

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory relative paths resolve against (computed)
	WorkDir string `toml:"-"`

	// Config files that were applied, lowest priority first (computed)
	Files []string `toml:"-"`

	// Unknown keys found in config files (computed)
	Warnings []string `toml:"-"`

	// Sources maps each field name to where its value came from (computed)
	Sources map[string]ConfigSource `toml:"-"`
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return []string{
		FieldTasksFile,
		FieldSchemaFile,
		FieldLogLevel,
		FieldLogFormat,
		FieldLogTimestamps,
		FieldLogCaller,
	}
}

// Value returns the current value of a field formatted for display.
func (c *Config) Value(field string) (string, error) {
	switch field {
	case FieldTasksFile:
		return c.TasksFile, nil
	case FieldSchemaFile:
		if c.SchemaFile == "" {
			return "(built-in)", nil
		}
		return c.SchemaFile, nil
	case FieldLogLevel:
		return c.LogLevel, nil
	case FieldLogFormat:
		return c.LogFormat, nil
	case FieldLogTimestamps:
		return strconv.FormatBool(c.LogTimestamps), nil
	case FieldLogCaller:
		return strconv.FormatBool(c.LogCaller), nil
	}
	return "", fmt.Errorf("unknown config field %q", field)
}

// Source returns where a field's value came from.
func (c *Config) Source(field string) ConfigSource {
	if c.Sources == nil {
		return SourceDefault
	}
	if s, ok := c.Sources[field]; ok {
		return s
	}
	return SourceDefault
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TasksFile = DefaultTasksFile
	cfg.SchemaFile = ""
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false

	cfg.Sources = make(map[string]ConfigSource)
	for _, field := range Fields() {
		cfg.Sources[field] = SourceDefault
	}
}
