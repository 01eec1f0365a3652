package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/taskman/internal/logging"
)

// Overrides carries values set on the command line. Empty strings are unset.
type Overrides struct {
	TasksFile  string
	SchemaFile string
	LogLevel   string
	LogFormat  string
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// WorkDir is the directory searched for project config and used to resolve
	// relative paths. Empty means the process working directory.
	WorkDir string
	// ConfigFile is an explicit config file; it must exist when set.
	ConfigFile string
	// SkipUserConfig ignores the user-level config file.
	SkipUserConfig bool
	// Overrides are applied last.
	Overrides Overrides
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskman/taskman.toml or OS-specific config dir)
// 3. Project config file (taskman.toml or .taskman.toml in the working directory)
// 4. Explicit config file
// 5. Environment variables
// 6. CLI overrides
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}
	cfg.WorkDir = workDir

	// 2. Try to load from user config file
	if !opts.SkipUserConfig {
		if userConfigFile := findUserConfigFile(); userConfigFile != "" {
			if err := loadConfigFile(cfg, userConfigFile, SourceUserFile); err != nil {
				return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
			}
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(workDir); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Explicit config file
	if opts.ConfigFile != "" {
		path := resolvePath(expandPath(opts.ConfigFile), workDir)
		if err := loadConfigFile(cfg, path, SourceCfgFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// 5. Override from environment
	loadFromEnv(cfg)

	// 6. CLI overrides (they override everything)
	applyOverrides(cfg, opts.Overrides)

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

// loadConfigFile decodes TOML from path on top of cfg and records which
// fields the file defined.
func loadConfigFile(cfg *Config, path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}

	for _, field := range Fields() {
		if md.IsDefined(field) {
			cfg.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.TasksFile != "" {
		cfg.TasksFile = o.TasksFile
		cfg.Sources[FieldTasksFile] = SourceFlag
	}
	if o.SchemaFile != "" {
		cfg.SchemaFile = o.SchemaFile
		cfg.Sources[FieldSchemaFile] = SourceFlag
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
		cfg.Sources[FieldLogLevel] = SourceFlag
	}
	if o.LogFormat != "" {
		cfg.LogFormat = o.LogFormat
		cfg.Sources[FieldLogFormat] = SourceFlag
	}
}

// finalizeConfig computes derived values and validates fields.
func finalizeConfig(cfg *Config) error {
	if cfg.TasksFile == "" {
		return fmt.Errorf("%s must not be empty", FieldTasksFile)
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid %s %q (expected debug|info|warn|error)", FieldLogLevel, cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid %s %q (expected text|json|logfmt)", FieldLogFormat, cfg.LogFormat)
	}

	// Expand ~ and make paths absolute if they're relative
	cfg.TasksFile = resolvePath(expandPath(cfg.TasksFile), cfg.WorkDir)
	if cfg.SchemaFile != "" {
		cfg.SchemaFile = resolvePath(expandPath(cfg.SchemaFile), cfg.WorkDir)
	}

	return nil
}

func resolvePath(p, base string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
