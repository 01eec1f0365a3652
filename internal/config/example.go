package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskman configuration file
# Values can be overridden by environment variables (TASKMAN_*) or CLI flags

# Task store (relative paths resolve against the working directory)
tasks_file = "tasks.json"

# JSON Schema used by "taskman validate" (empty uses the built-in schema)
# schema_file = "tasks.schema.json"

# Diagnostic logging on stderr: debug, info, warn, error
log_level = "warn"

# Log format: text, json, logfmt
log_format = "text"

# Include timestamps and caller locations in log lines
log_timestamps = false
log_caller = false
`
}
