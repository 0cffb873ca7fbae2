// Package config loads odo's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/odo/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Invalid values (an unknown appearance or log level, malformed TOML) are
// reported as errors rather than silently replaced.
//
// # Default Values
//
//   - Config file: ~/.config/odo/config.toml
//   - API endpoint: http://127.0.0.1:8000
//   - Saved sign-in: ~/.config/odo/session.toml
//   - Log file: ~/.local/state/odo/odo.log
//   - Log level: info
//   - Appearance: auto (follow the terminal background)
//   - Data refresh: every 30 seconds; upcoming reminders window: 7 days
//
// # Example
//
//	api_url = "http://192.168.1.20:8000"
//	appearance = "auto"
//	log_level = "debug"
//	poll_seconds = 15
//
// # Path Expansion
//
// Paths beginning with ~ are expanded to the user's home directory and made
// absolute. Fields are whitespace-trimmed before use.
package config
