// Package config loads runtime configuration for the passcli client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables with the PASSCLI_ prefix (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   auth service base URL
//	-s string   record/user service base URL
//	-t int      request timeout (seconds), applied only when given
//	-d string   local database file
//	-l string   log level
//
// Environment
//
//	PASSCLI_AUTH_URL, PASSCLI_API_URL, PASSCLI_REQUEST_TIMEOUT (e.g. "10s"),
//	PASSCLI_DB_PATH, PASSCLI_LOG_LEVEL, PASSCLI_AUTO_LOGIN,
//	PASSCLI_STORE_KEY (only settable here)
//
// # JSON schema
//
//	{
//	  "auth_base_url": "http://localhost:8081",
//	  "api_base_url": "http://localhost:8080",
//	  "request_timeout": "15s",
//	  "database_path": "passcli.db",
//	  "log_level": "info",
//	  "auto_login_on_register": true
//	}
//
// request_timeout also accepts a number of seconds. A timeout of zero or less
// falls back to DefaultRequestTimeout.
package config
