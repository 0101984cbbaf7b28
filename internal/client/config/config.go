package config

import "time"

// DefaultRequestTimeout bounds a request when no positive timeout is configured.
const DefaultRequestTimeout = 15 * time.Second

// Config holds runtime settings for the passcli client.
//
// Fields:
//   - AuthBaseURL: base URL of the authentication service.
//   - APIBaseURL: base URL of the password-record and user services.
//   - RequestTimeout: upper bound for one HTTP round-trip.
//   - DatabasePath: SQLite file holding the stored session.
//   - LogLevel: debug, info, warn or error.
//   - StoreKey: optional passphrase sealing the stored token (env only).
//   - AutoLoginOnRegister: open a session right after registration.
type Config struct {
	AuthBaseURL         string        `env:"PASSCLI_AUTH_URL"`
	APIBaseURL          string        `env:"PASSCLI_API_URL"`
	RequestTimeout      time.Duration `env:"PASSCLI_REQUEST_TIMEOUT"`
	DatabasePath        string        `env:"PASSCLI_DB_PATH"`
	LogLevel            string        `env:"PASSCLI_LOG_LEVEL"`
	StoreKey            string        `env:"PASSCLI_STORE_KEY"`
	AutoLoginOnRegister bool          `env:"PASSCLI_AUTO_LOGIN"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AuthBaseURL = "http://localhost:8081"
	c.APIBaseURL = "http://localhost:8080"
	c.RequestTimeout = DefaultRequestTimeout
	c.DatabasePath = "passcli.db"
	c.LogLevel = "info"
	c.StoreKey = ""
	c.AutoLoginOnRegister = true
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. A timeout of zero or less is replaced by
// DefaultRequestTimeout, so every request stays bounded.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return cfg
}
