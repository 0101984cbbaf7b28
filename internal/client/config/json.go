package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/passclient/internal/flagx"
	"github.com/dmitrijs2005/passclient/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// RequestTimeout uses timex.Duration so it can be written as "15s" or as
// a number of seconds. StoreKey is only read from the environment.
type JsonConfig struct {
	AuthBaseURL         string         `json:"auth_base_url"`
	APIBaseURL          string         `json:"api_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	DatabasePath        string         `json:"database_path"`
	LogLevel            string         `json:"log_level"`
	AutoLoginOnRegister *bool          `json:"auto_login_on_register"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields missing from the file keep their current values.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.AuthBaseURL != "" {
		cfg.AuthBaseURL = jc.AuthBaseURL
	}
	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.AutoLoginOnRegister != nil {
		cfg.AutoLoginOnRegister = *jc.AutoLoginOnRegister
	}
}
