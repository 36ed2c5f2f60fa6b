package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
)

// Load reads a configuration file. Files ending in .json are parsed as the
// connector's JSON input verbatim; anything else is decoded as TOML. A .env
// file found in the working directory or one of its parents is loaded first
// so that TOML values may reference ${VAR}, $VAR or env("VAR").
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	var cfg *Config
	if strings.EqualFold(filepath.Ext(configPath), ".json") {
		cfg, err = Parse(data)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &Config{}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, srcerrors.Wrapf(srcerrors.ErrInvalidConfig, err, "failed to parse %s", configPath)
		}
		cfg.expandEnvVars()
		if err := cfg.ApplyDefaults(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads the nearest .env walking up from the working directory.
// A missing file is not an error.
func loadDotEnv() {
	wd, _ := os.Getwd()
	if wd == "" {
		_ = godotenv.Load()
		return
	}

	dir := wd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (c *Config) expandEnvVars() {
	c.Host = expandString(c.Host)
	c.Database = expandString(c.Database)
	c.Username = expandString(c.Username)
	c.Password = expandString(c.Password)
	c.JDBCURLParams = expandString(c.JDBCURLParams)
}

// expandString expands env("VAR"), env('VAR'), ${VAR} and $VAR.
func expandString(s string) string {
	for {
		var start int
		var endQuote string

		if idx := strings.Index(s, `env("`); idx != -1 {
			start = idx
			endQuote = `")`
		} else if idx := strings.Index(s, `env('`); idx != -1 {
			start = idx
			endQuote = `')`
		} else {
			break
		}

		end := strings.Index(s[start+5:], endQuote)
		if end == -1 {
			break
		}
		end += start + 5

		value := os.Getenv(s[start+5 : end])
		s = s[:start] + value + s[end+2:]
	}

	return os.ExpandEnv(s)
}
