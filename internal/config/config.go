// Package config holds the connection configuration record handed to the
// source: where the database lives and how to authenticate against it.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"

	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
)

// Config is the connector input. It is built once per run and treated as
// immutable afterwards; callers that need to change it work on a Clone.
type Config struct {
	Host          string `json:"host" toml:"host" validate:"required"`
	Port          int    `json:"port" toml:"port" default:"8123" validate:"gte=1,lte=65535"`
	Database      string `json:"database" toml:"database" default:"default" validate:"required"`
	Username      string `json:"username" toml:"username" default:"default"`
	Password      string `json:"password" toml:"password"`
	SSL           bool   `json:"ssl" toml:"ssl"`
	JDBCURLParams string `json:"jdbc_url_params,omitempty" toml:"jdbc_url_params"`
}

// Clone returns a copy that shares nothing with c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Address returns host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// JDBCURL renders the configuration the way JDBC-based tooling expects it,
// e.g. jdbc:clickhouse://localhost:8123/default?ssl=true&sslmode=NONE.
func (c *Config) JDBCURL() string {
	url := fmt.Sprintf("jdbc:clickhouse://%s/%s", c.Address(), c.Database)

	var params []string
	if c.SSL {
		params = append(params, "ssl=true", "sslmode=NONE")
	}
	if extra := strings.Trim(c.JDBCURLParams, "&"); extra != "" {
		params = append(params, extra)
	}
	if len(params) > 0 {
		url += "?" + strings.Join(params, "&")
	}
	return url
}

// URLParams parses jdbc_url_params ("k=v&k2=v2") into a map.
func (c *Config) URLParams() (map[string]string, error) {
	params := make(map[string]string)
	raw := strings.TrimSpace(c.JDBCURLParams)
	if raw == "" {
		return params, nil
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, srcerrors.Wrapf(srcerrors.ErrInvalidConfig, nil, "jdbc_url_params: malformed pair %q", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

// ToJSON encodes the record with the keys the connector spec declares.
func (c *Config) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// String never includes the password.
func (c *Config) String() string {
	return fmt.Sprintf("%s@%s/%s (ssl=%t)", c.Username, c.Address(), c.Database, c.SSL)
}
