package config

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
)

// Parse decodes the connector's JSON input. Port may be a number or a numeric
// string. A missing "ssl" key means TLS on, matching the connector spec default.
func Parse(data []byte) (*Config, error) {
	if !gjson.ValidBytes(data) {
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidConfig, nil, "config is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidConfig, nil, "config must be a JSON object")
	}

	cfg := &Config{
		Host:          root.Get("host").String(),
		Database:      root.Get("database").String(),
		Username:      root.Get("username").String(),
		Password:      root.Get("password").String(),
		JDBCURLParams: root.Get("jdbc_url_params").String(),
		SSL:           true,
	}

	port := root.Get("port")
	switch port.Type {
	case gjson.Null:
	case gjson.Number:
		cfg.Port = int(port.Int())
	case gjson.String:
		p, err := strconv.Atoi(strings.TrimSpace(port.Str))
		if err != nil {
			return nil, srcerrors.Wrapf(srcerrors.ErrInvalidConfig, err, "port %q is not a number", port.Str)
		}
		cfg.Port = p
	default:
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidConfig, nil, "port must be a number, got %s", port.Raw)
	}

	if ssl := root.Get("ssl"); ssl.Exists() {
		cfg.SSL = ssl.Bool()
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}
