package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
)

var configValidator = validator.New()

// ApplyDefaults fills zero-valued fields from their `default` tags.
func (c *Config) ApplyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return srcerrors.Wrapf(srcerrors.ErrInvalidConfig, err, "failed to apply defaults")
	}
	return nil
}

// Validate checks the record against its struct tags and the jdbc_url_params
// syntax. All field problems are reported in one error.
func (c *Config) Validate() error {
	if c == nil {
		return srcerrors.Wrapf(srcerrors.ErrInvalidConfig, nil, "config is missing")
	}

	var messages []string
	if err := configValidator.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return srcerrors.Wrap(srcerrors.ErrInvalidConfig, err)
		}
		for _, e := range validationErrors {
			messages = append(messages, formatValidationError(e))
		}
	}

	if _, err := c.URLParams(); err != nil {
		messages = append(messages, err.Error())
	}

	if len(messages) > 0 {
		return srcerrors.Wrapf(srcerrors.ErrInvalidConfig, nil, "%s", strings.Join(messages, "; "))
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: required field is empty", field)
	case "gte":
		return fmt.Sprintf("%s: must be >= %s (got: %v)", field, e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("%s: must be <= %s (got: %v)", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s: validation '%s' failed (got: %v)", field, e.Tag(), e.Value())
	}
}
