package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// ConnectorConfig configures one source or destination connector. Type
// selects the connector from the registry; every other key is a
// connector-specific option, decoded into the connector's typed options
// struct with Decode.
//
//	connector:
//	  type: csv
//	  path: data/crm.csv
//	  delimiter: ";"
type ConnectorConfig struct {
	// Name identifies the connector instance in logs and metrics
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Type specifies the connector type (e.g., "csv", "sql", "gsheets")
	Type string `yaml:"type" json:"type"`
	// Timeout bounds a single load or write; zero means DefaultTimeout
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// Options holds the connector-specific settings
	Options map[string]interface{} `yaml:",inline" json:"options,omitempty"`
}

// DefaultTimeout bounds connector operations when no timeout is configured
const DefaultTimeout = 5 * time.Minute

// NewConnectorConfig creates a connector config with empty options.
func NewConnectorConfig(name, connectorType string) *ConnectorConfig {
	return &ConnectorConfig{
		Name:    name,
		Type:    connectorType,
		Options: make(map[string]interface{}),
	}
}

// Validate checks required fields.
func (c *ConnectorConfig) Validate() error {
	if c == nil || c.Type == "" {
		return errors.New(errors.ErrorTypeConfig, "connector type is required")
	}
	if c.Timeout < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "connector %s: timeout must not be negative", c.Name)
	}
	return nil
}

// GetTimeout returns the configured timeout or DefaultTimeout.
func (c *ConnectorConfig) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Set stores an option, returning c for chaining.
func (c *ConnectorConfig) Set(key string, value interface{}) *ConnectorConfig {
	if c.Options == nil {
		c.Options = make(map[string]interface{})
	}
	c.Options[key] = value
	return c
}

// Decode fills out from the options. out should already hold its defaults;
// options absent from the config leave them untouched.
func (c *ConnectorConfig) Decode(out interface{}) error {
	if len(c.Options) == 0 {
		return nil
	}
	raw, err := yaml.Marshal(c.Options)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to encode connector options")
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig,
			fmt.Sprintf("invalid options for %s connector %s", c.Type, c.Name))
	}
	return nil
}

// String returns an option rendered as text, or def when absent.
func (c *ConnectorConfig) String(key, def string) string {
	v, ok := c.Options[key]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprint(v)
}

// Int returns an integer option, or def when absent or not a number.
func (c *ConnectorConfig) Int(key string, def int) int {
	switch v := c.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Bool returns a boolean option, or def when absent.
func (c *ConnectorConfig) Bool(key string, def bool) bool {
	switch v := c.Options[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Strings returns a list option. A scalar is treated as a comma separated
// list.
func (c *ConnectorConfig) Strings(key string) []string {
	switch v := c.Options[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return v
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// Required returns a non-empty string option or a config error naming it.
func (c *ConnectorConfig) Required(key string) (string, error) {
	v := c.String(key, "")
	if v == "" {
		return "", errors.Newf(errors.ErrorTypeConfig, "%s connector %s: option %q is required", c.Type, c.Name, key)
	}
	return v, nil
}
