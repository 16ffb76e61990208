package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// Load reads a pipeline from a YAML file. ${VAR} references are replaced by
// environment values before parsing.
func Load(filePath string) (*Pipeline, error) {
	var p Pipeline
	if err := LoadInto(filePath, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Parse decodes a pipeline from YAML bytes, substituting ${VAR} references.
func Parse(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &p); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}
	return &p, nil
}

// LoadInto loads any YAML document from a file into config
func LoadInto(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read config file")
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to parse YAML in %s", filePath))
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// ${VAR_NAME:-fallback} uses fallback when the variable is unset or empty.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		expr := content[start+2 : end]
		name, fallback, hasFallback := strings.Cut(expr, ":-")
		value := os.Getenv(name)
		if value == "" && hasFallback {
			value = fallback
		}
		b.WriteString(content[:start])
		b.WriteString(value)
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
