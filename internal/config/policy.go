package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/water-supply/internal/status"
)

type policyFile struct {
	Defaults    status.Limit         `yaml:"defaults"`
	StackLevels map[int]status.Limit `yaml:"stack_levels"`
}

// LoadPolicy reads a YAML limit policy from path. Fields omitted from the
// file's defaults inherit from base.
func LoadPolicy(path string, base status.Limit) (status.StackLimitPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return status.StackLimitPolicy{}, fmt.Errorf("read limit policy: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return status.StackLimitPolicy{}, fmt.Errorf("parse limit policy %s: %w", path, err)
	}

	if file.Defaults.Value < 0 {
		return status.StackLimitPolicy{}, fmt.Errorf("limit policy %s: defaults.limit_value must not be negative", path)
	}
	for level, limit := range file.StackLevels {
		if limit.Value < 0 {
			return status.StackLimitPolicy{}, fmt.Errorf("limit policy %s: stack level %d limit_value must not be negative", path, level)
		}
	}

	defaults := base
	if file.Defaults.Value != 0 {
		defaults.Value = file.Defaults.Value
	}
	if file.Defaults.Type != "" {
		defaults.Type = file.Defaults.Type
	}

	return status.StackLimitPolicy{Defaults: defaults, StackLevels: file.StackLevels}, nil
}
