package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"packhouse/internal/config"
)

// LoadConfig reads the YAML config file. ${VAR} references are expanded
// from the environment first, so credentials stay out of the file itself.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
