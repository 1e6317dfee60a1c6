package resolve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the resolution configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	config.applyDefaults()

	// Validate required fields
	if config.UniversePath == "" {
		return nil, fmt.Errorf("universePath is required")
	}
	if config.RegistryPath == "" {
		return nil, fmt.Errorf("registryPath is required")
	}
	if config.FuzzyCutoff < 0 || config.FuzzyCutoff > 1 {
		return nil, fmt.Errorf("fuzzyCutoff must be in [0,1], got %v", config.FuzzyCutoff)
	}
	if config.MinControlPoints < 3 {
		return nil, fmt.Errorf("minControlPoints must be at least 3, got %d", config.MinControlPoints)
	}
	switch config.ThinCalibration {
	case ThinCalibrationFail, ThinCalibrationDegrade:
	default:
		return nil, fmt.Errorf("thinCalibration must be %q or %q, got %q",
			ThinCalibrationFail, ThinCalibrationDegrade, config.ThinCalibration)
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
