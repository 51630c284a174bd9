package watcher

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/core-tools/hsu-sockswatch/pkg/errors"
)

// DefaultConfigFile is the configuration path used when no flag is given
const DefaultConfigFile = "config.json"

const defaultCheckInterval = 5 // seconds

// Config is the flat on-disk configuration record, loaded once at startup
// and immutable for the rest of the run.
type Config struct {
	SocksPort     int    `json:"socks_port"`
	ContainerName string `json:"container_name"`
	TargetPorts   []int  `json:"target_ports"`
	WebhookURL    string `json:"webhook_url"`
	CheckInterval int    `json:"check_interval"`
}

// LoadOrInitConfig loads the configuration from a JSON file. When the file
// does not exist, a placeholder template is written to disk and a not-found
// error is returned, the caller is expected to terminate with a non-zero
// exit status so the operator can fill the template in.
func LoadOrInitConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := writeConfigTemplate(filename); werr != nil {
				return nil, errors.NewIOError("failed to create configuration template", werr).WithContext("filename", filename)
			}
			return nil, errors.NewNotFoundError(
				fmt.Sprintf("created %s, please configure it and run again", filename), nil,
			).WithContext("filename", filename)
		}
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse JSON configuration", err).WithContext("filename", filename)
	}

	setConfigDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// writeConfigTemplate writes a template with every documented field present
// and placeholder values
func writeConfigTemplate(filename string) error {
	template := Config{
		TargetPorts:   []int{},
		CheckInterval: defaultCheckInterval,
	}

	data, err := json.MarshalIndent(&template, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0o644)
}

// setConfigDefaults applies default values to optional fields
func setConfigDefaults(config *Config) {
	if config.CheckInterval == 0 {
		config.CheckInterval = defaultCheckInterval
	}
}

// ValidateConfig validates the loaded configuration. Any failure here is
// fatal at startup, there are no sane defaults for a webhook URL or target
// ports.
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	if err := validatePort(config.SocksPort); err != nil {
		return errors.NewValidationError("invalid socks_port", err)
	}

	if len(config.TargetPorts) == 0 {
		return errors.NewValidationError("target_ports must not be empty", nil)
	}
	for i, port := range config.TargetPorts {
		if err := validatePort(port); err != nil {
			return errors.NewValidationError("invalid target port", err).WithContext("index", i)
		}
	}

	if config.WebhookURL == "" {
		return errors.NewValidationError("webhook_url is required", nil)
	}

	if config.CheckInterval <= 0 {
		return errors.NewValidationError("check_interval must be positive", nil)
	}

	return nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
