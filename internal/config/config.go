// Package config loads and validates the application configuration.
package config

import (
	"fmt"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/alert"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/capture"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/geo"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/log"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/processor"
)

// Config is the root configuration.
type Config struct {
	Log       *log.Config       `mapstructure:"log"`
	Capture   capture.Options   `mapstructure:"capture"`
	Processor processor.Options `mapstructure:"processor"`
	Geo       geo.Config        `mapstructure:"geo"`
	Alerts    AlertsConfig      `mapstructure:"alerts"`
	API       APIConfig         `mapstructure:"api"`
}

// AlertsConfig holds the declarative rule set and optional delivery sinks.
type AlertsConfig struct {
	Rules []alert.RuleSpec  `mapstructure:"rules"`
	Kafka alert.KafkaConfig `mapstructure:"kafka"`
}

// APIConfig configures the read-only HTTP API consumed by the dashboard.
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Validate checks the configuration for errors that should stop startup.
func (c *Config) Validate() error {
	if c.Capture.Interface == "" {
		return fmt.Errorf("capture.interface is required")
	}
	for i, spec := range c.Alerts.Rules {
		if _, err := spec.Compile(); err != nil {
			return fmt.Errorf("alerts.rules[%d]: %w", i, err)
		}
	}
	if c.Alerts.Kafka.Enabled {
		if len(c.Alerts.Kafka.Brokers) == 0 {
			return fmt.Errorf("alerts.kafka.brokers is required when the kafka sink is enabled")
		}
		if c.Alerts.Kafka.Topic == "" {
			return fmt.Errorf("alerts.kafka.topic is required when the kafka sink is enabled")
		}
	}
	return nil
}
