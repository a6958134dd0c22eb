package prediction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the prediction heuristics. Base rates apply when a brand has
// no history; channel adjustments shift the engagement forecast per delivery
// channel.
type Config struct {
	DefaultApprovalRate    float64            `yaml:"defaultApprovalRate" json:"defaultApprovalRate"`
	DefaultEngagementRate  float64            `yaml:"defaultEngagementRate" json:"defaultEngagementRate"`
	DefaultComplianceScore float64            `yaml:"defaultComplianceScore" json:"defaultComplianceScore"`
	ChannelAdjustments     map[string]float64 `yaml:"channelAdjustments" json:"channelAdjustments"`
}

// DefaultConfig returns the default prediction configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultApprovalRate:    70,
		DefaultEngagementRate:  50,
		DefaultComplianceScore: 75,
		ChannelAdjustments: map[string]float64{
			"email":  5,
			"social": 8,
			"print":  -5,
		},
	}
}

// LoadConfig loads prediction configuration from a YAML file.
// If the file does not exist, default configuration is returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read prediction config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse prediction config: %w", err)
	}

	return cfg, nil
}
