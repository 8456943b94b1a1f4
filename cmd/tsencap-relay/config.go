package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// relayConfig describes one encapsulation relay: divert pidInput into
// pidOutput, optionally locking PCR interpolation to pcrReference.
type relayConfig struct {
	PIDOutput          uint16   `yaml:"pid_output"`
	PIDInput           []uint16 `yaml:"pid_input"`
	PCRReference       uint16   `yaml:"pcr_reference"`
	Packing            bool     `yaml:"packing"`
	MaxBufferedPackets int      `yaml:"max_buffered_packets"`
}

func defaultRelayConfig() *relayConfig {
	return &relayConfig{
		PCRReference:       0x1fff,
		MaxBufferedPackets: 128,
	}
}

func loadRelayConfig(path string) (*relayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tsencap-relay: reading config failed: %w", err)
	}

	cfg := defaultRelayConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("tsencap-relay: parsing config failed: %w", err)
	}
	return cfg, nil
}
