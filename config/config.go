package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smartpark/spotsim/core/metrics"
	"github.com/smartpark/spotsim/core/sim"
	"github.com/smartpark/spotsim/infra/mqtt"
)

// Config is the full configuration surface of the simulator daemon.
type Config struct {
	MQTT    mqtt.Config    `json:"mqtt"`
	Sim     sim.Config     `json:"sim"`
	Metrics metrics.Config `json:"metrics"`
}

// Load reads the configuration file (yaml or json by extension), applies
// SPOTSIM_ environment overrides, fills defaults and validates. Malformed
// configuration is a startup error, never retried.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. SPOTSIM_MQTT__BROKER.
	if err := k.Load(env.Provider("SPOTSIM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "spotsim_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Sim.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, fmt.Errorf("mqtt: %w", err)
	}
	if err := cfg.Sim.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	return &cfg, nil
}
