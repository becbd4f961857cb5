// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port     int    `yaml:"port"`
		AdminKey string `yaml:"admin_key"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Game struct {
		// Seed drives every random draw in the session; 0 means
		// non-deterministic (crypto-backed) play.
		Seed       int64  `yaml:"seed"`
		CareerPath string `yaml:"career_path"`
	} `yaml:"game"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine: defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Database.Path = "data/patrimonio.db"
	cfg.Game.CareerPath = "comercio"

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PATRIMONIO_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PATRIMONIO_PORT: %w", err)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("PATRIMONIO_ADMIN_KEY"); v != "" {
		cfg.Server.AdminKey = v
	}
	if v := os.Getenv("PATRIMONIO_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PATRIMONIO_SEED"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("PATRIMONIO_SEED: %w", err)
		}
		cfg.Game.Seed = s
	}
	if v := os.Getenv("PATRIMONIO_CAREER"); v != "" {
		cfg.Game.CareerPath = v
	}

	return cfg, nil
}
