package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"provenance-workflow-service/internal/config"
)

// Profile overrides the database connection settings from a YAML file,
// so operators can point provctl at a different instance than the one
// configured through the environment.
type Profile struct {
	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
}

func loadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

func (p *Profile) apply(cfg *config.Config) {
	if p.Database.Host != "" {
		cfg.Database.Host = p.Database.Host
	}
	if p.Database.Port != 0 {
		cfg.Database.Port = p.Database.Port
	}
	if p.Database.User != "" {
		cfg.Database.User = p.Database.User
	}
	if p.Database.Password != "" {
		cfg.Database.Password = p.Database.Password
	}
	if p.Database.Name != "" {
		cfg.Database.Name = p.Database.Name
	}
	if p.Database.SSLMode != "" {
		cfg.Database.SSLMode = p.Database.SSLMode
	}
}

func loadConfig(profilePath string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if profilePath != "" {
		profile, err := loadProfile(profilePath)
		if err != nil {
			return nil, err
		}
		profile.apply(cfg)
	}
	return cfg, nil
}
