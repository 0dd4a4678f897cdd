package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	TokenDuration time.Duration `yaml:"token_duration"`
	DatabasePath  string        `yaml:"database_path"`
	Timezone      string        `yaml:"timezone"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
}

// LoadConfig builds config from env defaults, then overlays the YAML file
// when a path is given.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("SKILLFLOW_ADDR", ":8080"),
		JWTSecret:     getEnv("SKILLFLOW_JWT_SECRET", "supersecretkey"),
		APITimeout:    30 * time.Second,
		TokenDuration: 1 * time.Hour,
		DatabasePath:  getEnv("SKILLFLOW_DATABASE_PATH", "skillflow.db"),
		Timezone:      getEnv("SKILLFLOW_TIMEZONE", "Local"),
		AdminEmail:    getEnv("SKILLFLOW_ADMIN_EMAIL", "admin@skillflow.local"),
		AdminPassword: getEnv("SKILLFLOW_ADMIN_PASSWORD", ""),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that cannot serve requests.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if env := os.Getenv("SKILLFLOW_ENV"); env != "" && env != "development" && c.JWTSecret == "supersecretkey" {
		return fmt.Errorf("jwt_secret must be changed outside development")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location resolves the reporting timezone used for day-boundary math.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
