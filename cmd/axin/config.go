package main

import (
	"fmt"

	"github.com/kbukum/axin/api"
	"github.com/kbukum/axin/config"
	"github.com/kbukum/axin/devserver"
	"github.com/kbukum/axin/logger"
	"github.com/kbukum/axin/observability"
	"github.com/kbukum/axin/version"
)

const serviceName = "axin"

// Config is the CLI's configuration file layout.
type Config struct {
	Base    config.BaseConfig    `yaml:"base" mapstructure:"base"`
	Logging logger.Config        `yaml:"logging" mapstructure:"logging"`
	API     api.Config           `yaml:"api" mapstructure:"api"`
	Server  devserver.Config     `yaml:"server" mapstructure:"server"`
	Tracing observability.Config `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Base.Version == "" {
		c.Base.Version = version.Get().Short()
	}
	c.Base.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.API.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Base.Name
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Base.Version
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Base.Environment
	}
	c.Tracing.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}
