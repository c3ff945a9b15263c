package api

import (
	"time"

	"github.com/kbukum/axin/validation"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8123/api"

// DefaultTimeout bounds every non-streaming request.
const DefaultTimeout = 30 * time.Second

// Config holds gateway configuration.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url" validate:"required,http_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// Token is sent as a bearer token when set.
	Token string `yaml:"token" mapstructure:"token"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
