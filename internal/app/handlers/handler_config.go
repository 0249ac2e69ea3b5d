package handlers

import (
	"os"
	"strconv"
)

// HandlerConfig provides environment-aware configuration for handlers
type HandlerConfig struct {
	MaxPageSize     int `json:"max_page_size"`
	DefaultPageSize int `json:"default_page_size"`

	// Error handling settings
	EnableDebugErrors bool `json:"enable_debug_errors"`

	Environment string `json:"environment"`
}

// NewHandlerConfig creates a new handler configuration with environment-specific defaults
func NewHandlerConfig() *HandlerConfig {
	config := &HandlerConfig{
		MaxPageSize:       100,
		DefaultPageSize:   20,
		EnableDebugErrors: false,
		Environment:       "production",
	}

	config.loadFromEnv()

	if config.Environment == "development" || config.Environment == "test" {
		config.EnableDebugErrors = true
	}

	return config
}

func (c *HandlerConfig) loadFromEnv() {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		c.Environment = env
	}
	if v := os.Getenv("MAX_PAGE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.MaxPageSize = parsed
		}
	}
	if v := os.Getenv("DEFAULT_PAGE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.DefaultPageSize = parsed
		}
	}
	if v := os.Getenv("ENABLE_DEBUG_ERRORS"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.EnableDebugErrors = parsed
		}
	}
}

// ValidatePageSize clamps a requested page size to the configured bounds
func (c *HandlerConfig) ValidatePageSize(pageSize int) int {
	if pageSize < 1 {
		return c.DefaultPageSize
	}
	if pageSize > c.MaxPageSize {
		return c.MaxPageSize
	}
	return pageSize
}
