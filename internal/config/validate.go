package config

import (
	"fmt"
	"strings"
)

// Validate checks the loaded configuration for internally inconsistent or
// unusable values.
func (c *Config) Validate() error {
	if err := ValidateNonEmpty(c.DatabasePath); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if strings.TrimSpace(c.Catalog.CKLPath) == "" && strings.TrimSpace(c.Catalog.JSONPath) == "" {
		return fmt.Errorf("catalog: at least one of ckl or json must be set")
	}
	if c.SSH.Timeout < 0 {
		return fmt.Errorf("ssh.timeout cannot be negative")
	}
	if err := ValidateNonEmpty(c.Export.Dir); err != nil {
		return fmt.Errorf("export.dir: %w", err)
	}
	return nil
}

// ValidateNonEmpty checks that s is not empty after trimming whitespace.
func ValidateNonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}
