package config

import (
	"errors"
	"fmt"
	"strings"
)

// reservedColumns are table columns that can never double as label names.
var reservedColumns = []string{"key", "root", "folder"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLabels(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLabels() error {
	if len(c.Labels.TissueTypes) == 0 {
		return errors.New("labels.tissue_types must name at least one label")
	}
	if strings.TrimSpace(c.Labels.CommentColumn) == "" {
		return errors.New("labels.comment_column must be set")
	}

	seen := make(map[string]string)
	for _, col := range reservedColumns {
		seen[col] = "reserved column"
	}
	seen[c.Labels.CommentColumn] = "labels.comment_column"

	groups := []struct {
		name   string
		labels []string
	}{
		{"labels.tissue_types", c.Labels.TissueTypes},
		{"labels.clinical_classes", c.Labels.ClinicalClasses},
		{"labels.other_attributes", c.Labels.OtherAttributes},
	}
	for _, group := range groups {
		for _, label := range group.labels {
			trimmed := strings.TrimSpace(label)
			if trimmed == "" {
				return fmt.Errorf("%s contains an empty label", group.name)
			}
			if origin, dup := seen[trimmed]; dup {
				return fmt.Errorf("%s: label %q collides with %s", group.name, trimmed, origin)
			}
			seen[trimmed] = group.name
		}
	}
	return nil
}

func (c *Config) validateFrames() error {
	if !strings.HasPrefix(c.Frames.Extension, ".") || len(c.Frames.Extension) < 2 {
		return fmt.Errorf("frames.extension %q must be a file extension beginning with a dot", c.Frames.Extension)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
