package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSiteTitle       = "Their Side"
	DefaultSiteDescription = "Conversations with the most tragically misunderstood people of our time."
	DefaultSiteLanguage    = "en"
)

func DefaultSite() *Site {
	return &Site{
		Title:       DefaultSiteTitle,
		Description: DefaultSiteDescription,
		Language:    DefaultSiteLanguage,
	}
}

// LoadSite reads the YAML site file at path. An empty path or a missing file
// yields the defaults; fields left blank in the file keep their default.
func LoadSite(path string) (*Site, error) {
	site := DefaultSite()
	if path == "" {
		return site, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return site, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}

	var parsed Site
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if parsed.Title != "" {
		site.Title = parsed.Title
	}
	if parsed.Description != "" {
		site.Description = parsed.Description
	}
	if parsed.Language != "" {
		site.Language = parsed.Language
	}

	return site, nil
}
