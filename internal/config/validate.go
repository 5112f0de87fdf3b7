package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateBuild checks the settings only the build command needs. Call it
// after command-line overrides are applied.
func (c *Config) ValidateBuild() error {
	if c.Paths.CSVFile == "" {
		return errors.New("paths.csv_file must be set (or pass --csv-file)")
	}
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set (or pass --source-dir)")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set (or pass --output-dir)")
	}
	return c.Validate()
}

func (c *Config) validateTools() error {
	if err := ensureTimeouts(map[string]int{
		"tools.download_timeout_seconds": c.Tools.DownloadTimeoutSeconds,
		"tools.convert_timeout_seconds":  c.Tools.ConvertTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Tools.Downloader == "" {
		return errors.New("tools.downloader must be set")
	}
	if c.Tools.Transcoder == "" {
		return errors.New("tools.transcoder must be set")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Output != "" && c.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url must be set when catalog.output is set")
	}
	if c.Catalog.BaseURL != "" && urlFileSegment(c.Catalog.BaseURL) != artifactPlaceholder {
		return fmt.Errorf("catalog.base_url must end in a %q placeholder for the artifact identity and extension", artifactPlaceholder)
	}
	if c.Catalog.Diff != "" && c.Catalog.Output == "" {
		return errors.New("catalog.diff requires catalog.output")
	}
	if c.Catalog.Diff != "" && c.Catalog.Diff == c.Catalog.Output {
		return errors.New("catalog.diff must differ from catalog.output")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensureTimeouts(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be zero (no timeout) or positive", key)
		}
		if value > maxTimeoutSeconds {
			return fmt.Errorf("%s must not exceed %d seconds", key, maxTimeoutSeconds)
		}
	}
	return nil
}

// urlFileSegment returns the last path segment of a URL template, ignoring any
// query or fragment. Previous catalogs are matched to artifacts by this name.
func urlFileSegment(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		url = url[:idx]
	}
	if idx := strings.LastIndexByte(url, '/'); idx >= 0 {
		return url[idx+1:]
	}
	return url
}
