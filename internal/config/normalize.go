package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeBuild()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"paths.csv_file", &c.Paths.CSVFile},
		{"paths.source_dir", &c.Paths.SourceDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
	} {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	if c.Paths.StateDir == "" {
		expanded, err := expandPath(defaultStateDir)
		if err != nil {
			return fmt.Errorf("paths.state_dir: %w", err)
		}
		c.Paths.StateDir = expanded
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.Downloader = strings.TrimSpace(c.Tools.Downloader)
	if c.Tools.Downloader == "" {
		if value, ok := os.LookupEnv(envDownloader); ok && strings.TrimSpace(value) != "" {
			c.Tools.Downloader = strings.TrimSpace(value)
		} else {
			c.Tools.Downloader = defaultDownloader
		}
	}
	c.Tools.Transcoder = strings.TrimSpace(c.Tools.Transcoder)
	if c.Tools.Transcoder == "" {
		if value, ok := os.LookupEnv(envTranscoder); ok && strings.TrimSpace(value) != "" {
			c.Tools.Transcoder = strings.TrimSpace(value)
		} else {
			c.Tools.Transcoder = defaultTranscoder
		}
	}
}

func (c *Config) normalizeCatalog() error {
	var err error
	if c.Catalog.Output, err = expandPath(strings.TrimSpace(c.Catalog.Output)); err != nil {
		return fmt.Errorf("catalog.output: %w", err)
	}
	if c.Catalog.Previous, err = expandPath(strings.TrimSpace(c.Catalog.Previous)); err != nil {
		return fmt.Errorf("catalog.previous: %w", err)
	}
	if c.Catalog.Diff, err = expandPath(strings.TrimSpace(c.Catalog.Diff)); err != nil {
		return fmt.Errorf("catalog.diff: %w", err)
	}
	c.Catalog.BaseURL = strings.TrimSpace(c.Catalog.BaseURL)
	return nil
}

func (c *Config) normalizeBuild() {
	if len(c.Build.RestrictedStatuses) == 0 {
		c.Build.RestrictedStatuses = nil
		return
	}
	statuses := slices.Clone(c.Build.RestrictedStatuses)
	slices.Sort(statuses)
	c.Build.RestrictedStatuses = slices.Compact(statuses)
}

func (c *Config) normalizeLedger() error {
	var err error
	if c.Ledger.Path, err = expandPath(strings.TrimSpace(c.Ledger.Path)); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
