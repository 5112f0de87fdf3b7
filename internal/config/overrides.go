package config

// Overrides carries command-line values that take precedence over the file.
// Empty strings leave the file value in place.
type Overrides struct {
	CSVFile      string
	SourceDir    string
	OutputDir    string
	OutputJSON   string
	BaseURL      string
	OutputDiff   string
	PreviousJSON string
	Downloader   string
	Transcoder   string
	DryRun       bool
}

// ApplyOverrides folds o into c and renormalizes.
func (c *Config) ApplyOverrides(o Overrides) error {
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	set(&c.Paths.CSVFile, o.CSVFile)
	set(&c.Paths.SourceDir, o.SourceDir)
	set(&c.Paths.OutputDir, o.OutputDir)
	set(&c.Catalog.Output, o.OutputJSON)
	set(&c.Catalog.BaseURL, o.BaseURL)
	set(&c.Catalog.Diff, o.OutputDiff)
	set(&c.Catalog.Previous, o.PreviousJSON)
	set(&c.Tools.Downloader, o.Downloader)
	set(&c.Tools.Transcoder, o.Transcoder)
	if o.DryRun {
		c.Build.DryRun = true
	}
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}
