package config

// Supported logging.format values.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

const (
	defaultConfigPath = "~/.config/suimu/config.toml"
	defaultStateDir   = "~/.local/state/suimu"
	defaultLedgerFile = "history.db"
	defaultDownloader = "youtube-dl"
	defaultTranscoder = "ffmpeg"
	defaultLogFormat  = LogFormatConsole
	defaultLogLevel   = "info"
	envDownloader     = "SUIMU_DOWNLOADER"
	envTranscoder     = "SUIMU_TRANSCODER"
	maxTimeoutSeconds = 7 * 24 * 60 * 60

	// The identity and the output extension, in that order.
	artifactPlaceholder = "{}.{}"
)

// Default returns a Config populated with repository defaults. Tool names are
// left empty so environment fallbacks can apply during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
