package config

const (
	defaultLogDir                 = "~/.local/share/phototime/logs"
	defaultHistoryDBName          = "history.db"
	defaultReportFilename         = ".phototime.toml"
	defaultExiftoolBinary         = "exiftool"
	defaultExiftoolTimeoutSeconds = 30
	defaultLocation               = "Local"
	defaultMinYear                = 1900
	defaultHistoryKeepRuns        = 50
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Scan: Scan{
			ReportFilename: defaultReportFilename,
		},
		Exiftool: Exiftool{
			Enabled:        true,
			Binary:         defaultExiftoolBinary,
			TimeoutSeconds: defaultExiftoolTimeoutSeconds,
		},
		Resolve: Resolve{
			Location: defaultLocation,
			MinYear:  defaultMinYear,
		},
		History: History{
			Enabled:  true,
			KeepRuns: defaultHistoryKeepRuns,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
