package config

const (
	defaultDownloadDir       = "~/Downloads/veil"
	defaultDataDir           = "~/.local/share/veil"
	defaultLogDir            = "~/.local/share/veil/logs"
	defaultServiceBaseURL    = "http://127.0.0.1:8000"
	defaultRequestTimeout    = 30
	defaultPollIntervalMS    = 1000
	defaultPollAttempts      = 300
	defaultCompletionGraceMS = 500
	defaultSimulatorTickMS   = 500
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
		},
		Service: Service{
			BaseURL:        defaultServiceBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Tracker: Tracker{
			PollIntervalMS:    defaultPollIntervalMS,
			PollAttempts:      defaultPollAttempts,
			CompletionGraceMS: defaultCompletionGraceMS,
			SimulatorTickMS:   defaultSimulatorTickMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
