package config

const (
	defaultSubscriptionsFile     = ".cache/bangumi_config/config.json"
	defaultHistoryFile           = ".cache/bangumi_config/history.txt"
	defaultArtifactRoot          = "bangumi"
	defaultUserAgent             = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36 Edg/114.0.1823.82"
	defaultAria2Host             = "localhost"
	defaultAria2Port             = 6800
	defaultSyncTimeoutSeconds    = 30
	defaultLLMBaseURL            = "https://api.siliconflow.cn/v1/chat/completions"
	defaultLLMModel              = "Qwen/Qwen2.5-72B-Instruct"
	defaultLLMReferer            = "https://github.com/Dioxane123/MikanToAny"
	defaultLLMTitle              = "mikanto subscription editor"
	defaultLLMTimeoutSeconds     = 60
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultKnownHostsRelative    = "~/.config/mikanto/known_hosts"
	minimumHistoryEntries        = 300
	historyPerSubscription       = 48
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SubscriptionsFile: defaultSubscriptionsFile,
			HistoryFile:       defaultHistoryFile,
			ArtifactRoot:      defaultArtifactRoot,
		},
		HTTP: HTTP{
			UserAgent: defaultUserAgent,
		},
		Aria2: Aria2{
			Host: defaultAria2Host,
			Port: defaultAria2Port,
		},
		Sync: Sync{
			KnownHostsPath: defaultKnownHostsRelative,
			TimeoutSeconds: defaultSyncTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			NewReleases:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// HistoryCapacity returns the history cap for a run with the given number of
// enabled subscriptions: the configured cap when positive, otherwise
// max(300, 48 * enabled).
func (c *Config) HistoryCapacity(enabled int) int {
	if c != nil && c.History.MaxEntries > 0 {
		return c.History.MaxEntries
	}
	return max(minimumHistoryEntries, historyPerSubscription*enabled)
}
