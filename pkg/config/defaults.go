package config

const (
	defaultAPITarget      = "http://localhost:8000"
	defaultRefreshPath    = "/auth/refresh"
	defaultRequestTimeout = "60s"
	defaultUploadWorkers  = 3
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			APITarget:      defaultAPITarget,
			RefreshPath:    defaultRefreshPath,
			RequestTimeout: defaultRequestTimeout,
			UploadWorkers:  defaultUploadWorkers,
		},
		Chat: ChatConfig{
			RenderMarkdown: true,
		},
		Auth: AuthConfig{
			Persist: true,
		},
	}
}
