package config

// LogConfig configures the application logger.
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout or file
	FilePath   string // used when Output is file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func LoadLogConfig() LogConfig {
	v := newEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_FILE", "logs/app.log")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 7)
	return LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		Output:     v.GetString("LOG_OUTPUT"),
		FilePath:   v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		Compress:   v.GetBool("LOG_COMPRESS"),
	}
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool
	Namespace string
	Path      string
}

func LoadMetricsConfig() MetricsConfig {
	v := newEnv()
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_NAMESPACE", "tentbooking")
	v.SetDefault("METRICS_PATH", "/metrics")
	return MetricsConfig{
		Enabled:   v.GetBool("METRICS_ENABLED"),
		Namespace: v.GetString("METRICS_NAMESPACE"),
		Path:      v.GetString("METRICS_PATH"),
	}
}
