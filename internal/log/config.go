package log

// Config controls the global logger.
type Config struct {
	Level   string `mapstructure:"level"`
	Pattern string `mapstructure:"pattern"`
	Time    string `mapstructure:"time"`

	// File enables a rotating file appender in addition to stdout.
	File *FileConfig `mapstructure:"file"`
}

// FileConfig configures the rotating file appender.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func defaultConfig() *Config {
	return &Config{
		Level:   "info",
		Pattern: "%time [%level] %field%msg\n",
		Time:    "2006-01-02 15:04:05.000",
	}
}
