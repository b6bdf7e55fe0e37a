package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/avriley/tonearm/internal/platform"
)

type Config struct {
	Debug bool `mapstructure:"debug"`

	Audio struct {
		SampleRate    int     `mapstructure:"sample_rate"`
		BufferSize    int     `mapstructure:"buffer_size"`
		DefaultVolume float64 `mapstructure:"default_volume"`
	} `mapstructure:"audio"`

	Library struct {
		MusicDir     string `mapstructure:"music_dir"`
		DatabasePath string `mapstructure:"database_path"`
		Watch        bool   `mapstructure:"watch"`
	} `mapstructure:"library"`

	Search struct {
		MaxResults int `mapstructure:"max_results"`
	} `mapstructure:"search"`

	Shell struct {
		TickMs      int    `mapstructure:"tick_ms"`
		HistoryFile string `mapstructure:"history_file"`
	} `mapstructure:"shell"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		configDir, err := platform.GetConfigDir()
		if err != nil {
			return nil, err
		}
		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("TONEARM")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := ensureDirectories(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with defaults only, for tests and tools
// that do not read a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.Audio.SampleRate = 44100
	cfg.Audio.BufferSize = getDefaultBufferSize()
	cfg.Audio.DefaultVolume = 0.7
	cfg.Library.Watch = true
	cfg.Search.MaxResults = 100
	cfg.Shell.TickMs = 200
	return cfg
}

func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("audio.sample_rate", 44100)
	viper.SetDefault("audio.buffer_size", getDefaultBufferSize())
	viper.SetDefault("audio.default_volume", 0.7)

	dataDir, _ := platform.GetDataDir()
	cacheDir, _ := platform.GetCacheDir()
	home, _ := os.UserHomeDir()

	viper.SetDefault("library.music_dir", filepath.Join(home, "Music"))
	viper.SetDefault("library.database_path", filepath.Join(dataDir, "library.db"))
	viper.SetDefault("library.watch", true)

	viper.SetDefault("search.max_results", 100)

	viper.SetDefault("shell.tick_ms", 200)
	viper.SetDefault("shell.history_file", filepath.Join(cacheDir, "history"))
}

func getDefaultBufferSize() int {
	switch runtime.GOOS {
	case "linux":
		return 16384
	default:
		return 8192
	}
}

func ensureDirectories(cfg *Config) error {
	dirs := []string{
		filepath.Dir(cfg.Library.DatabasePath),
	}
	if cfg.Shell.HistoryFile != "" {
		dirs = append(dirs, filepath.Dir(cfg.Shell.HistoryFile))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
