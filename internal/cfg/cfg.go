package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"roleserve/internal/common"
)

type Settings struct {
	ModelPath         string
	FallbackThreshold float64
	DriftThreshold    float64
	WindowSize        int
	ListenPort        int
	DataPath          string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	SnapshotInterval  time.Duration
}

type ConfigFile struct {
	Model struct {
		Path              string  `yaml:"path"`
		FallbackThreshold float64 `yaml:"fallbackThreshold"`
	} `yaml:"model"`

	Monitoring struct {
		DriftThreshold   float64 `yaml:"driftThreshold"`
		WindowSize       int     `yaml:"windowSize"`
		SnapshotInterval string  `yaml:"snapshotInterval"`
	} `yaml:"monitoring"`

	System struct {
		ListenPort      int    `yaml:"listenPort"`
		DataPath        string `yaml:"dataPath"`
		RequestTimeout  string `yaml:"requestTimeout"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Pick up a local .env file when present; serving config is plain env.
	_ = godotenv.Load()

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings := Settings{
		ModelPath:         getEnvOrDefault(common.EnvModelPath, config.Model.Path),
		FallbackThreshold: getFloatFromEnvOrConfig(common.EnvFallbackThreshold, config.Model.FallbackThreshold),
		DriftThreshold:    getFloatFromEnvOrConfig(common.EnvDriftThreshold, config.Monitoring.DriftThreshold),
		WindowSize:        getIntFromEnvOrConfig(common.EnvWindowSize, config.Monitoring.WindowSize),
		ListenPort:        getIntFromEnvOrConfig(common.EnvListenPort, config.System.ListenPort),
		DataPath:          getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		RequestTimeout:    parseDurationOrDefault(config.System.RequestTimeout, 10*time.Second),
		ShutdownTimeout:   parseDurationOrDefault(config.System.ShutdownTimeout, 10*time.Second),
		SnapshotInterval:  parseDurationOrDefault(config.Monitoring.SnapshotInterval, 2*time.Second),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:         getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		FallbackThreshold: getFloatOrDefault(common.EnvFallbackThreshold, common.DefaultFallbackThreshold),
		DriftThreshold:    getFloatOrDefault(common.EnvDriftThreshold, common.DefaultDriftThreshold),
		WindowSize:        getIntOrDefault(common.EnvWindowSize, common.DefaultWindowSize),
		ListenPort:        getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		DataPath:          os.Getenv(common.EnvDataPath), // optional
		RequestTimeout:    getDurationOrDefault(common.EnvRequestTimeout, 10*time.Second),
		ShutdownTimeout:   getDurationOrDefault(common.EnvShutdownTimeout, 10*time.Second),
		SnapshotInterval:  getDurationOrDefault(common.EnvSnapshotInterval, 2*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// applyDefaults fills zero-valued fields left open by a sparse YAML file.
func applyDefaults(s *Settings) {
	if s.ModelPath == "" {
		s.ModelPath = common.DefaultModelPath
	}
	if s.FallbackThreshold == 0 {
		s.FallbackThreshold = common.DefaultFallbackThreshold
	}
	if s.DriftThreshold == 0 {
		s.DriftThreshold = common.DefaultDriftThreshold
	}
	if s.WindowSize == 0 {
		s.WindowSize = common.DefaultWindowSize
	}
	if s.ListenPort == 0 {
		s.ListenPort = common.DefaultListenPort
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseDurationOrDefault(v string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

func getFloatFromEnvOrConfig(key string, configValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs range validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.ModelPath == "" {
		return fmt.Errorf("%s", common.ErrMsgModelPathRequired)
	}

	if settings.FallbackThreshold < 0 || settings.FallbackThreshold > 1 {
		return fmt.Errorf("fallback threshold must be between 0 and 1, got %f", settings.FallbackThreshold)
	}
	if settings.DriftThreshold < 0 || settings.DriftThreshold > 1 {
		return fmt.Errorf("drift threshold must be between 0 and 1, got %f", settings.DriftThreshold)
	}

	if settings.WindowSize <= 0 {
		return fmt.Errorf("%s, got %d", common.ErrMsgWindowSizePos, settings.WindowSize)
	}
	if settings.WindowSize > common.MaxWindowSize {
		return fmt.Errorf("window size must be at most %d, got %d", common.MaxWindowSize, settings.WindowSize)
	}

	if settings.ListenPort < common.MinListenPort || settings.ListenPort > common.MaxListenPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d",
			common.MinListenPort, common.MaxListenPort, settings.ListenPort)
	}

	if settings.RequestTimeout < time.Second || settings.RequestTimeout > time.Minute {
		return fmt.Errorf("request timeout must be between 1s and 1m, got %v", settings.RequestTimeout)
	}
	if settings.SnapshotInterval < 100*time.Millisecond || settings.SnapshotInterval > time.Minute {
		return fmt.Errorf("snapshot interval must be between 100ms and 1m, got %v", settings.SnapshotInterval)
	}

	return nil
}
