// Config loading for the cellstress CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyWorkers    = "workers"
	cfgKeyIterations = "iterations"
	cfgKeyDBPath     = "db_path"
)

// Default iteration count per worker; workers default to GOMAXPROCS.
const defaultIterations = 1000

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# cellstress configuration

# Concurrent workers per scenario (default: number of CPUs)
# workers:

# Iterations per worker (default: 1000)
# iterations:

# Results database path (default: <config-dir>/results.db)
# db_path:
`

// loadConfig reads config.yaml from the config directory, creating the
// directory and a commented default file on first run. A missing
// config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyWorkers, runtime.GOMAXPROCS(0))
	v.SetDefault(cfgKeyIterations, defaultIterations)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a commented config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// defaultDBPath places the results database next to the config.
func defaultDBPath() string {
	return filepath.Join(resolveConfigDir(), "results.db")
}

// initLogger configures the process logger: console output with
// timestamps, tagged with the application name.
func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "cellstress").Logger()
}
