package config

import (
	"log"
	"os"
	"path/filepath"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`

	// Dataset location
	DataDirectory string `json:"data_directory"`
	DatasetFile   string `json:"dataset_file"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:    ":8080",
		Debug:         false,
		DataDirectory: filepath.Join(wd, "data"),
		DatasetFile:   "online_retail_II.csv",
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("RETAIL_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("RETAIL_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if dataDir := os.Getenv("RETAIL_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}
	if file := os.Getenv("RETAIL_DATASET_FILE"); file != "" {
		cfg.DatasetFile = file
	}

	cfg.ensureDirectories()

	return cfg
}

// DatasetPath returns the full path of the dataset file
func (c *Config) DatasetPath() string {
	return filepath.Join(c.DataDirectory, c.DatasetFile)
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	if err := os.MkdirAll(c.DataDirectory, 0755); err != nil {
		log.Printf("Warning: could not create directory %s: %v", c.DataDirectory, err)
	}
}
