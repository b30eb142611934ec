// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all salescan configuration.
type Config struct {
	Version int `yaml:"version"`

	Input    InputConfig    `yaml:"input"`
	Progress ProgressConfig `yaml:"progress"`
	Report   ReportConfig   `yaml:"report"`
}

// InputConfig controls how the ledger file is read.
type InputConfig struct {
	// Path is the ledger processed when no argument is given.
	Path string `yaml:"path"`

	// BufferSize is the read-ahead buffer size in bytes.
	BufferSize int `yaml:"buffer_size"`
}

// ProgressConfig controls the progress display.
type ProgressConfig struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
}

// ReportConfig controls result reporting.
type ReportConfig struct {
	// Precision is the number of decimal places for sale totals.
	Precision int `yaml:"precision"`

	// DefaultCategory overrides the bucket name for uncategorized items.
	DefaultCategory string `yaml:"default_category"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Input: InputConfig{
			Path:       "data.json",
			BufferSize: 64 * 1024,
		},
		Progress: ProgressConfig{
			Enabled: true,
			Width:   40,
		},
		Report: ReportConfig{
			Precision: 2,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	paths := m.getConfigPaths()
	for _, path := range paths {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return nil
}

// LoadFile merges a single explicit config file over the defaults.
func (m *Manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadFile(path); err != nil {
		return err
	}
	m.paths = append(m.paths, path)
	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/salescan/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".salescan", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".salescan.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	// Merge non-zero values
	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	if src.Input.Path != "" {
		m.config.Input.Path = src.Input.Path
	}
	if src.Input.BufferSize != 0 {
		m.config.Input.BufferSize = src.Input.BufferSize
	}

	if src.Progress.Width != 0 {
		m.config.Progress.Width = src.Progress.Width
	}

	if src.Report.Precision != 0 {
		m.config.Report.Precision = src.Report.Precision
	}
	if src.Report.DefaultCategory != "" {
		m.config.Report.DefaultCategory = src.Report.DefaultCategory
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("SALESCAN_INPUT"); v != "" {
		m.config.Input.Path = v
	}

	if v := os.Getenv("SALESCAN_BUFFER_SIZE"); v != "" {
		var size int
		if _, err := fmt.Sscanf(v, "%d", &size); err == nil && size > 0 {
			m.config.Input.BufferSize = size
		}
	}

	if v := os.Getenv("SALESCAN_NO_PROGRESS"); v != "" {
		m.config.Progress.Enabled = false
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
