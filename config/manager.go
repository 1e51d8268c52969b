package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Settings holds the process configuration persisted as JSON.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	GenAI    GenAISettings    `json:"genai"`
	Database DatabaseSettings `json:"database"`
	Logging  LoggingSettings  `json:"logging"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	ListenAddr string `json:"listenAddr"`
}

// MetadataSettings configures the movie metadata collaborator.
type MetadataSettings struct {
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseUrl,omitempty"`
	Language       string `json:"language,omitempty"`
	Region         string `json:"region,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// GenAISettings configures the generative-language collaborator.
type GenAISettings struct {
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseUrl,omitempty"`
	Model          string `json:"model,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// DatabaseSettings configures the local structured store.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// LoggingSettings configures rotated log output.
type LoggingSettings struct {
	Path       string `json:"path,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMb,omitempty"`
	MaxBackups int    `json:"maxBackups,omitempty"`
}

// DefaultSettings returns the settings used when no file exists yet.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			ListenAddr: ":8686",
		},
		Metadata: MetadataSettings{
			Language:       "ja-JP",
			Region:         "JP",
			TimeoutSeconds: 15,
		},
		GenAI: GenAISettings{
			Model:          "gemini-1.5-flash",
			TimeoutSeconds: 30,
		},
		Database: DatabaseSettings{
			Path: "data/cinelog.db",
		},
		Logging: LoggingSettings{
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
	}
}

// Manager loads and saves settings from a JSON file. The filesystem is
// injected so tests can run on an in-memory fs.
type Manager struct {
	path string
	fs   afero.Fs

	mu     sync.RWMutex
	cached *Settings
}

// NewManager creates a settings manager backed by the OS filesystem.
func NewManager(path string) *Manager {
	return NewManagerWithFs(path, afero.NewOsFs())
}

// NewManagerWithFs creates a settings manager on the provided filesystem.
func NewManagerWithFs(path string, fs afero.Fs) *Manager {
	return &Manager{path: path, fs: fs}
}

// Load returns the current settings, reading the file on first use and
// falling back to defaults when the file does not exist.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	if m.cached != nil {
		s := *m.cached
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil {
		return *m.cached, nil
	}

	exists, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return Settings{}, fmt.Errorf("stat settings file: %w", err)
	}
	if !exists {
		defaults := DefaultSettings()
		m.cached = &defaults
		return defaults, nil
	}

	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings file: %w", err)
	}

	m.cached = &settings
	return settings, nil
}

// Save writes settings to disk and updates the in-memory copy.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	if dir != "" && dir != "." {
		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := afero.WriteFile(m.fs, m.path, data, 0644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	m.cached = &settings
	return nil
}
