package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appDirName      = "shift-calendar"
	settingsFile    = "settings.yaml"
	credentialsFile = "google.token"
)

// configDir returns the XDG config directory for the application.
func configDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appDirName), nil
}

// dataDir returns the XDG data directory for the application.
func dataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appDirName), nil
}

// FileSettings is a Settings implementation backed by a YAML file in the XDG
// config directory. Every Set rewrites the whole file; the engine's setting
// surface is a handful of keys, so there is no point in anything smarter.
type FileSettings struct {
	path string
}

// NewFileSettings creates a FileSettings using the default XDG location.
func NewFileSettings() (*FileSettings, error) {
	dir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return &FileSettings{path: filepath.Join(dir, settingsFile)}, nil
}

// NewFileSettingsAt creates a FileSettings reading and writing the given path.
func NewFileSettingsAt(path string) *FileSettings {
	return &FileSettings{path: path}
}

func (s *FileSettings) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return values, nil
}

// Get returns the stored value for key, or the empty string when unset.
func (s *FileSettings) Get(key string) (string, error) {
	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set stores value under key, creating the settings file if needed.
func (s *FileSettings) Set(key, value string) error {
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// FileCredentialStore is a CredentialStore implementation keeping the refresh
// credential in a file with 0600 permissions in the XDG data directory.
type FileCredentialStore struct {
	path string
}

// NewFileCredentialStore creates a FileCredentialStore using the default XDG
// location.
func NewFileCredentialStore() (*FileCredentialStore, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	return &FileCredentialStore{path: filepath.Join(dir, credentialsFile)}, nil
}

// NewFileCredentialStoreAt creates a FileCredentialStore at the given path.
func NewFileCredentialStoreAt(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Load returns the stored refresh token, or the empty string when none exists.
func (c *FileCredentialStore) Load() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read credential: %w", err)
	}
	return string(data), nil
}

// Save writes the refresh token with owner-only permissions.
func (c *FileCredentialStore) Save(refreshToken string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(refreshToken), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Clear removes the stored refresh token. Clearing an absent credential is
// not an error.
func (c *FileCredentialStore) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
