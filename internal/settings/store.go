// Package settings isolates the persisted key-value store behind a small
// interface so the reasoning pipeline can be wired against an in-memory
// fake in tests.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Persisted keys. Names are stable for compatibility with existing installs.
const (
	KeyPromptOverride   = "reasoning.prompt_override"
	KeyAgentName        = "reasoning.agent_name"
	KeyProvider         = "reasoning.provider"
	KeyModel            = "reasoning.model"
	KeyEnabled          = "reasoning.enabled"
	KeyCustomBaseURL    = "reasoning.custom_base_url"
	KeyCustomAPIKey     = "reasoning.custom_api_key"
	KeyEndpointDialects = "reasoning.endpoint_dialects"
)

// Store is the read/write surface the dispatcher and its resolvers depend on.
type Store interface {
	GetString(key string) string
	SetString(key, value string) error
	GetBool(key string) bool
	SetBool(key string, value bool) error
	GetStringMap(key string) map[string]string
	SetStringMap(key string, value map[string]string) error
}

// FileStore persists settings to a config file via viper.
type FileStore struct {
	mu sync.Mutex
	v  *viper.Viper
}

// NewFileStore creates a store backed by the given config file, creating the
// file and its parent directory on first use.
func NewFileStore(path string) (*FileStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	return &FileStore{v: v}, nil
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "oratio", "settings.yaml"), nil
}

func (s *FileStore) GetString(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(key)
}

func (s *FileStore) SetString(key, value string) error {
	return s.write(key, value)
}

func (s *FileStore) GetBool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetBool(key)
}

func (s *FileStore) SetBool(key string, value bool) error {
	return s.write(key, value)
}

func (s *FileStore) GetStringMap(key string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetStringMapString(key)
}

func (s *FileStore) SetStringMap(key string, value map[string]string) error {
	return s.write(key, value)
}

func (s *FileStore) write(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	if err := s.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to persist setting %q: %w", key, err)
	}
	return nil
}

// Memory is an in-memory Store for tests.
type Memory struct {
	mu      sync.Mutex
	strings map[string]string
	bools   map[string]bool
	maps    map[string]map[string]string

	// FailWrites makes every Set call return an error, for exercising the
	// ignore-and-continue paths around preference persistence.
	FailWrites bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string]string),
		bools:   make(map[string]bool),
		maps:    make(map[string]map[string]string),
	}
}

func (m *Memory) GetString(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strings[key]
}

func (m *Memory) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("write disabled for %q", key)
	}
	m.strings[key] = value
	return nil
}

func (m *Memory) GetBool(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bools[key]
}

func (m *Memory) SetBool(key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("write disabled for %q", key)
	}
	m.bools[key] = value
	return nil
}

func (m *Memory) GetStringMap(key string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.maps[key]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (m *Memory) SetStringMap(key string, value map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("write disabled for %q", key)
	}
	cp := make(map[string]string, len(value))
	for k, v := range value {
		cp[k] = v
	}
	m.maps[key] = cp
	return nil
}
