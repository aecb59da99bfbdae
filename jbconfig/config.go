// Package jbconfig manages the persisted jailbreak configuration: mode
// (rootless/rootful), device identity, firmware version, and whether to
// present as Sileo or Cydia to remote repositories.
//
// Grounded on original_source/src/core/jailbreak_config.py.
package jbconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Mode selects which jailbreak family this host presents as.
type Mode string

const (
	Rootless Mode = "rootless"
	Rootful  Mode = "rootful"
)

// Config is the persisted jailbreak configuration record.
type Config struct {
	Mode            Mode   `json:"mode"`
	DeviceModel     string `json:"device_model"`
	FirmwareVersion string `json:"firmware_version"`
	UniqueID        string `json:"unique_id"`
	UseSileoHeaders bool   `json:"use_sileo_headers"`
}

// Default returns the configuration used when no persisted file exists
// yet, matching the Python dataclass defaults.
func Default() Config {
	return Config{
		Mode:            Rootless,
		DeviceModel:     "iPhone14,2",
		FirmwareVersion: "16.0",
		UniqueID:        "SimpleTweakEditor",
		UseSileoHeaders: true,
	}
}

// PathPrefix returns the filesystem prefix a Rootless jailbreak remaps
// installed paths under; Rootful installs at the true root.
func (c Config) PathPrefix() string {
	if c.Mode == Rootless {
		return "/var/jb"
	}
	return ""
}

// Manager loads, mutates and persists a Config to disk as JSON, matching
// JailbreakConfigManager's load/save-on-every-setter behavior.
type Manager struct {
	path   string
	config Config
}

// NewManager loads appDir/jailbreak_config.json if present, or returns the
// default configuration otherwise. A corrupt or unreadable file is treated
// the same as a missing one rather than returned as an error, matching the
// original's "log and fall back to defaults" behavior.
func NewManager(appDir string) *Manager {
	m := &Manager{path: filepath.Join(appDir, "jailbreak_config.json"), config: Default()}
	data, err := os.ReadFile(m.path)
	if err == nil {
		var c Config
		if jsonErr := json.Unmarshal(data, &c); jsonErr == nil {
			m.config = c
		}
	}
	return m
}

// Config returns the current configuration.
func (m *Manager) Config() Config { return m.config }

// Save persists the current configuration.
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

// SetMode updates the jailbreak mode and saves.
func (m *Manager) SetMode(mode Mode) error {
	m.config.Mode = mode
	return m.Save()
}

// SetDeviceInfo updates device model and firmware and saves.
func (m *Manager) SetDeviceInfo(model, firmware string) error {
	m.config.DeviceModel = model
	m.config.FirmwareVersion = firmware
	return m.Save()
}

// ToggleSileoHeaders switches between the Sileo and Cydia header profiles
// and saves.
func (m *Manager) ToggleSileoHeaders(enabled bool) error {
	m.config.UseSileoHeaders = enabled
	return m.Save()
}
