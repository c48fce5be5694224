// Package settings manages the global daemon settings file, an HCL document
// living next to the custom configuration tree. The resource mirrors the
// file: reading replaces the in-memory state, clearing falls back to
// compiled-in defaults.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"grimm.is/floe/internal/metrics"
)

// Conf is the decoded settings document.
type Conf struct {
	DefaultZone      string `hcl:"default_zone,optional"`
	CleanupOnExit    bool   `hcl:"cleanup_on_exit,optional"`
	Lockdown         bool   `hcl:"lockdown,optional"`
	LogDenied        string `hcl:"log_denied,optional"`
	FlushAllOnReload bool   `hcl:"flush_all_on_reload,optional"`
	ReloadPolicy     string `hcl:"reload_policy,optional"`
}

// Defaults returns the compiled-in settings used when no file exists.
func Defaults() Conf {
	return Conf{
		DefaultZone:      "public",
		CleanupOnExit:    true,
		Lockdown:         false,
		LogDenied:        "off",
		FlushAllOnReload: true,
		ReloadPolicy:     "INPUT",
	}
}

// Settings is the live resource bound to one settings file.
type Settings struct {
	path string
	conf Conf
}

// New binds a resource to a path without touching the filesystem. The
// in-memory state starts at the defaults.
func New(path string) *Settings {
	return &Settings{path: path, conf: Defaults()}
}

// Path returns the bound file path.
func (s *Settings) Path() string { return s.path }

// Conf returns a copy of the current settings.
func (s *Settings) Conf() Conf { return s.conf }

// Clear resets the in-memory state to the defaults without writing.
func (s *Settings) Clear() {
	s.conf = Defaults()
}

// SetDefaults resets the state to the defaults and persists them.
func (s *Settings) SetDefaults() error {
	s.conf = Defaults()
	return s.Write()
}

// Update replaces the in-memory state without writing.
func (s *Settings) Update(conf Conf) {
	s.conf = conf
}

// Read loads the settings file, replacing the in-memory state. Unset
// attributes keep their default values.
func (s *Settings) Read() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		metrics.Get().SettingsReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("reading settings file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filepath.Base(s.path))
	if diags.HasErrors() {
		metrics.Get().SettingsReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("parsing settings file: %s", diags.Error())
	}

	conf := Defaults()
	if diags := gohcl.DecodeBody(file.Body, nil, &conf); diags.HasErrors() {
		metrics.Get().SettingsReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("decoding settings file: %s", diags.Error())
	}

	s.conf = conf
	metrics.Get().SettingsReloads.WithLabelValues("ok").Inc()
	return nil
}

// Write serializes the current state back to the bound path.
func (s *Settings) Write() error {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(&s.conf, f.Body())

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
