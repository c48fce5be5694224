package permanent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"grimm.is/floe/internal/fwobj"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/metrics"
	"grimm.is/floe/internal/settings"
)

// AccessPolicy is the lockdown/authorization gate. The registry only
// forwards to it; evaluation happens elsewhere.
type AccessPolicy interface {
	QueryLockdown() bool
	AccessCheck(key, value string) bool
}

// Config is the aggregate of the six kind registries plus the global daemon
// settings resource.
type Config struct {
	paths      Paths
	registries map[fwobj.Kind]*Registry
	settings   *settings.Settings
	access     AccessPolicy
	log        *logging.Logger
}

// New builds an empty registry set over the given roots. The settings
// resource and access policy may be nil in tools that only inspect objects.
func New(paths Paths, st *settings.Settings, access AccessPolicy) *Config {
	c := &Config{
		paths:      paths,
		registries: make(map[fwobj.Kind]*Registry),
		settings:   st,
		access:     access,
		log:        logging.WithComponent("permanent"),
	}
	for _, kind := range fwobj.CheckOrder() {
		c.registries[kind] = newRegistry(paths.Descriptor(kind))
	}
	return c
}

// Registry returns the per-kind registry, or nil for an unknown kind.
func (c *Config) Registry(kind fwobj.Kind) *Registry {
	return c.registries[kind]
}

// Settings returns the global settings resource.
func (c *Config) Settings() *settings.Settings { return c.settings }

// LockdownEnabled forwards to the access policy.
func (c *Config) LockdownEnabled() bool {
	if c.access == nil {
		return false
	}
	return c.access.QueryLockdown()
}

// AccessCheck forwards to the access policy.
func (c *Config) AccessCheck(key, value string) bool {
	if c.access == nil {
		return true
	}
	return c.access.AccessCheck(key, value)
}

// List returns the merged sorted names for one kind.
func (c *Config) List(kind fwobj.Kind) []string {
	return c.registries[kind].List()
}

// Get resolves a name for one kind, custom tier first.
func (c *Config) Get(kind fwobj.Kind, name string) (fwobj.Object, error) {
	return c.registries[kind].Get(name)
}

// Add registers an already-built object into the tier matching its Builtin
// flag. It is used by the loader and by reconciliation; API callers go
// through Create and SetConfig.
func (c *Config) Add(obj fwobj.Object) {
	c.registries[obj.Kind()].Add(obj)
}

// GetAll returns the merged snapshot across all kinds: for every name the
// visible object, custom shadowing builtin.
func (c *Config) GetAll() fwobj.Snapshot {
	all := make(fwobj.Snapshot, len(c.registries))
	for kind, r := range c.registries {
		m := make(map[string]fwobj.Object)
		for _, name := range r.List() {
			obj, err := r.Get(name)
			if err != nil {
				continue
			}
			m[name] = obj
		}
		all[kind] = m
	}
	return all
}

// FullCheck validates every registered object plus the supplied uncommitted
// candidates against the merged cross-kind namespace. Candidates overlay
// registered objects of the same name, so an edit is checked as if already
// applied. Kinds are visited in reference-dependency order. The first
// failure aborts the whole check; nothing is registered.
func (c *Config) FullCheck(extra map[fwobj.Kind][]fwobj.Object) error {
	all := c.GetAll()
	for kind, objs := range extra {
		for _, obj := range objs {
			all[kind][obj.Info().Name] = obj
		}
	}

	for _, kind := range fwobj.CheckOrder() {
		for _, obj := range all[kind] {
			if err := obj.Check(all); err != nil {
				metrics.Get().ValidationFailures.WithLabelValues(string(kind)).Inc()
				return err
			}
		}
	}
	return nil
}

// Create builds a new custom object from a payload, validates it against
// the full namespace, persists it, and commits it. The name must be free in
// both tiers: shadowing a builtin is only possible by editing it, never by
// creating over it.
func (c *Config) Create(kind fwobj.Kind, name string, conf any) (fwobj.Object, error) {
	r := c.registries[kind]
	if r.HasName(name) {
		return nil, fmt.Errorf("%s %q: %w", kindLabel(kind), name, ErrNameConflict)
	}

	obj := fwobj.New(kind)
	meta := obj.Info()
	meta.Name = name
	meta.Path, meta.Filename = r.desc.customLocation(name)
	meta.Builtin = false
	meta.Default = true

	if err := obj.SetConf(conf); err != nil {
		return nil, err
	}
	if err := c.FullCheck(map[fwobj.Kind][]fwobj.Object{kind: {obj}}); err != nil {
		return nil, err
	}
	if err := r.desc.Write(obj); err != nil {
		return nil, fmt.Errorf("writing %s %q: %w", kindLabel(kind), name, err)
	}
	r.Add(obj)

	c.countOp(kind, "create")
	c.log.Audit("create", string(kind)+":"+name, nil)
	return obj, nil
}

// SetConfig replaces an object's payload. Builtin objects are never touched
// in place: the edit materializes a custom-tier copy under the custom root,
// which from then on shadows the vendor definition. The copy loses its
// Default flag, so it can be reverted via LoadDefaults but not removed.
func (c *Config) SetConfig(obj fwobj.Object, conf any) (fwobj.Object, error) {
	kind := obj.Kind()
	r := c.registries[kind]

	x := obj.Clone()
	meta := x.Info()
	if obj.Info().Builtin {
		meta.Path, meta.Filename = r.desc.customLocation(meta.Name)
		meta.Builtin = false
		if obj.Info().Path != meta.Path {
			meta.Default = false
		}
	}

	if err := x.SetConf(conf); err != nil {
		return nil, err
	}
	if err := c.FullCheck(map[fwobj.Kind][]fwobj.Object{kind: {x}}); err != nil {
		return nil, err
	}
	if err := r.desc.Write(x); err != nil {
		return nil, fmt.Errorf("writing %s %q: %w", kindLabel(kind), meta.Name, err)
	}
	r.Add(x)

	c.countOp(kind, "update")
	c.log.Audit("update", string(kind)+":"+meta.Name, nil)
	return x, nil
}

// Remove deletes a custom object: its file is backed up and the entry
// dropped. Builtin and locked objects are refused.
func (c *Config) Remove(obj fwobj.Object) error {
	r := c.registries[obj.Kind()]
	if err := r.checkMutable(obj); err != nil {
		return err
	}
	if err := r.removeCustom(obj); err != nil {
		return err
	}
	c.countOp(obj.Kind(), "remove")
	c.log.Audit("remove", string(obj.Kind())+":"+obj.Info().Name, nil)
	return nil
}

// Rename gives a custom object a new name. Most kinds copy first and remove
// the old entry only once the copy exists. Kinds with RenameSwaps semantics
// remove first (their file locations collide otherwise) and restore the
// original if recreating under the new name fails.
func (c *Config) Rename(obj fwobj.Object, newName string) (fwobj.Object, error) {
	kind := obj.Kind()
	r := c.registries[kind]
	if err := r.checkMutable(obj); err != nil {
		return nil, err
	}

	if r.desc.RenameSwaps {
		conf := obj.Conf()
		oldName := obj.Info().Name
		if err := r.removeCustom(obj); err != nil {
			return nil, err
		}
		renamed, err := c.Create(kind, newName, conf)
		if err != nil {
			if _, restoreErr := c.Create(kind, oldName, conf); restoreErr != nil {
				c.log.Error("Restoring object after failed rename failed",
					"kind", string(kind), "name", oldName, "error", restoreErr)
			}
			return nil, err
		}
		return renamed, nil
	}

	renamed, err := c.Create(kind, newName, obj.Conf())
	if err != nil {
		return nil, err
	}
	if err := r.removeCustom(obj); err != nil {
		return nil, err
	}
	return renamed, nil
}

// LoadDefaults reverts an edited builtin to its vendor definition: the
// custom override is retired (with backup) and the builtin object becomes
// visible again. It fails with ErrNoDefaults unless the caller's object is
// the registry's current custom entry and a builtin counterpart exists.
func (c *Config) LoadDefaults(obj fwobj.Object) (fwobj.Object, error) {
	kind := obj.Kind()
	r := c.registries[kind]
	name := obj.Info().Name

	current, ok := r.custom[name]
	if !ok {
		return nil, fmt.Errorf("%s %q has no custom override: %w", kindLabel(kind), name, ErrNoDefaults)
	}
	if !objectsEqual(current, obj) {
		return nil, fmt.Errorf("%s %q differs from registered object: %w", kindLabel(kind), name, ErrNoDefaults)
	}
	builtin, ok := r.builtin[name]
	if !ok {
		return nil, fmt.Errorf("%s %q is not builtin: %w", kindLabel(kind), name, ErrNoDefaults)
	}

	if err := r.removeCustom(obj); err != nil {
		return nil, err
	}
	c.countOp(kind, "load_defaults")
	return builtin, nil
}

// UpdateFromPath reconciles the registry with one reported filesystem
// change. The path's root decides kind and tier; whether the file still
// exists decides between the removal and reload tables. Malformed files are
// logged and ignored so external edits can never destabilize the registry.
func (c *Config) UpdateFromPath(path string) (Action, fwobj.Object) {
	kind, custom, ok := c.classify(path)
	if !ok {
		c.log.Debug("Ignoring path outside config roots", "path", path)
		return ActionNone, nil
	}
	r := c.registries[kind]
	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			c.log.Error("Stat of changed file failed", "path", path, "error", err)
			return ActionNone, nil
		}
		action, obj := r.reconcileRemoved(dir, filename, custom)
		c.countReconcile(kind, action)
		return action, obj
	}

	c.log.Debug("Loading file", "kind", string(kind), "path", path)
	obj, err := r.desc.Read(filename, dir)
	if err != nil {
		c.log.Error("Failed to load file", "path", path, "error", err)
		return ActionNone, nil
	}

	meta := obj.Info()
	meta.Builtin = !custom
	if custom && dir != r.desc.CustomDir {
		// Below the custom root: the logical name combines subdirectory and
		// stem.
		meta.Name = filepath.Base(dir) + "/" + strings.TrimSuffix(filename, fwobj.Extension)
	}

	action, out := r.reconcileLoaded(obj, custom)
	c.countReconcile(kind, action)
	return action, out
}

// classify maps a path to its kind and tier. Custom roots are checked
// first; flat kinds require the file directly in the root.
func (c *Config) classify(path string) (fwobj.Kind, bool, bool) {
	dir := filepath.Dir(path)
	for kind, r := range c.registries {
		if r.desc.inCustomDir(dir) {
			return kind, true, true
		}
	}
	for kind, r := range c.registries {
		if dir == r.desc.BuiltinDir {
			return kind, false, true
		}
	}
	return "", false, false
}

// LoadAll bulk-loads every kind: the builtin root first, then the custom
// root so overrides shadow vendor entries. Unreadable files are logged and
// skipped.
func (c *Config) LoadAll() {
	for _, kind := range fwobj.CheckOrder() {
		r := c.registries[kind]
		c.loadDir(r, r.desc.BuiltinDir, false)
		c.loadDir(r, r.desc.CustomDir, true)
	}
}

func (c *Config) loadDir(r *Registry, dir string, custom bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Error("Reading config directory failed", "dir", dir, "error", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if custom && r.desc.Hierarchical {
				c.loadSubdir(r, filepath.Join(dir, entry.Name()), entry.Name())
			}
			continue
		}
		if !strings.HasSuffix(entry.Name(), fwobj.Extension) {
			continue
		}
		obj, err := r.desc.Read(entry.Name(), dir)
		if err != nil {
			c.log.Error("Failed to load file", "dir", dir, "file", entry.Name(), "error", err)
			continue
		}
		obj.Info().Builtin = !custom
		r.Add(obj)
	}
	count := len(r.custom)
	if !custom {
		count = len(r.builtin)
	}
	tier := "custom"
	if !custom {
		tier = "builtin"
	}
	metrics.Get().ObjectsLoaded.WithLabelValues(string(r.desc.Kind), tier).Set(float64(count))
}

func (c *Config) loadSubdir(r *Registry, dir, sub string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.log.Error("Reading config directory failed", "dir", dir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fwobj.Extension) {
			continue
		}
		obj, err := r.desc.Read(entry.Name(), dir)
		if err != nil {
			c.log.Error("Failed to load file", "dir", dir, "file", entry.Name(), "error", err)
			continue
		}
		obj.Info().Name = sub + "/" + strings.TrimSuffix(entry.Name(), fwobj.Extension)
		obj.Info().Builtin = false
		r.Add(obj)
	}
}

// UpdateSettings re-reads the daemon settings file, or clears the resource
// when the file is gone.
func (c *Config) UpdateSettings() error {
	if c.settings == nil {
		return nil
	}
	if _, err := os.Stat(c.settings.Path()); err != nil {
		if os.IsNotExist(err) {
			c.settings.Clear()
			return nil
		}
		return err
	}
	return c.settings.Read()
}

// Cleanup drops every tier of every kind and resets the settings resource.
func (c *Config) Cleanup() {
	for kind := range c.registries {
		c.registries[kind] = newRegistry(c.paths.Descriptor(kind))
	}
	if c.settings != nil {
		c.settings.Clear()
	}
}

func (c *Config) countOp(kind fwobj.Kind, op string) {
	metrics.Get().OperationsTotal.WithLabelValues(string(kind), op).Inc()
}

func (c *Config) countReconcile(kind fwobj.Kind, action Action) {
	if action == ActionNone {
		return
	}
	metrics.Get().ReconcileActions.WithLabelValues(string(kind), string(action)).Inc()
}
