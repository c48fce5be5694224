package permanent

import (
	"errors"
	"fmt"

	"grimm.is/floe/internal/fwobj"
	"grimm.is/floe/internal/settings"
)

// resetOrder retires referers before referents, so no intermediate state
// dangles a reference.
var resetOrder = []fwobj.Kind{
	fwobj.KindZone,
	fwobj.KindPolicy,
	fwobj.KindAddressSet,
	fwobj.KindService,
	fwobj.KindHelper,
	fwobj.KindIcmpType,
}

// restoreOrder rebuilds referents before referers.
var restoreOrder = []fwobj.Kind{
	fwobj.KindAddressSet,
	fwobj.KindHelper,
	fwobj.KindIcmpType,
	fwobj.KindService,
	fwobj.KindPolicy,
	fwobj.KindZone,
}

// ResetToDefaults retires every custom object: edited builtins revert to
// their vendor definitions, purely custom objects are removed. The prior
// custom tier is snapshotted first; if the sweep fails midway the snapshot
// is replayed best-effort, so the registry ends either fully reset or as
// close to its prior state as the filesystem allows.
func (c *Config) ResetToDefaults() error {
	snap := c.customSnapshot()
	settingsSnap := c.settingsSnapshot()
	if err := c.resetDefaults(); err != nil {
		c.log.Error("Reset to defaults failed, restoring previous configuration", "error", err)
		c.RestoreSnapshot(snap, settingsSnap)
		return err
	}
	if c.settings != nil {
		if err := c.settings.SetDefaults(); err != nil {
			c.log.Error("Writing default settings failed", "error", err)
		}
	}
	c.countOpAll("reset")
	c.log.Audit("reset", "permanent-configuration", nil)
	return nil
}

func (c *Config) settingsSnapshot() *settings.Conf {
	if c.settings == nil {
		return nil
	}
	conf := c.settings.Conf()
	return &conf
}

func (c *Config) customSnapshot() fwobj.Snapshot {
	snap := make(fwobj.Snapshot, len(c.registries))
	for kind, r := range c.registries {
		m := make(map[string]fwobj.Object, len(r.custom))
		for name, obj := range r.custom {
			m[name] = obj.Clone()
		}
		snap[kind] = m
	}
	return snap
}

func (c *Config) resetDefaults() error {
	for _, kind := range resetOrder {
		r := c.registries[kind]
		for _, name := range r.List() {
			obj, ok := r.custom[name]
			if !ok {
				continue
			}
			var err error
			if _, both := r.builtin[name]; both {
				_, err = c.LoadDefaults(obj)
			} else {
				err = c.Remove(obj)
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("resetting %s %q: %w", kindLabel(kind), name, err)
			}
		}
	}
	return nil
}

// RestoreSnapshot replays a previously captured custom tier and settings
// state. Failures are logged, never fatal: after a botched reset a partial
// restore still beats none.
func (c *Config) RestoreSnapshot(snap fwobj.Snapshot, settingsConf *settings.Conf) {
	for _, kind := range restoreOrder {
		r := c.registries[kind]
		for name, obj := range snap[kind] {
			if _, exists := r.custom[name]; exists {
				continue
			}
			if err := r.desc.Write(obj); err != nil {
				c.log.Error("Restoring object failed", "kind", string(kind), "name", name, "error", err)
				continue
			}
			r.Add(obj)
		}
	}
	if settingsConf != nil && c.settings != nil {
		c.settings.Update(*settingsConf)
		if err := c.settings.Write(); err != nil {
			c.log.Error("Restoring settings failed", "error", err)
		}
	}
}

func (c *Config) countOpAll(op string) {
	for kind := range c.registries {
		c.countOp(kind, op)
	}
}
