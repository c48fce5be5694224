package permanent

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sort"

	"grimm.is/floe/internal/fwobj"
)

// Action describes the externally visible effect of a registry change, as
// handed to the notification layer.
type Action string

const (
	ActionNone   Action = ""
	ActionNew    Action = "new"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// Registry is the two-tier name-to-object map for one kind. Custom entries
// shadow builtin entries sharing the same name.
type Registry struct {
	desc    Descriptor
	builtin map[string]fwobj.Object
	custom  map[string]fwobj.Object
}

func newRegistry(desc Descriptor) *Registry {
	return &Registry{
		desc:    desc,
		builtin: make(map[string]fwobj.Object),
		custom:  make(map[string]fwobj.Object),
	}
}

// Kind returns the kind this registry manages.
func (r *Registry) Kind() fwobj.Kind { return r.desc.Kind }

// List returns the sorted union of both tiers' names.
func (r *Registry) List() []string {
	seen := make(map[string]struct{}, len(r.builtin)+len(r.custom))
	for name := range r.builtin {
		seen[name] = struct{}{}
	}
	for name := range r.custom {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get resolves a name to the custom entry if present, else the builtin one.
func (r *Registry) Get(name string) (fwobj.Object, error) {
	if obj, ok := r.custom[name]; ok {
		return obj, nil
	}
	if obj, ok := r.builtin[name]; ok {
		return obj, nil
	}
	return nil, notFound(r.desc.Kind, name)
}

// Add stores obj into the tier matching its Builtin flag, replacing any
// prior entry of that tier.
func (r *Registry) Add(obj fwobj.Object) {
	if obj.Info().Builtin {
		r.builtin[obj.Info().Name] = obj
	} else {
		r.custom[obj.Info().Name] = obj
	}
}

// Forget unconditionally drops name from both tiers. It is used when a file
// event changes an object's logical identity (a hierarchical rename), where
// neither tier's entry can be trusted anymore.
func (r *Registry) Forget(name string) {
	delete(r.builtin, name)
	delete(r.custom, name)
}

// HasName reports whether name exists in either tier.
func (r *Registry) HasName(name string) bool {
	_, inCustom := r.custom[name]
	_, inBuiltin := r.builtin[name]
	return inCustom || inBuiltin
}

// checkMutable gates remove and rename: only custom-tier objects whose
// Default flag is still set may be destroyed.
func (r *Registry) checkMutable(obj fwobj.Object) error {
	if obj.Info().Builtin || !obj.Info().Default {
		return fmt.Errorf("%s %q: %w", kindLabel(r.desc.Kind), obj.Info().Name, ErrBuiltinProtected)
	}
	return nil
}

// removeCustom retires a custom entry: the backing file is backed up and the
// entry dropped. The object's recorded path must lie under the kind's custom
// root; anything else means the registry is corrupt and nothing is touched.
func (r *Registry) removeCustom(obj fwobj.Object) error {
	meta := obj.Info()
	if _, ok := r.custom[meta.Name]; !ok {
		return notFound(r.desc.Kind, meta.Name)
	}
	if !r.desc.inCustomDir(meta.Path) {
		return fmt.Errorf("%s %q: path %q not under %q: %w",
			kindLabel(r.desc.Kind), meta.Name, meta.Path, r.desc.CustomDir, ErrInvalidDirectory)
	}

	backupAndRemove(filepath.Join(meta.Path, meta.Filename))
	delete(r.custom, meta.Name)
	return nil
}

// reconcileRemoved applies a file-deletion event to the registry. It is pure
// over the in-memory maps; the caller has already established that the file
// is gone. Deleting a custom file unshadows any builtin of the same name;
// deleting a shadowed builtin changes nothing visible.
func (r *Registry) reconcileRemoved(dir, filename string, custom bool) (Action, fwobj.Object) {
	if custom {
		for name, obj := range r.custom {
			if obj.Info().Filename != filename || obj.Info().Path != dir {
				continue
			}
			delete(r.custom, name)
			if builtin, ok := r.builtin[name]; ok {
				return ActionUpdate, builtin
			}
			return ActionRemove, obj
		}
	} else {
		for name, obj := range r.builtin {
			if obj.Info().Filename != filename || obj.Info().Path != dir {
				continue
			}
			delete(r.builtin, name)
			if _, shadowed := r.custom[name]; shadowed {
				return ActionNone, nil
			}
			return ActionRemove, obj
		}
	}

	// Stale or duplicate event for an object never registered.
	return ActionNone, nil
}

// reconcileLoaded applies a successfully re-read file to the registry. The
// Default flag of a replaced custom entry is preserved: it records
// provenance, not content. A builtin reload behind a custom shadow updates
// the hidden tier without any visible change.
func (r *Registry) reconcileLoaded(obj fwobj.Object, custom bool) (Action, fwobj.Object) {
	name := obj.Info().Name
	_, inCustom := r.custom[name]
	_, inBuiltin := r.builtin[name]

	if !inCustom && !inBuiltin {
		r.Add(obj)
		return ActionNew, obj
	}

	if custom {
		if prior, ok := r.custom[name]; ok {
			obj.Info().Default = prior.Info().Default
		}
		r.custom[name] = obj
		return ActionUpdate, obj
	}

	r.builtin[name] = obj
	if inCustom {
		return ActionNone, nil
	}
	return ActionUpdate, obj
}

// objectsEqual treats two objects as the same definition when they are one
// instance or export identical payloads.
func objectsEqual(a, b fwobj.Object) bool {
	if a == b {
		return true
	}
	return reflect.DeepEqual(a.Conf(), b.Conf())
}
