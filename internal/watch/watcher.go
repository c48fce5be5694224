// Package watch feeds external filesystem edits into the permanent
// configuration registry. Every config root is watched with fsnotify; each
// create, write, rename or remove event is handed to the registry's
// reconciliation entry point and the resulting action published on the
// event hub.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/fwobj"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/permanent"
)

var actionEvents = map[permanent.Action]events.EventType{
	permanent.ActionNew:    events.EventConfigCreated,
	permanent.ActionUpdate: events.EventConfigUpdated,
	permanent.ActionRemove: events.EventConfigRemoved,
}

// Watcher reconciles the registry with external edits to the config trees.
type Watcher struct {
	cfg     *permanent.Config
	hub     *events.Hub
	watcher *fsnotify.Watcher
	log     *logging.Logger
}

// New builds a watcher over every directory of the given paths that exists.
// Custom roots of hierarchical kinds also get their subdirectories watched.
func New(cfg *permanent.Config, paths permanent.Paths, hub *events.Hub) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:     cfg,
		hub:     hub,
		watcher: fsw,
		log:     logging.WithComponent("watch"),
	}

	for _, kind := range fwobj.CheckOrder() {
		desc := paths.Descriptor(kind)
		w.addDir(desc.BuiltinDir)
		w.addDir(desc.CustomDir)
		if desc.Hierarchical {
			w.addSubdirs(desc.CustomDir)
		}
	}
	return w, nil
}

func (w *Watcher) addDir(dir string) {
	if _, err := os.Stat(dir); err != nil {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.log.Error("Watching directory failed", "dir", dir, "error", err)
	}
}

func (w *Watcher) addSubdirs(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addDir(filepath.Join(dir, entry.Name()))
		}
	}
}

// Run processes events until the context is cancelled or the underlying
// watcher closes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("Watcher error", "error", err)
			w.hub.EmitWatchError("", err)
		}
	}
}

// Close stops the watcher. Run returns after the event channel drains.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	// A new subdirectory under a hierarchical custom root must itself be
	// watched.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addDir(ev.Name)
			return
		}
	}
	if skipPath(ev.Name) {
		return
	}

	action, obj := w.cfg.UpdateFromPath(ev.Name)
	if action == permanent.ActionNone || obj == nil {
		return
	}

	meta := obj.Info()
	w.log.Info("Reconciled external change",
		"kind", string(obj.Kind()), "name", meta.Name, "action", string(action))
	w.hub.EmitConfigChange(actionEvents[action], "watch", events.ConfigObjectData{
		Kind:    string(obj.Kind()),
		Name:    meta.Name,
		Builtin: meta.Builtin,
		Path:    meta.Path,
		Origin:  "file",
	})
}

// skipPath filters non-object files: retired backups, editor temp files and
// anything without the object extension.
func skipPath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, ".old") || strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, "~") {
		return true
	}
	return !strings.HasSuffix(base, fwobj.Extension)
}
