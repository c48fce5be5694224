package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/fwobj"
	"grimm.is/floe/internal/permanent"
	"grimm.is/floe/internal/testutil"
)

func TestSkipPath(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/etc/floe/services/web.xml", false},
		{"/etc/floe/services/web.xml.old", true},
		{"/etc/floe/services/.web.xml.swp", true},
		{"/etc/floe/services/web.xml~", true},
		{"/etc/floe/services/web.tmp", true},
		{"/etc/floe/services/README", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.skip, skipPath(tt.path), tt.path)
	}
}

func newTestSetup(t *testing.T) (*permanent.Config, permanent.Paths) {
	t.Helper()
	libDir, etcDir := testutil.ConfigTree(t)
	paths := permanent.Paths{LibDir: libDir, EtcDir: etcDir}
	return permanent.New(paths, nil, nil), paths
}

func TestHandleReconcilesCreatedFile(t *testing.T) {
	cfg, paths := newTestSetup(t)
	hub := events.NewHub()
	ch := hub.Subscribe(10, events.EventConfigCreated)

	w, err := New(cfg, paths, hub)
	require.NoError(t, err)
	defer w.Close()

	path := testutil.WriteObjectFile(t, paths.EtcDir, "services", "web",
		`<service><short>Web</short><port port="80" protocol="tcp"/></service>`)

	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Create})

	obj, err := cfg.Get(fwobj.KindService, "web")
	require.NoError(t, err)
	assert.False(t, obj.Info().Builtin)

	select {
	case e := <-ch:
		data := e.Data.(events.ConfigObjectData)
		assert.Equal(t, "web", data.Name)
		assert.Equal(t, "file", data.Origin)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no event published")
	}
}

func TestHandleIgnoresBackupFiles(t *testing.T) {
	cfg, paths := newTestSetup(t)
	hub := events.NewHub()

	w, err := New(cfg, paths, hub)
	require.NoError(t, err)
	defer w.Close()

	desc := paths.Descriptor(fwobj.KindService)
	path := filepath.Join(desc.CustomDir, "web.xml.old")
	require.NoError(t, os.WriteFile(path, []byte("<service/>"), 0o644))

	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Create})

	_, err = cfg.Get(fwobj.KindService, "web")
	assert.Error(t, err)
}
