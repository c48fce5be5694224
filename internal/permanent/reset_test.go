package permanent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/floe/internal/fwobj"
	"grimm.is/floe/internal/settings"
)

func TestResetToDefaultsSweepsCustomTier(t *testing.T) {
	paths := testPaths(t)
	st := settings.New(filepath.Join(t.TempDir(), "floe.hcl"))
	conf := st.Conf()
	conf.DefaultZone = "dmz"
	st.Update(conf)
	cfg := New(paths, st, nil)

	builtin := writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)
	_, err := cfg.SetConfig(builtin, webConf("2222"))
	require.NoError(t, err)
	_, err = cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)
	_, err = cfg.Create(fwobj.KindZone, "office", fwobj.ZoneConf{Short: "Office"})
	require.NoError(t, err)

	require.NoError(t, cfg.ResetToDefaults())

	// The edited builtin reverted, purely custom objects are gone.
	got, err := cfg.Get(fwobj.KindService, "ssh")
	require.NoError(t, err)
	assert.Same(t, builtin, got)
	assert.NotContains(t, cfg.List(fwobj.KindService), "web")
	assert.Empty(t, cfg.List(fwobj.KindZone))

	// Settings are back at the defaults and persisted.
	assert.Equal(t, settings.Defaults(), st.Conf())
	assert.FileExists(t, st.Path())

	// Retired files survive as backups.
	dir := paths.Descriptor(fwobj.KindService).CustomDir
	assert.FileExists(t, filepath.Join(dir, "web.xml.old"))
	assert.FileExists(t, filepath.Join(dir, "ssh.xml.old"))
}

func TestResetToDefaultsRestoresOnFailure(t *testing.T) {
	paths := testPaths(t)
	cfg := New(paths, nil, nil)

	_, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)

	// A locked custom object with no builtin counterpart cannot be reset;
	// the sweep aborts and replays the snapshot.
	desc := paths.Descriptor(fwobj.KindService)
	stuck := fwobj.New(fwobj.KindService)
	meta := stuck.Info()
	meta.Name = "stuck"
	meta.Path, meta.Filename = desc.CustomDir, "stuck.xml"
	meta.Default = false
	require.NoError(t, stuck.SetConf(webConf("9000")))
	require.NoError(t, desc.Write(stuck))
	cfg.Add(stuck)

	before := cfg.List(fwobj.KindService)
	err = cfg.ResetToDefaults()
	assert.ErrorIs(t, err, ErrBuiltinProtected)

	// Every name is back, with its exported content intact.
	assert.Equal(t, before, cfg.List(fwobj.KindService))
	got, err := cfg.Get(fwobj.KindService, "web")
	require.NoError(t, err)
	assert.Equal(t, webConf("80"), got.Conf())
}

func TestRestoreSnapshotRewritesFiles(t *testing.T) {
	paths := testPaths(t)
	cfg := New(paths, nil, nil)

	_, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)
	snap := cfg.customSnapshot()

	require.NoError(t, cfg.ResetToDefaults())
	desc := paths.Descriptor(fwobj.KindService)
	require.NoFileExists(t, filepath.Join(desc.CustomDir, "web.xml"))

	cfg.RestoreSnapshot(snap, nil)

	assert.Contains(t, cfg.List(fwobj.KindService), "web")
	assert.FileExists(t, filepath.Join(desc.CustomDir, "web.xml"))
}

func TestUpdateSettings(t *testing.T) {
	paths := testPaths(t)
	path := filepath.Join(t.TempDir(), "floe.hcl")
	st := settings.New(path)
	cfg := New(paths, st, nil)

	require.NoError(t, os.WriteFile(path, []byte("default_zone = \"internal\"\n"), 0o644))
	require.NoError(t, cfg.UpdateSettings())
	assert.Equal(t, "internal", st.Conf().DefaultZone)

	// Deleting the file falls back to defaults.
	require.NoError(t, os.Remove(path))
	require.NoError(t, cfg.UpdateSettings())
	assert.Equal(t, settings.Defaults(), st.Conf())
}
