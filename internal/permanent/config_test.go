package permanent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/floe/internal/fwobj"
)

func newTestConfig(t *testing.T) (*Config, Paths) {
	t.Helper()
	paths := testPaths(t)
	return New(paths, nil, nil), paths
}

// writeBuiltin drops a vendor object file and loads it into the registry.
func writeBuiltin(t *testing.T, cfg *Config, paths Paths, kind fwobj.Kind, name, body string) fwobj.Object {
	t.Helper()
	desc := paths.Descriptor(kind)
	require.NoError(t, os.WriteFile(filepath.Join(desc.BuiltinDir, name+".xml"), []byte(body), 0o644))
	obj, err := desc.Read(name+".xml", desc.BuiltinDir)
	require.NoError(t, err)
	obj.Info().Builtin = true
	cfg.Add(obj)
	return obj
}

func webConf(port string) fwobj.ServiceConf {
	return fwobj.ServiceConf{
		Short: "Web",
		Ports: []fwobj.Port{{Port: port, Protocol: "tcp"}},
	}
}

func TestCreateRegistersAndPersists(t *testing.T) {
	cfg, paths := newTestConfig(t)

	obj, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)

	meta := obj.Info()
	assert.False(t, meta.Builtin)
	assert.True(t, meta.Default)
	assert.FileExists(t, filepath.Join(paths.Descriptor(fwobj.KindService).CustomDir, "web.xml"))
	assert.Contains(t, cfg.List(fwobj.KindService), "web")
}

func TestCreateNameConflictWritesNothing(t *testing.T) {
	cfg, paths := newTestConfig(t)
	writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)

	_, err := cfg.Create(fwobj.KindService, "ssh", webConf("22"))
	assert.ErrorIs(t, err, ErrNameConflict)
	assert.NoFileExists(t, filepath.Join(paths.Descriptor(fwobj.KindService).CustomDir, "ssh.xml"))
}

func TestCreateInvalidConfWritesNothing(t *testing.T) {
	cfg, paths := newTestConfig(t)

	conf := webConf("80")
	conf.Includes = []fwobj.Include{{Service: "no-such-service"}}
	_, err := cfg.Create(fwobj.KindService, "web", conf)
	require.Error(t, err)

	assert.NoFileExists(t, filepath.Join(paths.Descriptor(fwobj.KindService).CustomDir, "web.xml"))
	assert.NotContains(t, cfg.List(fwobj.KindService), "web")
}

func TestSetConfigMaterializesBuiltinCopy(t *testing.T) {
	cfg, paths := newTestConfig(t)
	builtin := writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)

	conf := builtin.Conf().(fwobj.ServiceConf)
	conf.Ports = append(conf.Ports, fwobj.Port{Port: "2222", Protocol: "tcp"})
	edited, err := cfg.SetConfig(builtin, conf)
	require.NoError(t, err)

	meta := edited.Info()
	assert.False(t, meta.Builtin)
	assert.False(t, meta.Default, "a shadow copy must not be removable")
	assert.Equal(t, paths.Descriptor(fwobj.KindService).CustomDir, meta.Path)
	assert.FileExists(t, filepath.Join(meta.Path, meta.Filename))

	// Lookup now resolves to the copy; the builtin survives underneath.
	got, err := cfg.Get(fwobj.KindService, "ssh")
	require.NoError(t, err)
	assert.Same(t, edited, got)
	assert.Same(t, builtin, cfg.Registry(fwobj.KindService).builtin["ssh"])
}

func TestSetConfigCustomKeepsDefaultFlag(t *testing.T) {
	cfg, _ := newTestConfig(t)
	obj, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)

	edited, err := cfg.SetConfig(obj, webConf("8080"))
	require.NoError(t, err)
	assert.True(t, edited.Info().Default)
	assert.False(t, edited.Info().Builtin)
}

func TestRemoveBuiltinProtected(t *testing.T) {
	cfg, paths := newTestConfig(t)
	builtin := writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)

	before := cfg.List(fwobj.KindService)
	assert.ErrorIs(t, cfg.Remove(builtin), ErrBuiltinProtected)
	assert.Equal(t, before, cfg.List(fwobj.KindService))
}

func TestRemoveLockedShadowCopy(t *testing.T) {
	cfg, paths := newTestConfig(t)
	builtin := writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)

	edited, err := cfg.SetConfig(builtin, builtin.Conf())
	require.NoError(t, err)

	assert.ErrorIs(t, cfg.Remove(edited), ErrBuiltinProtected)
}

func TestRenameCopiesThenRemoves(t *testing.T) {
	cfg, paths := newTestConfig(t)
	obj, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)

	renamed, err := cfg.Rename(obj, "www")
	require.NoError(t, err)

	assert.Equal(t, "www", renamed.Info().Name)
	assert.Equal(t, obj.Conf(), renamed.Conf())

	names := cfg.List(fwobj.KindService)
	assert.Contains(t, names, "www")
	assert.NotContains(t, names, "web")

	dir := paths.Descriptor(fwobj.KindService).CustomDir
	assert.FileExists(t, filepath.Join(dir, "www.xml"))
	assert.NoFileExists(t, filepath.Join(dir, "web.xml"))
	assert.FileExists(t, filepath.Join(dir, "web.xml.old"))
}

func TestRenameZoneSwapRecoversOnConflict(t *testing.T) {
	cfg, _ := newTestConfig(t)
	_, err := cfg.Create(fwobj.KindZone, "office", fwobj.ZoneConf{Short: "Office"})
	require.NoError(t, err)
	obj, err := cfg.Create(fwobj.KindZone, "lab", fwobj.ZoneConf{Short: "Lab"})
	require.NoError(t, err)

	// Renaming onto a taken name fails and the original comes back.
	_, err = cfg.Rename(obj, "office")
	assert.ErrorIs(t, err, ErrNameConflict)

	restored, err := cfg.Get(fwobj.KindZone, "lab")
	require.NoError(t, err)
	assert.Equal(t, obj.Conf(), restored.Conf())
}

func TestRenameBuiltinRefused(t *testing.T) {
	cfg, paths := newTestConfig(t)
	builtin := writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)

	_, err := cfg.Rename(builtin, "ssh2")
	assert.ErrorIs(t, err, ErrBuiltinProtected)
}

func TestLoadDefaultsRevertsEditedBuiltin(t *testing.T) {
	cfg, paths := newTestConfig(t)
	builtin := writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)

	edited, err := cfg.SetConfig(builtin, webConf("2222"))
	require.NoError(t, err)

	reverted, err := cfg.LoadDefaults(edited)
	require.NoError(t, err)
	assert.Same(t, builtin, reverted)

	got, err := cfg.Get(fwobj.KindService, "ssh")
	require.NoError(t, err)
	assert.Same(t, builtin, got)

	// The override file was retired with a backup.
	dir := paths.Descriptor(fwobj.KindService).CustomDir
	assert.NoFileExists(t, filepath.Join(dir, "ssh.xml"))
	assert.FileExists(t, filepath.Join(dir, "ssh.xml.old"))
}

func TestLoadDefaultsPreconditions(t *testing.T) {
	cfg, paths := newTestConfig(t)

	// No custom override at all.
	builtin := writeBuiltin(t, cfg, paths, fwobj.KindService, "ssh",
		`<service><port port="22" protocol="tcp"/></service>`)
	_, err := cfg.LoadDefaults(builtin)
	assert.ErrorIs(t, err, ErrNoDefaults)

	// Custom object without a builtin counterpart.
	custom, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)
	_, err = cfg.LoadDefaults(custom)
	assert.ErrorIs(t, err, ErrNoDefaults)

	// Caller's object differs from the registered one.
	edited, err := cfg.SetConfig(builtin, webConf("2222"))
	require.NoError(t, err)
	stale := edited.Clone()
	require.NoError(t, stale.SetConf(webConf("2200")))
	_, err = cfg.LoadDefaults(stale)
	assert.ErrorIs(t, err, ErrNoDefaults)
}

func TestFullCheckRejectsDanglingReference(t *testing.T) {
	cfg, _ := newTestConfig(t)

	zone := fwobj.New(fwobj.KindZone)
	zone.Info().Name = "office"
	require.NoError(t, zone.SetConf(fwobj.ZoneConf{
		Services: []fwobj.ServiceRef{{Name: "no-such-service"}},
	}))

	err := cfg.FullCheck(map[fwobj.Kind][]fwobj.Object{fwobj.KindZone: {zone}})
	require.Error(t, err)
	assert.NotContains(t, cfg.List(fwobj.KindZone), "office", "no partial registration")
}

func TestFullCheckSeesCandidateOverlay(t *testing.T) {
	cfg, _ := newTestConfig(t)

	svc := fwobj.New(fwobj.KindService)
	svc.Info().Name = "intranet"
	require.NoError(t, svc.SetConf(webConf("8088")))

	zone := fwobj.New(fwobj.KindZone)
	zone.Info().Name = "office"
	require.NoError(t, zone.SetConf(fwobj.ZoneConf{
		Services: []fwobj.ServiceRef{{Name: "intranet"}},
	}))

	// The zone's reference resolves against the service candidate.
	err := cfg.FullCheck(map[fwobj.Kind][]fwobj.Object{
		fwobj.KindService: {svc},
		fwobj.KindZone:    {zone},
	})
	assert.NoError(t, err)
}

func TestUpdateFromPathNewCustomFile(t *testing.T) {
	cfg, paths := newTestConfig(t)
	desc := paths.Descriptor(fwobj.KindAddressSet)

	path := filepath.Join(desc.CustomDir, "office.xml")
	body := `<addrset type="hash:ip"><entry>10.0.0.1</entry></addrset>`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	action, obj := cfg.UpdateFromPath(path)
	assert.Equal(t, ActionNew, action)
	require.NotNil(t, obj)
	assert.Equal(t, "office", obj.Info().Name)
	assert.False(t, obj.Info().Builtin)
	assert.Contains(t, cfg.List(fwobj.KindAddressSet), "office")
}

func TestUpdateFromPathOfficeScenario(t *testing.T) {
	cfg, paths := newTestConfig(t)
	desc := paths.Descriptor(fwobj.KindAddressSet)

	created, err := cfg.Create(fwobj.KindAddressSet, "office", fwobj.AddressSetConf{Type: "hash:ip"})
	require.NoError(t, err)
	require.Contains(t, cfg.List(fwobj.KindAddressSet), "office")

	// External deletion of the custom file.
	path := filepath.Join(desc.CustomDir, "office.xml")
	require.NoError(t, os.Remove(path))

	action, obj := cfg.UpdateFromPath(path)
	assert.Equal(t, ActionRemove, action)
	assert.Same(t, created, obj)
	assert.NotContains(t, cfg.List(fwobj.KindAddressSet), "office")
}

func TestUpdateFromPathDeletionUnshadowsBuiltin(t *testing.T) {
	cfg, paths := newTestConfig(t)
	desc := paths.Descriptor(fwobj.KindAddressSet)

	builtin := writeBuiltin(t, cfg, paths, fwobj.KindAddressSet, "office",
		`<addrset type="hash:ip"/>`)
	_, err := cfg.Create(fwobj.KindAddressSet, "blocked", fwobj.AddressSetConf{Type: "hash:ip"})
	require.NoError(t, err)

	// Shadow the builtin with a custom file reported by the watcher.
	path := filepath.Join(desc.CustomDir, "office.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<addrset type="hash:net"/>`), 0o644))
	action, _ := cfg.UpdateFromPath(path)
	require.Equal(t, ActionUpdate, action)

	// Deleting the shadow re-exposes the builtin.
	require.NoError(t, os.Remove(path))
	action, obj := cfg.UpdateFromPath(path)
	assert.Equal(t, ActionUpdate, action)
	assert.Same(t, builtin, obj)

	got, err := cfg.Get(fwobj.KindAddressSet, "office")
	require.NoError(t, err)
	assert.Same(t, builtin, got)
}

func TestUpdateFromPathMalformedFileKeepsState(t *testing.T) {
	cfg, paths := newTestConfig(t)
	desc := paths.Descriptor(fwobj.KindService)

	_, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)

	path := filepath.Join(desc.CustomDir, "web.xml")
	require.NoError(t, os.WriteFile(path, []byte("not xml at all <<<"), 0o644))

	action, obj := cfg.UpdateFromPath(path)
	assert.Equal(t, ActionNone, action)
	assert.Nil(t, obj)

	got, err := cfg.Get(fwobj.KindService, "web")
	require.NoError(t, err)
	assert.Equal(t, webConf("80"), got.Conf())
}

func TestUpdateFromPathHierarchicalZone(t *testing.T) {
	cfg, paths := newTestConfig(t)
	desc := paths.Descriptor(fwobj.KindZone)

	dir := filepath.Join(desc.CustomDir, "office")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "floor2.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<zone><short>Floor 2</short></zone>`), 0o644))

	action, obj := cfg.UpdateFromPath(path)
	assert.Equal(t, ActionNew, action)
	require.NotNil(t, obj)
	assert.Equal(t, "office/floor2", obj.Info().Name)
}

func TestUpdateFromPathOutsideRoots(t *testing.T) {
	cfg, _ := newTestConfig(t)

	action, obj := cfg.UpdateFromPath("/tmp/unrelated/web.xml")
	assert.Equal(t, ActionNone, action)
	assert.Nil(t, obj)
}

func TestLoadAllShadowing(t *testing.T) {
	cfg, paths := newTestConfig(t)
	desc := paths.Descriptor(fwobj.KindService)

	require.NoError(t, os.WriteFile(filepath.Join(desc.BuiltinDir, "ssh.xml"),
		[]byte(`<service><short>vendor</short><port port="22" protocol="tcp"/></service>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(desc.CustomDir, "ssh.xml"),
		[]byte(`<service><short>admin</short><port port="2222" protocol="tcp"/></service>`), 0o644))

	cfg.LoadAll()

	got, err := cfg.Get(fwobj.KindService, "ssh")
	require.NoError(t, err)
	assert.False(t, got.Info().Builtin)
	assert.Equal(t, "admin", got.Conf().(fwobj.ServiceConf).Short)
}

func TestLoadAllHierarchicalSubdirs(t *testing.T) {
	cfg, paths := newTestConfig(t)
	desc := paths.Descriptor(fwobj.KindZone)

	dir := filepath.Join(desc.CustomDir, "office")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "floor2.xml"),
		[]byte(`<zone><short>Floor 2</short></zone>`), 0o644))

	cfg.LoadAll()
	assert.Contains(t, cfg.List(fwobj.KindZone), "office/floor2")
}

func TestCleanupDropsEverything(t *testing.T) {
	cfg, _ := newTestConfig(t)
	_, err := cfg.Create(fwobj.KindService, "web", webConf("80"))
	require.NoError(t, err)

	cfg.Cleanup()
	assert.Empty(t, cfg.List(fwobj.KindService))
}
