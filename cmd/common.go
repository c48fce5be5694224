// Package cmd implements the floe subcommands.
package cmd

import (
	"fmt"

	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/fwobj"
	"grimm.is/floe/internal/permanent"
	"grimm.is/floe/internal/settings"
)

// kindAliases maps CLI spellings to object kinds.
var kindAliases = map[string]fwobj.Kind{
	"addrset":   fwobj.KindAddressSet,
	"addrsets":  fwobj.KindAddressSet,
	"helper":    fwobj.KindHelper,
	"helpers":   fwobj.KindHelper,
	"icmptype":  fwobj.KindIcmpType,
	"icmptypes": fwobj.KindIcmpType,
	"service":   fwobj.KindService,
	"services":  fwobj.KindService,
	"zone":      fwobj.KindZone,
	"zones":     fwobj.KindZone,
	"policy":    fwobj.KindPolicy,
	"policies":  fwobj.KindPolicy,
}

func resolveKind(arg string) (fwobj.Kind, error) {
	if kind, ok := kindAliases[arg]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unknown object kind %q", arg)
}

// loadConfig builds and populates a registry over the given roots. Empty
// roots fall back to the installed locations.
func loadConfig(libDir, etcDir string) (*permanent.Config, permanent.Paths) {
	paths := permanent.DefaultPaths()
	if libDir != "" {
		paths.LibDir = libDir
	}
	if etcDir != "" {
		paths.EtcDir = etcDir
	}

	st := settings.New(brand.SettingsFile())
	cfg := permanent.New(paths, st, nil)
	cfg.LoadAll()
	if err := cfg.UpdateSettings(); err != nil {
		fmt.Printf("Warning: settings file not loaded: %v\n", err)
	}
	return cfg, paths
}
