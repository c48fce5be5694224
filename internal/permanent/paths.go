package permanent

import (
	"path/filepath"
	"strings"

	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/fwobj"
)

// ReadFunc parses one object file from a directory.
type ReadFunc func(filename, dir string) (fwobj.Object, error)

// WriteFunc persists an object to its Path/Filename.
type WriteFunc func(fwobj.Object) error

// Descriptor is the static per-kind wiring: where the two tiers live on
// disk, how names map to files, and the reader/writer collaborators.
type Descriptor struct {
	Kind       fwobj.Kind
	BuiltinDir string
	CustomDir  string

	// Hierarchical kinds accept <subdir>/<stem>.xml below the custom root,
	// mapping to the logical name <subdir>/<stem>.
	Hierarchical bool

	// RenameSwaps selects remove-then-recreate rename semantics with
	// recovery of the original on failure, instead of copy-then-remove.
	RenameSwaps bool

	Read  ReadFunc
	Write WriteFunc
}

// kindDirs are the per-kind subdirectory names under both roots.
var kindDirs = map[fwobj.Kind]string{
	fwobj.KindAddressSet: "addrsets",
	fwobj.KindHelper:     "helpers",
	fwobj.KindIcmpType:   "icmptypes",
	fwobj.KindService:    "services",
	fwobj.KindZone:       "zones",
	fwobj.KindPolicy:     "policies",
}

// Paths locates the two configuration roots: LibDir holds the vendor
// defaults, EtcDir the administrator overrides.
type Paths struct {
	LibDir string
	EtcDir string
}

// DefaultPaths returns the installed locations, honoring the FLOE_* env
// overrides.
func DefaultPaths() Paths {
	return Paths{
		LibDir: brand.GetLibDir(),
		EtcDir: brand.GetConfigDir(),
	}
}

// Descriptor builds the descriptor for one kind, wiring the XML
// reader/writer collaborators.
func (p Paths) Descriptor(kind fwobj.Kind) Descriptor {
	return Descriptor{
		Kind:         kind,
		BuiltinDir:   filepath.Join(p.LibDir, kindDirs[kind]),
		CustomDir:    filepath.Join(p.EtcDir, kindDirs[kind]),
		Hierarchical: kind == fwobj.KindZone || kind == fwobj.KindPolicy,
		RenameSwaps:  kind == fwobj.KindZone,
		Read: func(filename, dir string) (fwobj.Object, error) {
			return fwobj.ReadFile(kind, filename, dir)
		},
		Write: fwobj.WriteFile,
	}
}

// customLocation maps a logical name to the file location under the custom
// root. Hierarchical names place the stem in a subdirectory.
func (d Descriptor) customLocation(name string) (dir, filename string) {
	if d.Hierarchical {
		if sub, stem, found := strings.Cut(name, "/"); found {
			return filepath.Join(d.CustomDir, sub), stem + fwobj.Extension
		}
	}
	return d.CustomDir, name + fwobj.Extension
}

// inCustomDir reports whether dir belongs to the kind's custom root. Flat
// kinds require an exact match; hierarchical kinds also accept
// subdirectories.
func (d Descriptor) inCustomDir(dir string) bool {
	if dir == d.CustomDir {
		return true
	}
	return d.Hierarchical && strings.HasPrefix(dir, d.CustomDir+string(filepath.Separator))
}
