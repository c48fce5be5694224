package fwobj

// Meta carries the registry-facing identity of a config object. The payload
// fields of each kind are opaque to the registry; Meta is what it keys on.
type Meta struct {
	// Name is the logical object name, unique per tier within a kind.
	// Hierarchical kinds may use "<subdir>/<stem>".
	Name string `xml:"-"`

	// Filename is the file the object was read from or will be written to,
	// relative to Path.
	Filename string `xml:"-"`

	// Path is the directory holding Filename.
	Path string `xml:"-"`

	// Builtin marks vendor-shipped objects. Builtin objects are never
	// mutated in place; edits materialize a custom-tier copy.
	Builtin bool `xml:"-"`

	// Default marks objects eligible for remove and rename. A custom copy
	// that shadows a builtin keeps Default=false so it can only be reverted,
	// not deleted outright.
	Default bool `xml:"-"`
}

// Info returns the object's registry metadata. It is promoted into every
// kind struct via embedding.
func (m *Meta) Info() *Meta { return m }

// Object is implemented by all six config object kinds.
type Object interface {
	// Info exposes the registry metadata.
	Info() *Meta

	// Kind returns the object's category.
	Kind() Kind

	// Clone returns a deep copy.
	Clone() Object

	// Conf exports the kind-specific payload as a deep copy.
	Conf() any

	// SetConf replaces the payload from a value previously produced by Conf
	// (or hand-built by a caller). It fails if conf has the wrong type.
	SetConf(conf any) error

	// Check validates the payload and all cross-kind references against a
	// merged snapshot of every registered object.
	Check(all Snapshot) error
}

// Snapshot is a merged name-to-object map for every kind, used during
// cross-reference validation and for bulk restore.
type Snapshot map[Kind]map[string]Object

// Has reports whether the snapshot contains an object of the given kind and
// name.
func (s Snapshot) Has(kind Kind, name string) bool {
	_, ok := s[kind][name]
	return ok
}

// Clone returns a copy of the snapshot maps. The objects themselves are
// shared; callers that mutate objects must Clone them individually.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for kind, objs := range s {
		m := make(map[string]Object, len(objs))
		for name, obj := range objs {
			m[name] = obj
		}
		out[kind] = m
	}
	return out
}
