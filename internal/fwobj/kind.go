// Package fwobj defines the six permanent firewall configuration object
// kinds (address sets, connection tracking helpers, ICMP types, services,
// zones, policies), their on-disk XML representation, and the
// cross-reference checks each kind performs against the full object
// namespace.
package fwobj

// Kind identifies one of the managed configuration object categories.
type Kind string

const (
	KindAddressSet Kind = "address_sets"
	KindHelper     Kind = "helpers"
	KindIcmpType   Kind = "icmp_types"
	KindService    Kind = "services"
	KindZone       Kind = "zones"
	KindPolicy     Kind = "policies"
)

// CheckOrder returns the kinds in reference-dependency order: later kinds
// may reference earlier ones by name, so validation must visit them in this
// sequence.
func CheckOrder() []Kind {
	return []Kind{
		KindAddressSet,
		KindHelper,
		KindIcmpType,
		KindService,
		KindZone,
		KindPolicy,
	}
}

var factories = map[Kind]func() Object{
	KindAddressSet: func() Object { return &AddressSet{} },
	KindHelper:     func() Object { return &Helper{} },
	KindIcmpType:   func() Object { return &IcmpType{} },
	KindService:    func() Object { return &Service{} },
	KindZone:       func() Object { return &Zone{} },
	KindPolicy:     func() Object { return &Policy{} },
}

// New returns an empty object of the given kind, or nil for an unknown kind.
func New(kind Kind) Object {
	f, ok := factories[kind]
	if !ok {
		return nil
	}
	return f()
}

// Valid reports whether kind names a managed category.
func Valid(kind Kind) bool {
	_, ok := factories[kind]
	return ok
}
