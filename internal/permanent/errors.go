package permanent

import (
	"errors"
	"fmt"

	"grimm.is/floe/internal/fwobj"
)

// Sentinel errors for registry operations. Callers match them with
// errors.Is; the wrapped text carries kind and name context.
var (
	// ErrNameConflict is returned by Create when the name is already taken
	// in either tier.
	ErrNameConflict = errors.New("name already in use")

	// ErrNotFound is returned by lookups that miss both tiers.
	ErrNotFound = errors.New("no such object")

	// ErrNoDefaults is returned by LoadDefaults when the object has no
	// eligible builtin counterpart to revert to.
	ErrNoDefaults = errors.New("no builtin defaults available")

	// ErrBuiltinProtected is returned by Remove and Rename on builtin or
	// locked objects.
	ErrBuiltinProtected = errors.New("builtin object is protected")

	// ErrInvalidDirectory is returned when an object's recorded path does
	// not lie under its kind's expected root. It indicates registry
	// corruption rather than bad input.
	ErrInvalidDirectory = errors.New("object path outside kind directory")
)

// kindLabels are the human-readable kind names used in error text.
var kindLabels = map[fwobj.Kind]string{
	fwobj.KindAddressSet: "address set",
	fwobj.KindHelper:     "helper",
	fwobj.KindIcmpType:   "icmp type",
	fwobj.KindService:    "service",
	fwobj.KindZone:       "zone",
	fwobj.KindPolicy:     "policy",
}

func kindLabel(kind fwobj.Kind) string {
	if l, ok := kindLabels[kind]; ok {
		return l
	}
	return string(kind)
}

func notFound(kind fwobj.Kind, name string) error {
	return fmt.Errorf("%s %q: %w", kindLabel(kind), name, ErrNotFound)
}
