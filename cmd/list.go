package cmd

import (
	"fmt"

	"grimm.is/floe/internal/fwobj"
)

// RunList prints the merged names for one kind, or for every kind when no
// kind argument is given.
func RunList(libDir, etcDir, kindArg string) error {
	cfg, _ := loadConfig(libDir, etcDir)

	kinds := fwobj.CheckOrder()
	if kindArg != "" {
		kind, err := resolveKind(kindArg)
		if err != nil {
			return err
		}
		kinds = []fwobj.Kind{kind}
	}

	for _, kind := range kinds {
		for _, name := range cfg.List(kind) {
			obj, err := cfg.Get(kind, name)
			if err != nil {
				continue
			}
			tier := "custom"
			if obj.Info().Builtin {
				tier = "builtin"
			}
			fmt.Printf("%-12s %-30s %s\n", kind, name, tier)
		}
	}
	return nil
}
