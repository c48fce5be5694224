package cmd

import (
	"fmt"

	"grimm.is/floe/internal/fwobj"
)

// RunCheck loads both configuration trees and validates every object
// against the merged namespace.
func RunCheck(libDir, etcDir string, verbose bool) error {
	cfg, _ := loadConfig(libDir, etcDir)

	total := 0
	for _, kind := range fwobj.CheckOrder() {
		names := cfg.List(kind)
		total += len(names)
		if verbose {
			for _, name := range names {
				obj, err := cfg.Get(kind, name)
				if err != nil {
					continue
				}
				tier := "custom"
				if obj.Info().Builtin {
					tier = "builtin"
				}
				fmt.Printf("  %-12s %-30s %s\n", kind, name, tier)
			}
		}
	}

	if err := cfg.FullCheck(nil); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Printf("Configuration OK: %d objects\n", total)
	return nil
}
