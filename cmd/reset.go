package cmd

import (
	"fmt"
)

// RunReset retires every custom object and restores the default settings.
// Requires the confirm flag; this rewrites the custom tree.
func RunReset(libDir, etcDir string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("reset discards all custom configuration; re-run with --confirm")
	}

	cfg, _ := loadConfig(libDir, etcDir)
	if err := cfg.ResetToDefaults(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Println("Configuration reset to defaults. Retired files kept as *.old.")
	return nil
}
