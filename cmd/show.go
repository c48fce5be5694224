package cmd

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// RunShow dumps one object's exported payload as YAML, prefixed with its
// registry metadata.
func RunShow(libDir, etcDir, kindArg, name string) error {
	kind, err := resolveKind(kindArg)
	if err != nil {
		return err
	}

	cfg, _ := loadConfig(libDir, etcDir)
	obj, err := cfg.Get(kind, name)
	if err != nil {
		return err
	}

	meta := obj.Info()
	tier := "custom"
	if meta.Builtin {
		tier = "builtin"
	}
	fmt.Printf("# %s %s (%s) %s/%s\n", kind, meta.Name, tier, meta.Path, meta.Filename)

	out, err := yaml.Marshal(obj.Conf())
	if err != nil {
		return fmt.Errorf("serializing %q: %w", name, err)
	}
	fmt.Print(string(out))
	return nil
}
