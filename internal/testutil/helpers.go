// Package testutil holds helpers shared by tests that need populated
// configuration trees on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ConfigTree builds a pair of builtin/custom roots with the standard
// per-kind subdirectories and returns their paths.
func ConfigTree(t *testing.T) (libDir, etcDir string) {
	t.Helper()
	libDir = t.TempDir()
	etcDir = t.TempDir()
	for _, sub := range []string{"addrsets", "helpers", "icmptypes", "services", "zones", "policies"} {
		if err := os.MkdirAll(filepath.Join(libDir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Join(etcDir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return libDir, etcDir
}

// WriteObjectFile drops an object file under root/kindDir, creating
// intermediate directories for hierarchical names.
func WriteObjectFile(t *testing.T, root, kindDir, name, body string) string {
	t.Helper()
	path := filepath.Join(root, kindDir, name+".xml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
