package fwobj

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the filename suffix of every config object file.
const Extension = ".xml"

// ReadFile parses one object file from dir. The returned object's Name is
// the filename stem; hierarchical naming for files below a kind root is the
// caller's concern. Builtin is left false; the loader sets it from the tier
// the file belongs to.
func ReadFile(kind Kind, filename, dir string) (Object, error) {
	obj := New(kind)
	if obj == nil {
		return nil, fmt.Errorf("unknown object kind %q", kind)
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	if err := xml.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	meta := obj.Info()
	meta.Name = strings.TrimSuffix(filepath.Base(filename), Extension)
	meta.Filename = filename
	meta.Path = dir
	meta.Default = true
	return obj, nil
}

// WriteFile persists obj to its Path/Filename. The content is written to a
// temp file and renamed into place so a crash never leaves a partial file
// visible.
func WriteFile(obj Object) error {
	meta := obj.Info()
	if meta.Path == "" || meta.Filename == "" {
		return fmt.Errorf("object %q has no destination path", meta.Name)
	}
	if err := os.MkdirAll(filepath.Dir(filepath.Join(meta.Path, meta.Filename)), 0o755); err != nil {
		return err
	}

	data, err := xml.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", meta.Name, err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	target := filepath.Join(meta.Path, meta.Filename)
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
