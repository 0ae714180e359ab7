// Package project describes the directory layout of a kiss project and
// scaffolds new ones.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hud-software/kiss/pkgs/manifest"
)

// Dir is a project directory. Files records the names added through AddFile.
type Dir struct {
	Path  string
	files []string
}

// Create makes the directory and its parents. It is a no-op when the
// directory exists.
func (d *Dir) Create() error {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.Path, err)
	}
	return nil
}

// AddFile writes a new file called name into d, replacing any previous
// content.
func (d *Dir) AddFile(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(d.Path, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	d.files = append(d.files, name)
	return nil
}

// Files returns the names added to d, in insertion order.
func (d *Dir) Files() []string {
	return d.files
}

// Layout is the set of directories of the project called Name rooted at Root.
//
//	<Root>/interfaces/<Name>   public headers
//	<Root>/sources             implementation
//	<Root>/tests               unit tests
//	<Root>/target              generated build files
type Layout struct {
	Root string
	Name string

	Interface *Dir
	Sources   *Dir
	Tests     *Dir
	Build     *Dir

	Manifest *manifest.Manifest
}

// NewLayout returns the layout of the project name rooted at root. Nothing is
// created on disk.
func NewLayout(root, name string, m *manifest.Manifest) *Layout {
	return &Layout{
		Root:      root,
		Name:      name,
		Interface: &Dir{Path: filepath.Join(root, "interfaces", name)},
		Sources:   &Dir{Path: filepath.Join(root, "sources")},
		Tests:     &Dir{Path: filepath.Join(root, "tests")},
		Build:     &Dir{Path: filepath.Join(root, "target")},
		Manifest:  m,
	}
}

// InterfaceRoot is the include directory exposing "<Name>/header.h".
func (l *Layout) InterfaceRoot() string {
	return filepath.Dir(l.Interface.Path)
}
