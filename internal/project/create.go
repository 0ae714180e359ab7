package project

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/hud-software/kiss/internal/logs"
	"github.com/hud-software/kiss/pkgs/manifest"
)

var (
	ErrNotEmpty       = errors.New("directory already exists and is not empty")
	ErrNotImplemented = errors.New("not implemented")
)

// Kind is the kind of artifact a project produces.
type Kind int

const (
	Binary Kind = iota + 1
	DynamicLibrary
	StaticLibrary
)

var kindNames = map[Kind]string{
	Binary:         "bin",
	DynamicLibrary: "dyn",
	StaticLibrary:  "lib",
}

// Kinds returns every project kind.
func Kinds() []Kind {
	return []Kind{Binary, StaticLibrary, DynamicLibrary}
}

// ParseKind parses a command line kind name: bin, lib or dyn.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid project kind %q, want one of bin, lib, dyn", s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// creator scaffolds one kind of project.
type creator struct {
	populate func(l *Layout) error
}

var creators = map[Kind]creator{
	StaticLibrary: {populate: populateLibrary},
}

// Options describes the project to create.
type Options struct {
	// Path is the parent directory; the project root is Path/Name.
	Path string
	Name string
	Kind Kind
	// Profile holds flags to record for the default profile. Unset flags
	// are left out of the manifest.
	Profile manifest.Profile
	// Format selects the manifest file format.
	Format manifest.Format
}

// Create scaffolds a new project. The project root must be missing or empty.
func Create(opts Options, console *logs.Console) (*Layout, error) {
	if console == nil {
		console = logs.Std()
	}
	c, ok := creators[opts.Kind]
	if !ok {
		return nil, fmt.Errorf("create %s project: %w", opts.Kind, ErrNotImplemented)
	}

	root := filepath.Join(opts.Path, opts.Name)
	empty, err := isEmptyDir(root)
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, fmt.Errorf("%s: %w", root, ErrNotEmpty)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", root, err)
	}

	m := manifest.Default(opts.Name)
	m.Path = filepath.Join(root, manifest.FileName)
	if opts.Format == manifest.YAML {
		m.Path = filepath.Join(root, manifest.YAMLFileName)
	}
	if opts.Profile.Sanitizer.IsSet() || opts.Profile.Coverage.IsSet() {
		m.Declared = manifest.Profiles{manifest.DefaultProfileName: opts.Profile}
		m.Profiles.Sync(m.Declared)
	}
	if err := m.SaveToFile(); err != nil {
		return nil, err
	}

	l := NewLayout(root, opts.Name, m)
	for _, d := range []*Dir{l.Interface, l.Sources, l.Tests} {
		if err := d.Create(); err != nil {
			return nil, err
		}
	}
	if err := c.populate(l); err != nil {
		return nil, err
	}
	console.Tips("Created %s project %s in %s", opts.Kind, opts.Name, root)
	return l, nil
}

func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

//go:embed templates
var templates embed.FS

func populateLibrary(l *Layout) error {
	files := []struct {
		dir  *Dir
		tmpl string
	}{
		{l.Interface, "fibonacci.h.tmpl"},
		{l.Sources, "fibonacci.cpp.tmpl"},
		{l.Tests, "main.cpp.tmpl"},
		{l.Tests, "precompiled.h.tmpl"},
		{l.Tests, "test_fibonacci.cpp.tmpl"},
	}
	data := map[string]any{"Name": l.Name}
	for _, f := range files {
		b, err := render(path.Join("templates", "lib", f.tmpl), data)
		if err != nil {
			return err
		}
		if err := f.dir.AddFile(strings.TrimSuffix(f.tmpl, ".tmpl"), b); err != nil {
			return err
		}
	}
	return nil
}

func render(name string, data map[string]any) ([]byte, error) {
	tpl, err := template.New(path.Base(name)).Option("missingkey=error").ParseFS(templates, name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
