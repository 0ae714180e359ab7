// Package manifest models the kiss.json project file: the package identity and
// the named build profiles inherited from a built-in set.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File names searched by Locate, in order of preference.
const (
	FileName     = "kiss.json"
	YAMLFileName = "kiss.yaml"
)

var fileNames = []string{FileName, YAMLFileName, "kiss.yml"}

// Package identifies a buildable unit.
type Package struct {
	Name    string
	Authors []string
	Version Version
}

// Manifest is a loaded or freshly created project description.
type Manifest struct {
	Package Package

	// Profiles are the built-in profiles synchronized with Declared.
	Profiles Profiles

	// Declared holds the profiles as written in the document. It is what
	// SaveToFile writes back.
	Declared Profiles

	// Path is the file the manifest was loaded from and is saved to.
	Path string
}

// Default returns the manifest of a new project called projectName.
func Default(projectName string) *Manifest {
	return &Manifest{
		Package: Package{
			Name:    projectName,
			Authors: []string{"me", "I", "myself"},
			Version: Version{Major: 0, Minor: 0, Patch: 1},
		},
		Profiles: BuiltinProfiles(),
	}
}

// Locate returns the manifest file inside root.
func Locate(root string) (string, error) {
	for _, name := range fileNames {
		file := filepath.Join(root, name)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return file, nil
		}
	}
	return "", fmt.Errorf("no %s in %s: %w", FileName, root, fs.ErrNotExist)
}

// Load reads the manifest stored in file. Recoverable problems inside the
// profiles section are passed to report, when not nil, and skipped.
func Load(file string, report func(error)) (*Manifest, error) {
	return Parse(file, nil, report)
}

// Parse decodes a manifest. When data is nil it is read from file; file also
// selects the format and becomes the manifest Path.
//
// Errors confined to a single profile entry are passed to report, when not
// nil, and the entry or key is ignored.
func Parse(file string, data []byte, report func(error)) (*Manifest, error) {
	if data == nil {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		data = b
	}
	if report == nil {
		report = func(error) {}
	}

	doc, err := decode(FormatOf(file), data)
	if err != nil {
		return nil, &ParseError{File: file, Err: err}
	}
	if doc.kind != mappingNode {
		return nil, &ParseError{File: file, Err: &FormatError{Field: "", Line: doc.line, Msg: "document must be an object"}}
	}

	pkg, err := parsePackage(doc)
	if err != nil {
		return nil, &ParseError{File: file, Err: err}
	}
	declared, err := parseProfiles(doc, report)
	if err != nil {
		return nil, &ParseError{File: file, Err: err}
	}

	m := &Manifest{
		Package:  pkg,
		Profiles: BuiltinProfiles(),
		Declared: declared,
		Path:     file,
	}
	m.Profiles.Sync(declared)
	return m, nil
}

// SaveToFile writes the manifest to m.Path, replacing the whole file.
func (m *Manifest) SaveToFile() error {
	if m.Path == "" {
		return errors.New("save manifest: no file path")
	}
	data, err := encode(FormatOf(m.Path), m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.Path, data, 0o644); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// ActiveProfile returns the profile called name with overrides applied on top.
// An empty name selects the default profile.
func (m *Manifest) ActiveProfile(name string, overrides Profile) (Profile, error) {
	if name == "" {
		name = DefaultProfileName
	}
	p, err := m.Profiles.Lookup(name)
	if err != nil {
		return Profile{}, err
	}
	return p.Override(overrides), nil
}

func parsePackage(doc node) (Package, error) {
	pn, ok := doc.lookup("package")
	if !ok {
		return Package{}, &MissingFieldError{Field: "package"}
	}
	if pn.kind != mappingNode {
		return Package{}, &FormatError{Field: "package", Line: pn.line, Msg: "must be an object"}
	}

	var pkg Package

	name, ok := pn.lookup("name")
	if !ok {
		return Package{}, &MissingFieldError{Field: "package.name"}
	}
	s, isStr := name.value.(string)
	if name.kind != scalarNode || !isStr || s == "" {
		return Package{}, &FormatError{Field: "package.name", Line: name.line, Msg: "must be a non-empty string"}
	}
	pkg.Name = s

	authors, ok := pn.lookup("authors")
	if !ok {
		return Package{}, &MissingFieldError{Field: "package.authors"}
	}
	if authors.kind != sequenceNode {
		return Package{}, &FormatError{Field: "package.authors", Line: authors.line, Msg: "must be a list of strings"}
	}
	pkg.Authors = make([]string, 0, len(authors.items))
	for _, item := range authors.items {
		a, isStr := item.value.(string)
		if item.kind != scalarNode || !isStr {
			return Package{}, &FormatError{Field: "package.authors", Line: item.line, Msg: "must be a list of strings"}
		}
		pkg.Authors = append(pkg.Authors, a)
	}

	version, ok := pn.lookup("version")
	if !ok {
		return Package{}, &MissingFieldError{Field: "package.version"}
	}
	vs, isStr := version.value.(string)
	if version.kind != scalarNode || !isStr {
		return Package{}, &FormatError{Field: "package.version", Line: version.line, Msg: "must be a MAJOR.MINOR.PATCH string"}
	}
	v, err := ParseVersion(vs)
	if err != nil {
		return Package{}, &FormatError{Field: "package.version", Line: version.line, Msg: err.Error()}
	}
	pkg.Version = v
	return pkg, nil
}

func parseProfiles(doc node, report func(error)) (Profiles, error) {
	pn, ok := doc.lookup("profiles")
	if !ok || (pn.kind == scalarNode && pn.value == nil) {
		return nil, nil
	}
	if pn.kind != mappingNode {
		return nil, &FormatError{Field: "profiles", Line: pn.line, Msg: "must be an object"}
	}

	profiles := make(Profiles, len(pn.fields))
	for _, entry := range pn.fields {
		if entry.value.kind != mappingNode {
			report(&FormatError{Field: "profiles." + entry.key, Line: entry.value.line, Msg: "must be an object"})
			continue
		}
		var p Profile
		for _, kv := range entry.value.fields {
			var flag *Tristate
			switch {
			case strings.EqualFold(kv.key, "sanitizer"):
				flag = &p.Sanitizer
			case strings.EqualFold(kv.key, "coverage"):
				flag = &p.Coverage
			default:
				report(&UnknownKeyError{Profile: entry.key, Key: kv.key, Line: kv.value.line})
				continue
			}
			b, isBool := kv.value.value.(bool)
			if kv.value.kind != scalarNode || !isBool {
				report(&FormatError{
					Field: "profiles." + entry.key + "." + kv.key,
					Line:  kv.value.line,
					Msg:   "must be a boolean",
				})
				continue
			}
			*flag = TristateOf(b)
		}
		profiles[entry.key] = p
	}
	return profiles, nil
}
