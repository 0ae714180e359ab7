package cmake

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
)

// ListsFile is the name of the build description cmake reads.
const ListsFile = "CMakeLists.txt"

// ModulesURL hosts the coverage.cmake and sanitizer.cmake helper modules.
const ModulesURL = "https://hud-software.github.io/cmake"

// SourcePattern matches the lower-cased base name of the C and C++ files
// listed in a CMakeLists.txt. Extensions match regardless of case.
const SourcePattern = "*.{h,hpp,cpp,c}"

// Repository pins the test framework fetched by FetchContent.
type Repository struct {
	Repository string
	Tag        string
}

// GoogleTest is the pinned Google Test fork linked into test executables.
var GoogleTest = Repository{
	Repository: "https://github.com/HUD-Software/google-test.git",
	Tag:        "5306f1a0e51f6001c624588fafdb646bb377866c",
}

// Lists is the content of a CMakeLists.txt for a static library and its
// test executable. Paths are relative to the directory holding the file and
// use forward slashes.
type Lists struct {
	Name      string
	Coverage  bool
	Sanitizer bool

	Sources    []string
	Interfaces []string
	Tests      []string

	IncludeDir        string
	PrecompiledHeader string

	Modules    string
	GoogleTest Repository
}

//go:embed templates/CMakeLists.txt.tmpl
var templates embed.FS

var listsTemplate = template.Must(
	template.New("CMakeLists.txt.tmpl").Option("missingkey=error").ParseFS(templates, "templates/CMakeLists.txt.tmpl"),
)

// Render returns the CMakeLists.txt text.
func (l *Lists) Render() ([]byte, error) {
	data := *l
	if data.Modules == "" {
		data.Modules = ModulesURL
	}
	if data.GoogleTest == (Repository{}) {
		data.GoogleTest = GoogleTest
	}
	var buf bytes.Buffer
	if err := listsTemplate.Execute(&buf, &data); err != nil {
		return nil, fmt.Errorf("render %s: %w", ListsFile, err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders l into dir/CMakeLists.txt, replacing any previous file.
func (l *Lists) WriteFile(dir string) (string, error) {
	data, err := l.Render()
	if err != nil {
		return "", err
	}
	file := filepath.Join(dir, ListsFile)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", file, err)
	}
	return file, nil
}

// ListSources returns the C and C++ files below dir, recursively, sorted and
// expressed relative to base with forward slashes. A missing dir yields no
// files.
func ListSources(base, dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list sources in %s: %w", dir, err)
	}
	prefix, err := RelPath(base, dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		ok, err := doublestar.Match(SourcePattern, strings.ToLower(path.Base(m)))
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, path.Join(prefix, m))
		}
	}
	sort.Strings(files)
	return files, nil
}

// RelPath returns target relative to base with forward slashes.
func RelPath(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", target, base, err)
	}
	return filepath.ToSlash(rel), nil
}
