package project

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hud-software/kiss/internal/logs"
	"github.com/hud-software/kiss/pkgs/manifest"
)

func quiet() *logs.Console {
	var buf bytes.Buffer
	return logs.New(&buf, &buf)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("exe")
	assert.Error(t, err)
}

func TestNewLayout(t *testing.T) {
	l := NewLayout(filepath.Join("work", "demo"), "demo", nil)
	assert.Equal(t, filepath.Join("work", "demo", "interfaces", "demo"), l.Interface.Path)
	assert.Equal(t, filepath.Join("work", "demo", "sources"), l.Sources.Path)
	assert.Equal(t, filepath.Join("work", "demo", "tests"), l.Tests.Path)
	assert.Equal(t, filepath.Join("work", "demo", "target"), l.Build.Path)
	assert.Equal(t, filepath.Join("work", "demo", "interfaces"), l.InterfaceRoot())
}

func TestDirCreateIdempotent(t *testing.T) {
	d := &Dir{Path: filepath.Join(t.TempDir(), "a", "b")}
	require.NoError(t, d.Create())
	require.NoError(t, d.Create())
	require.NoError(t, d.AddFile("x.h", []byte("x")))
	require.NoError(t, d.AddFile("y.h", []byte("y")))
	assert.Equal(t, []string{"x.h", "y.h"}, d.Files())
}

func TestCreateLibrary(t *testing.T) {
	parent := t.TempDir()
	l, err := Create(Options{Path: parent, Name: "demo", Kind: StaticLibrary}, quiet())
	require.NoError(t, err)

	root := filepath.Join(parent, "demo")
	assert.Equal(t, root, l.Root)
	assert.Equal(t, []string{"fibonacci.h"}, l.Interface.Files())
	assert.Equal(t, []string{"fibonacci.cpp"}, l.Sources.Files())
	assert.Equal(t, []string{"main.cpp", "precompiled.h", "test_fibonacci.cpp"}, l.Tests.Files())

	header, err := os.ReadFile(filepath.Join(root, "interfaces", "demo", "fibonacci.h"))
	require.NoError(t, err)
	assert.Equal(t, "int fibonacci(int n);\n", string(header))

	test, err := os.ReadFile(filepath.Join(root, "tests", "test_fibonacci.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "#include <demo/fibonacci.h>\nTEST(demo, fibonacci)\n{\n    ASSERT_EQ(fibonacci(10), 55);\n}\n", string(test))

	pch, err := os.ReadFile(filepath.Join(root, "tests", "precompiled.h"))
	require.NoError(t, err)
	assert.Equal(t, "#include <gtest/gtest.h>\n", string(pch))

	m, err := manifest.Load(filepath.Join(root, manifest.FileName), nil)
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Package.Name)
	assert.Empty(t, m.Declared)

	_, err = os.Stat(l.Build.Path)
	assert.True(t, os.IsNotExist(err), "target is created by generate")
}

func TestCreateRecordsProfileFlags(t *testing.T) {
	parent := t.TempDir()
	opts := Options{
		Path:    parent,
		Name:    "demo",
		Kind:    StaticLibrary,
		Profile: manifest.Profile{Sanitizer: manifest.False},
		Format:  manifest.YAML,
	}
	_, err := Create(opts, quiet())
	require.NoError(t, err)

	m, err := manifest.Load(filepath.Join(parent, "demo", manifest.YAMLFileName), nil)
	require.NoError(t, err)
	assert.Equal(t, manifest.Profiles{"debug": {Sanitizer: manifest.False}}, m.Declared)
	assert.Equal(t, manifest.Profile{Sanitizer: manifest.False, Coverage: manifest.True}, m.Profiles["debug"])
}

func TestCreateIntoEmptyDir(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, "demo"), 0o755))
	_, err := Create(Options{Path: parent, Name: "demo", Kind: StaticLibrary}, quiet())
	assert.NoError(t, err)
}

func TestCreateNotEmpty(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "demo")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0o644))

	_, err := Create(Options{Path: parent, Name: "demo", Kind: StaticLibrary}, quiet())
	assert.ErrorIs(t, err, ErrNotEmpty)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateNotImplemented(t *testing.T) {
	for _, k := range []Kind{Binary, DynamicLibrary} {
		t.Run(k.String(), func(t *testing.T) {
			parent := t.TempDir()
			_, err := Create(Options{Path: parent, Name: "demo", Kind: k}, quiet())
			assert.ErrorIs(t, err, ErrNotImplemented)
			_, err = os.Stat(filepath.Join(parent, "demo"))
			assert.True(t, os.IsNotExist(err))
		})
	}
}
