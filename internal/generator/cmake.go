package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hud-software/kiss/internal/toolchain"
	"github.com/hud-software/kiss/pkgs/buildsys"
	"github.com/hud-software/kiss/pkgs/buildsys/cmake"
)

// cmakeGenerators maps a toolchain kind to the cmake -G name.
var cmakeGenerators = map[toolchain.Kind]string{
	toolchain.VS2022BuildTools: "Visual Studio 17 2022",
	toolchain.VS2022Community:  "Visual Studio 17 2022",
}

// configs maps a profile name to a CMake configuration. Other profiles build
// as Debug.
var configs = map[string]string{
	"debug":     "Debug",
	"debug-opt": "RelWithDebInfo",
	"release":   "Release",
}

// Config returns the CMake configuration used to build profile.
func Config(profile string) string {
	if c, ok := configs[profileName(profile)]; ok {
		return c
	}
	return "Debug"
}

func writeCMakeLists(g *Generator, p *loaded) error {
	lists, err := cmakeLists(p)
	if err != nil {
		return err
	}
	file, err := lists.WriteFile(p.layout.Build.Path)
	if err != nil {
		return err
	}
	g.console().Tips("Wrote %s", file)
	return nil
}

func configureCMake(g *Generator, p *loaded, tc *toolchain.Toolchain) (buildsys.BuildSystem, error) {
	name, ok := cmakeGenerators[tc.Kind]
	if !ok {
		return nil, fmt.Errorf("cmake generator for %s: %w", tc.Kind, ErrNotImplemented)
	}

	c := newCMake(g, p).
		Compilers(tc.CCompiler, tc.CXXCompiler).
		Platform("x64").
		Generator(name).
		Toolset("host=x64")
	if p.profile.Coverage.Enabled() {
		c.DefineBool("COVERAGE", true)
	}
	if p.profile.Sanitizer.Enabled() {
		c.DefineBool("SANITIZER", true)
	}
	g.console().Tips("%s", c.CommandLine())
	return c, nil
}

func buildCMake(g *Generator, p *loaded) (buildsys.BuildSystem, error) {
	cache := filepath.Join(p.layout.Build.Path, "CMakeCache.txt")
	if _, err := os.Stat(cache); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w, run generate first", p.opts.Name, ErrNotGenerated)
		}
		return nil, err
	}
	return newCMake(g, p).Config(Config(p.opts.Profile)), nil
}

func newCMake(g *Generator, p *loaded) *cmake.CMake {
	c := cmake.New(g.CMake, g.console()).WithRunner(g.runner())
	c.Source(p.layout.Build.Path)
	c.BuildDir(p.layout.Build.Path)
	return c
}

// cmakeLists collects the file lists of the project relative to target/.
func cmakeLists(p *loaded) (*cmake.Lists, error) {
	l := p.layout
	base := l.Build.Path
	sources, err := cmake.ListSources(base, l.Sources.Path)
	if err != nil {
		return nil, err
	}
	interfaces, err := cmake.ListSources(base, l.Interface.Path)
	if err != nil {
		return nil, err
	}
	tests, err := cmake.ListSources(base, l.Tests.Path)
	if err != nil {
		return nil, err
	}
	include, err := cmake.RelPath(base, l.InterfaceRoot())
	if err != nil {
		return nil, err
	}
	pch, err := cmake.RelPath(base, filepath.Join(l.Tests.Path, "precompiled.h"))
	if err != nil {
		return nil, err
	}
	return &cmake.Lists{
		Name:              l.Name,
		Coverage:          p.profile.Coverage.Enabled(),
		Sanitizer:         p.profile.Sanitizer.Enabled(),
		Sources:           sources,
		Interfaces:        interfaces,
		Tests:             tests,
		IncludeDir:        include,
		PrecompiledHeader: pch,
	}, nil
}
