// Package generator turns a kiss project into a configured CMake build tree.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hud-software/kiss/internal/logs"
	"github.com/hud-software/kiss/internal/process"
	"github.com/hud-software/kiss/internal/project"
	"github.com/hud-software/kiss/internal/toolchain"
	"github.com/hud-software/kiss/pkgs/buildsys"
	"github.com/hud-software/kiss/pkgs/manifest"
)

var (
	ErrPathNotFound   = errors.New("path not found")
	ErrNotImplemented = errors.New("not implemented")
	ErrNotGenerated   = errors.New("project is not generated")
)

// Backend is an external build system kiss can generate for.
type Backend int

const (
	CMake Backend = iota + 1
)

func (b Backend) String() string {
	if b == CMake {
		return "cmake"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend parses a backend name as typed on the command line.
func ParseBackend(s string) (Backend, error) {
	if strings.EqualFold(s, "cmake") {
		return CMake, nil
	}
	return 0, fmt.Errorf("backend %q: %w", s, ErrNotImplemented)
}

type backend struct {
	// write emits the build description into the target directory.
	write func(g *Generator, p *loaded) error
	// configurer and builder return the build system ready for the
	// configure and build steps.
	configurer func(g *Generator, p *loaded, tc *toolchain.Toolchain) (buildsys.BuildSystem, error)
	builder    func(g *Generator, p *loaded) (buildsys.BuildSystem, error)
	// generators maps a toolchain kind to the backend generator name.
	generators map[toolchain.Kind]string
}

var backends = map[Backend]backend{
	CMake: {
		write:      writeCMakeLists,
		configurer: configureCMake,
		builder:    buildCMake,
		generators: cmakeGenerators,
	},
}

// Generators returns the toolchain kinds backend b can generate for.
func Generators(b Backend) []toolchain.Kind {
	be, ok := backends[b]
	if !ok {
		return nil
	}
	var kinds []toolchain.Kind
	for _, k := range toolchain.Kinds() {
		if _, ok := be.generators[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Generator writes build descriptions and runs the external build tool.
type Generator struct {
	Host toolchain.Host
	// CMake is the cmake executable, "cmake" when empty.
	CMake   string
	Console *logs.Console
	Runner  process.Runner
}

// Options selects the project and how to generate it.
type Options struct {
	// Path is the parent directory of the project root Path/Name.
	Path    string
	Name    string
	Backend Backend
	Kind    toolchain.Kind
	// Profile names the manifest profile, "debug" when empty.
	Profile string
	// Overrides are applied on top of the selected profile.
	Overrides manifest.Profile
}

type loaded struct {
	opts    Options
	layout  *project.Layout
	profile manifest.Profile
}

// Generate writes target/CMakeLists.txt for the project and configures it
// with the compiler of the requested toolchain kind.
func (g *Generator) Generate(ctx context.Context, opts Options) error {
	be, err := lookupBackend(opts.Backend)
	if err != nil {
		return err
	}
	p, err := g.load(opts)
	if err != nil {
		return err
	}
	if err := p.layout.Build.Create(); err != nil {
		return err
	}
	if err := be.write(g, p); err != nil {
		return err
	}

	tc, err := toolchain.Discover(ctx, g.Host, opts.Kind, g.console())
	if err != nil {
		return fmt.Errorf("failed to find a toolchain for %s: %w", opts.Kind, err)
	}
	if tc.SDK != nil {
		g.console().Tips("Windows SDK %s in %s", tc.SDK.ProductVersion, tc.SDK.InstallationPath)
	}
	bs, err := be.configurer(g, p, tc)
	if err != nil {
		return err
	}
	return bs.Configure(ctx)
}

// Build compiles a generated project with the configuration matching its
// profile.
func (g *Generator) Build(ctx context.Context, opts Options) error {
	be, err := lookupBackend(opts.Backend)
	if err != nil {
		return err
	}
	p, err := g.load(opts)
	if err != nil {
		return err
	}
	bs, err := be.builder(g, p)
	if err != nil {
		return err
	}
	return bs.Build(ctx)
}

func lookupBackend(b Backend) (backend, error) {
	if b == 0 {
		b = CMake
	}
	be, ok := backends[b]
	if !ok {
		return backend{}, fmt.Errorf("backend %s: %w", b, ErrNotImplemented)
	}
	return be, nil
}

func (g *Generator) load(opts Options) (*loaded, error) {
	root := filepath.Join(opts.Path, opts.Name)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
	}

	file, err := manifest.Locate(root)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(file, nil, func(err error) {
		g.console().Error("%v", err)
	})
	if err != nil {
		return nil, err
	}
	g.printManifest(m)

	profile, err := m.ActiveProfile(opts.Profile, opts.Overrides)
	if err != nil {
		return nil, err
	}
	logs.Debugf("generator: profile %q: %s", profileName(opts.Profile), profile)
	return &loaded{
		opts:    opts,
		layout:  project.NewLayout(root, opts.Name, m),
		profile: profile,
	}, nil
}

func (g *Generator) printManifest(m *manifest.Manifest) {
	c := g.console()
	c.Tips("Manifest %s", m.Path)
	c.Tips("  Name : %s", m.Package.Name)
	c.Tips("  Authors : %s", strings.Join(m.Package.Authors, ","))
	c.Tips("  Version : %s", m.Package.Version)
	for _, name := range m.Profiles.Names() {
		c.Tips("  %s : %s", name, m.Profiles[name])
	}
}

func (g *Generator) console() *logs.Console {
	if g.Console == nil {
		return logs.Std()
	}
	return g.Console
}

func (g *Generator) runner() process.Runner {
	if g.Runner == nil {
		return process.Exec
	}
	return g.Runner
}

func profileName(name string) string {
	if name == "" {
		return manifest.DefaultProfileName
	}
	return name
}
