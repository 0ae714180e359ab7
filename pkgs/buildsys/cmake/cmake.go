// Package cmake drives the cmake executable and writes CMakeLists.txt files.
package cmake

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hud-software/kiss/internal/process"
	"github.com/hud-software/kiss/pkgs/buildsys"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake wraps common CMake steps with chainable configuration.
type CMake struct {
	bin       string
	SourceDir string
	buildDir  string
	generator string
	platform  string
	toolset   string
	cc        string
	cxx       string
	config    string
	Defines   map[string]defineValue

	runner process.Runner
	sink   process.Sink
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New creates a CMake helper running the executable bin ("cmake" when empty).
// Child output goes to sink.
func New(bin string, sink process.Sink) *CMake {
	if bin == "" {
		bin = "cmake"
	}
	return &CMake{
		bin:     bin,
		Defines: map[string]defineValue{},
		runner:  process.Exec,
		sink:    sink,
	}
}

// WithRunner replaces the runner used to start cmake.
func (c *CMake) WithRunner(r process.Runner) *CMake {
	c.runner = r
	return c
}

func (c *CMake) Source(dir string) {
	c.SourceDir = dir
}

// BuildDir sets the binary directory. Configure runs cmake inside it.
func (c *CMake) BuildDir(dir string) {
	c.buildDir = dir
}

func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

// Platform sets the target architecture passed with -A.
func (c *CMake) Platform(name string) *CMake {
	c.platform = name
	return c
}

// Toolset sets the toolset specification passed with -T.
func (c *CMake) Toolset(spec string) *CMake {
	c.toolset = spec
	return c
}

// Compilers sets the C and C++ compilers.
func (c *CMake) Compilers(cc, cxx string) *CMake {
	c.cc = cc
	c.cxx = cxx
	return c
}

// Config sets the configuration used by Build, e.g. "Debug".
func (c *CMake) Config(name string) *CMake {
	c.config = name
	return c
}

func (c *CMake) DefineBool(key string, value bool) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	if value {
		c.Defines[key] = defineValue{value: "TRUE", typeName: "BOOL"}
		return c
	}
	c.Defines[key] = defineValue{value: "FALSE", typeName: "BOOL"}
	return c
}

// ConfigureArgs returns the arguments of the configure step:
//
//	-S <src> -DCMAKE_CXX_COMPILER:FILEPATH=<cxx> -DCMAKE_C_COMPILER:FILEPATH=<cc>
//	-A <platform> -G <generator> -T <toolset> [-D<defines>...] [args...]
func (c *CMake) ConfigureArgs(args ...string) []string {
	cmakeArgs := []string{"-S", c.SourceDir}
	if c.cxx != "" {
		cmakeArgs = append(cmakeArgs, "-DCMAKE_CXX_COMPILER:FILEPATH="+c.cxx)
	}
	if c.cc != "" {
		cmakeArgs = append(cmakeArgs, "-DCMAKE_C_COMPILER:FILEPATH="+c.cc)
	}
	if c.platform != "" {
		cmakeArgs = append(cmakeArgs, "-A", c.platform)
	}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.toolset != "" {
		cmakeArgs = append(cmakeArgs, "-T", c.toolset)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	return append(cmakeArgs, args...)
}

// CommandLine renders the configure command the way a shell would receive
// it, with paths and the generator name quoted.
func (c *CMake) CommandLine(args ...string) string {
	parts := []string{c.bin}
	for _, a := range c.ConfigureArgs(args...) {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func (c *CMake) Configure(ctx context.Context, args ...string) error {
	return c.run(ctx, "configure", c.ConfigureArgs(args...))
}

func (c *CMake) Build(ctx context.Context, args ...string) error {
	cmdArgs := []string{"--build", c.OutputDir()}
	if c.config != "" {
		cmdArgs = append(cmdArgs, "--config", c.config)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.run(ctx, "build", cmdArgs)
}

// OutputDir returns the binary directory, "build" when unset.
func (c *CMake) OutputDir() string {
	if c.buildDir == "" {
		return "build"
	}
	return c.buildDir
}

func (c *CMake) definesArgs() []string {
	if len(c.Defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := c.Defines[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
}

func (c *CMake) run(ctx context.Context, step string, args []string) error {
	cmd := process.Command{Name: c.bin, Args: args, Dir: c.buildDir}
	if err := c.runner.Run(ctx, cmd, c.sink); err != nil {
		return fmt.Errorf("cmake %s: %w", step, err)
	}
	return nil
}

// quote wraps the value part of a define, or a whole argument, in double
// quotes when it names a file or holds spaces.
func quote(arg string) string {
	if key, value, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-D") {
		if strings.HasSuffix(key, ":FILEPATH") || strings.ContainsAny(value, " \t") {
			return key + `="` + value + `"`
		}
		return arg
	}
	if strings.ContainsAny(arg, " \t") {
		return `"` + arg + `"`
	}
	return arg
}
