package cmake

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hud-software/kiss/internal/process"
)

type recordingRunner struct {
	cmds []process.Command
	err  error
}

func (r *recordingRunner) Run(_ context.Context, cmd process.Command, _ process.Sink) error {
	r.cmds = append(r.cmds, cmd)
	return r.err
}

func TestOutputDirDefaultsToBuild(t *testing.T) {
	c := New("", nil)
	if got := c.OutputDir(); got != "build" {
		t.Fatalf("default OutputDir = %q, want %q", got, "build")
	}
	c.BuildDir("target")
	if got := c.OutputDir(); got != "target" {
		t.Fatalf("OutputDir after BuildDir = %q, want %q", got, "target")
	}
}

func TestConfigureArgs(t *testing.T) {
	c := New("cmake", nil)
	c.Source("target")
	c.Compilers(`C:\VS\cl.exe`, `C:\VS\cl.exe`).
		Platform("x64").
		Generator("Visual Studio 17 2022").
		Toolset("host=x64").
		DefineBool("SANITIZER", true).
		DefineBool("COVERAGE", true)

	want := []string{
		"-S", "target",
		`-DCMAKE_CXX_COMPILER:FILEPATH=C:\VS\cl.exe`,
		`-DCMAKE_C_COMPILER:FILEPATH=C:\VS\cl.exe`,
		"-A", "x64",
		"-G", "Visual Studio 17 2022",
		"-T", "host=x64",
		"-DCOVERAGE:BOOL=TRUE",
		"-DSANITIZER:BOOL=TRUE",
	}
	if got := c.ConfigureArgs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ConfigureArgs() = %q\nwant %q", got, want)
	}

	line := `cmake -S target -DCMAKE_CXX_COMPILER:FILEPATH="C:\VS\cl.exe" -DCMAKE_C_COMPILER:FILEPATH="C:\VS\cl.exe" -A x64 -G "Visual Studio 17 2022" -T host=x64 -DCOVERAGE:BOOL=TRUE -DSANITIZER:BOOL=TRUE`
	if got := c.CommandLine(); got != line {
		t.Fatalf("CommandLine() =\n%s\nwant\n%s", got, line)
	}
}

func TestDefines(t *testing.T) {
	c := New("", nil)
	c.DefineBool("ON_FLAG", true).DefineBool("OFF_FLAG", false)
	got := c.definesArgs()
	want := []string{"-DOFF_FLAG:BOOL=FALSE", "-DON_FLAG:BOOL=TRUE"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("definesArgs() = %q, want %q", got, want)
	}
	if q := quote("-DFOO:STRING=a b"); q != `-DFOO:STRING="a b"` {
		t.Fatalf("quote() = %s", q)
	}
}

func TestConfigureAndBuildUseRunner(t *testing.T) {
	r := &recordingRunner{}
	c := New("/opt/cmake", nil).WithRunner(r)
	c.Source("src")
	c.BuildDir("out")
	c.Config("Debug")

	if err := c.Configure(context.Background()); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Build(context.Background(), "--parallel"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(r.cmds) != 2 {
		t.Fatalf("runner called %d times, want 2", len(r.cmds))
	}
	for _, cmd := range r.cmds {
		if cmd.Name != "/opt/cmake" || cmd.Dir != "out" {
			t.Errorf("unexpected command %+v", cmd)
		}
		if cmd.Env != nil {
			t.Errorf("Env = %q, want inherited environment", cmd.Env)
		}
	}
	wantBuild := []string{"--build", "out", "--config", "Debug", "--parallel"}
	if !reflect.DeepEqual(r.cmds[1].Args, wantBuild) {
		t.Errorf("build args = %q, want %q", r.cmds[1].Args, wantBuild)
	}
}

func TestConfigureWrapsExitError(t *testing.T) {
	r := &recordingRunner{err: &process.ExitError{Name: "cmake", Code: 1}}
	c := New("", nil).WithRunner(r)
	err := c.Configure(context.Background())
	var ee *process.ExitError
	if !errors.As(err, &ee) || ee.Code != 1 {
		t.Fatalf("Configure() error = %v, want ExitError", err)
	}
}

func TestConfigureBuildE2E(t *testing.T) {
	if _, err := exec.LookPath("cmake"); err != nil {
		t.Skip("cmake not found in PATH")
	}

	sourceDir, err := filepath.Abs(filepath.Join("testdata", "project"))
	if err != nil {
		t.Fatal(err)
	}
	buildDir := t.TempDir()

	c := New("cmake", nil)
	c.Source(sourceDir)
	c.BuildDir(buildDir)
	c.Config("Release")
	c.DefineBool("ENABLE", true)

	if err := c.Configure(context.Background()); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Build(context.Background()); err != nil {
		t.Fatalf("build: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(buildDir, "CMakeCache.txt"))
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	content := string(data)
	for _, snippet := range []string{"ENABLE:BOOL=TRUE"} {
		if !strings.Contains(content, snippet) {
			t.Fatalf("cache missing %q", snippet)
		}
	}
}
