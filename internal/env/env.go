package env

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory before the environment is
// inspected. Variables already set in the process are never overridden.
const DotEnvFile = ".env"

// Environment variables understood by kiss.
const (
	CMakeVar   = "KISS_CMAKE"
	VSWhereVar = "KISS_VSWHERE"
	NoColorVar = "KISS_NO_COLOR"
	VerboseVar = "KISS_VERBOSE"
)

// Config is the tool configuration resolved from the environment.
type Config struct {
	// CMake is the cmake executable.
	CMake string
	// VSWhere is the vswhere.exe used to enumerate Visual Studio instances.
	VSWhere string
	NoColor bool
	Verbose bool
}

// Load seeds the environment from DotEnvFile in dir, when present, and
// returns the resulting Config.
func Load(dir string) (Config, error) {
	file := filepath.Join(dir, DotEnvFile)
	if _, err := os.Stat(file); err == nil {
		if err := godotenv.Load(file); err != nil {
			return Config{}, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current process environment.
func FromEnv() Config {
	return Config{
		CMake:   lookup(CMakeVar, "cmake"),
		VSWhere: lookup(VSWhereVar, DefaultVSWhere()),
		NoColor: flag(NoColorVar) || os.Getenv("NO_COLOR") != "",
		Verbose: flag(VerboseVar),
	}
}

// DefaultVSWhere returns the location the Visual Studio installer puts
// vswhere.exe in.
func DefaultVSWhere() string {
	root := os.Getenv("ProgramFiles(x86)")
	if root == "" {
		root = `C:\Program Files (x86)`
	}
	return filepath.Join(root, "Microsoft Visual Studio", "Installer", "vswhere.exe")
}

func lookup(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func flag(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
