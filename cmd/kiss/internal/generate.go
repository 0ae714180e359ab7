package internal

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hud-software/kiss/internal/generator"
	"github.com/hud-software/kiss/internal/logs"
	"github.com/hud-software/kiss/internal/toolchain"
	"github.com/hud-software/kiss/pkgs/manifest"
)

var (
	genPath      string
	genCoverage  bool
	genSanitizer bool
	genProfile   string
	genTimeout   time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the build files of a project",
}

var generateCMakeCmd = &cobra.Command{
	Use:   "cmake <name> <generator>",
	Short: "Write target/CMakeLists.txt and configure it with cmake",
	Long: `Generate writes <path>/<name>/target/CMakeLists.txt, finds the requested
Visual Studio toolchain and runs cmake in the target directory.

Run "kiss list generators" for the accepted generator names.`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerateCMake,
}

func init() {
	f := generateCMakeCmd.Flags()
	f.StringVarP(&genPath, "path", "p", "", "Parent directory of the project (default: current directory)")
	f.BoolVar(&genCoverage, "cov", false, "Enable or disable coverage on top of the profile")
	f.BoolVar(&genSanitizer, "san", false, "Enable or disable the sanitizer on top of the profile")
	f.StringVar(&genProfile, "profile", manifest.DefaultProfileName, "Manifest profile to generate")
	f.DurationVar(&genTimeout, "timeout", 0, "Abort cmake after this duration (0 means no limit)")
	generateCmd.AddCommand(generateCMakeCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerateCMake(cmd *cobra.Command, args []string) error {
	name := args[0]
	kind, err := toolchain.ParseKind(args[1])
	if err != nil {
		return err
	}
	path, err := projectPath(genPath)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), genTimeout)
	defer cancel()

	g := newGenerator()
	err = g.Generate(ctx, generator.Options{
		Path:    path,
		Name:    name,
		Backend: generator.CMake,
		Kind:    kind,
		Profile: genProfile,
		Overrides: manifest.Profile{
			Sanitizer: tristate(cmd, "san", genSanitizer),
			Coverage:  tristate(cmd, "cov", genCoverage),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to generate project %s: %w", name, err)
	}
	return nil
}

func newGenerator() *generator.Generator {
	return &generator.Generator{
		Host:    newHost(cfg.VSWhere),
		CMake:   cfg.CMake,
		Console: logs.Std(),
		Runner:  runner,
	}
}
