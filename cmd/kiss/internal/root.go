package internal

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hud-software/kiss/internal/env"
	"github.com/hud-software/kiss/internal/logs"
	"github.com/hud-software/kiss/internal/process"
	"github.com/hud-software/kiss/internal/toolchain"
	"github.com/hud-software/kiss/pkgs/manifest"
)

var verbose bool

// cfg is resolved before any subcommand runs.
var cfg env.Config

// Replaced in tests.
var (
	newHost                = toolchain.NewHost
	runner  process.Runner = process.Exec
)

var rootCmd = &cobra.Command{
	Use:   "kiss",
	Short: "kiss scaffolds C++ projects and generates their CMake builds",
	Long: `kiss creates C++ library projects, writes the CMakeLists.txt describing them
and configures them with an installed Visual Studio toolchain.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print diagnostic traces")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	c, err := env.Load(wd)
	if err != nil {
		return err
	}
	cfg = c
	if cfg.NoColor {
		logs.DisableColor()
	}
	logs.SetVerbose(verbose || cfg.Verbose)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logs.Std().Error("%v", err)
		os.Exit(1)
	}
}

// tristate reports the value of a boolean flag, or Unset when the flag was
// not given.
func tristate(cmd *cobra.Command, name string, value bool) manifest.Tristate {
	if !cmd.Flags().Changed(name) {
		return manifest.Unset
	}
	return manifest.TristateOf(value)
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func projectPath(p string) (string, error) {
	if p != "" {
		return p, nil
	}
	return os.Getwd()
}
