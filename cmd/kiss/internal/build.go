package internal

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hud-software/kiss/internal/generator"
	"github.com/hud-software/kiss/pkgs/manifest"
)

var (
	buildPath    string
	buildProfile string
	buildTimeout time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build <name>",
	Short: "Build a generated project",
	Long:  `Build runs "cmake --build" in <path>/<name>/target with the configuration of the profile.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildPath, "path", "p", "", "Parent directory of the project (default: current directory)")
	buildCmd.Flags().StringVar(&buildProfile, "profile", manifest.DefaultProfileName, "Manifest profile to build")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 0, "Abort the build after this duration (0 means no limit)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	name := args[0]
	path, err := projectPath(buildPath)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), buildTimeout)
	defer cancel()

	err = newGenerator().Build(ctx, generator.Options{
		Path:    path,
		Name:    name,
		Backend: generator.CMake,
		Profile: buildProfile,
	})
	if err != nil {
		return fmt.Errorf("failed to build project %s: %w", name, err)
	}
	return nil
}
