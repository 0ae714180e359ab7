package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hud-software/kiss/internal/logs"
	"github.com/hud-software/kiss/internal/project"
	"github.com/hud-software/kiss/pkgs/manifest"
)

var (
	newPath      string
	newCoverage  bool
	newSanitizer bool
	newYAML      bool
)

var newCmd = &cobra.Command{
	Use:   "new <bin|lib|dyn> <name>",
	Short: "Create a new project",
	Long: `New creates the directory <path>/<name> with a kiss.json manifest and the
interfaces, sources and tests directories. Library projects are populated with
a small example and its unit test.`,
	Args: cobra.ExactArgs(2),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVarP(&newPath, "path", "p", "", "Parent directory of the project (default: current directory)")
	newCmd.Flags().BoolVar(&newCoverage, "cov", false, "Record coverage for the debug profile")
	newCmd.Flags().BoolVar(&newSanitizer, "san", false, "Record sanitizer for the debug profile")
	newCmd.Flags().BoolVar(&newYAML, "yaml", false, "Write kiss.yaml instead of kiss.json")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	kind, err := project.ParseKind(args[0])
	if err != nil {
		return err
	}
	name := args[1]
	path, err := projectPath(newPath)
	if err != nil {
		return err
	}

	opts := project.Options{
		Path: path,
		Name: name,
		Kind: kind,
		Profile: manifest.Profile{
			Sanitizer: tristate(cmd, "san", newSanitizer),
			Coverage:  tristate(cmd, "cov", newCoverage),
		},
	}
	if newYAML {
		opts.Format = manifest.YAML
	}
	if _, err := project.Create(opts, logs.Std()); err != nil {
		return fmt.Errorf("failed to create project %s: %w", name, err)
	}
	return nil
}
