package internal

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hud-software/kiss/internal/generator"
	"github.com/hud-software/kiss/internal/logs"
	"github.com/hud-software/kiss/internal/toolchain"
	"github.com/hud-software/kiss/pkgs/manifest"
)

var listPath string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generators, installed toolchains or project profiles",
}

var listGeneratorsCmd = &cobra.Command{
	Use:   "generators",
	Short: "List the generator names accepted by generate",
	Args:  cobra.NoArgs,
	RunE:  runListGenerators,
}

var listToolchainsCmd = &cobra.Command{
	Use:   "toolchains",
	Short: "List the Visual Studio installations found on this machine",
	Args:  cobra.NoArgs,
	RunE:  runListToolchains,
}

var listProfilesCmd = &cobra.Command{
	Use:   "profiles <name>",
	Short: "List the effective profiles of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runListProfiles,
}

func init() {
	listProfilesCmd.Flags().StringVarP(&listPath, "path", "p", "", "Parent directory of the project (default: current directory)")
	listCmd.AddCommand(listGeneratorsCmd, listToolchainsCmd, listProfilesCmd)
	rootCmd.AddCommand(listCmd)
}

func runListGenerators(cmd *cobra.Command, args []string) error {
	for _, k := range generator.Generators(generator.CMake) {
		logs.Std().Println(fmt.Sprintf("%s\t%s (%s)", generator.CMake, k, k.Alias()))
	}
	return nil
}

func runListToolchains(cmd *cobra.Command, args []string) error {
	installs, err := toolchain.List(cmd.Context(), newHost(cfg.VSWhere))
	if err != nil {
		return fmt.Errorf("failed to list toolchains: %w", err)
	}
	c := logs.Std()
	if len(installs) == 0 {
		c.Warn("No supported Visual Studio installation found")
		return nil
	}
	for _, inst := range installs {
		c.Println(fmt.Sprintf("%s\t%s\tcomplete=%t\tversion=%s", inst.Kind, inst.InstallationPath, inst.Complete, inst.ToolVersion))
	}
	return nil
}

func runListProfiles(cmd *cobra.Command, args []string) error {
	name := args[0]
	path, err := projectPath(listPath)
	if err != nil {
		return err
	}
	file, err := manifest.Locate(filepath.Join(path, name))
	if err != nil {
		return fmt.Errorf("failed to list profiles of %s: %w", name, err)
	}
	c := logs.Std()
	m, err := manifest.Load(file, func(err error) { c.Error("%v", err) })
	if err != nil {
		return fmt.Errorf("failed to list profiles of %s: %w", name, err)
	}
	for _, p := range m.Profiles.Names() {
		c.Println(fmt.Sprintf("%s\t%s", p, m.Profiles[p]))
	}
	return nil
}
