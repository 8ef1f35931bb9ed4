package cli

import (
	"fmt"
	"os"

	"github.com/connect-labs/ccli/internal/config"
	"github.com/connect-labs/ccli/internal/extension"
	"github.com/connect-labs/ccli/internal/report"
	"github.com/connect-labs/ccli/internal/validation"
	"github.com/spf13/cobra"
)

func init() {
	projectExtensionCmd.AddCommand(projectExtensionValidateCmd)
	projectCmd.AddCommand(projectExtensionCmd)
	rootCmd.AddCommand(projectCmd)
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Work with Connect projects",
}

var projectExtensionCmd = &cobra.Command{
	Use:     "extension",
	Aliases: []string{"ext"},
	Short:   "Work with extension projects",
}

var projectExtensionValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate an extension project",
	Long: `Validate an extension project directory (the current one by default).

The checks cover pyproject.toml, docker-compose.yml, the extension classes,
their events, schedulables and variables, the web application UI descriptor
and the Anvil callables. Findings are reported as warnings or errors; the
command fails when at least one error is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("reading project directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}

		s := config.Current()
		cfg := validation.Config{
			Loader: extension.NewSourceLoader(),
			Events: newConnectClient(s),
			Runner: newRunnerResolver(s),
			Logger: logger,
		}
		r := validation.Run(cmd.Context(), cfg, dir, validation.Validators)

		if err := report.Write(cmd.OutOrStdout(), r); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if r.HasErrors() {
			return fmt.Errorf("extension project %s is not valid", dir)
		}
		return nil
	},
}
