package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/connect-labs/ccli/internal/config"
	"github.com/connect-labs/ccli/internal/extension"
	"github.com/spf13/cobra"
)

var (
	checkConfig     bool
	checkAPI        bool
	checkRunner     bool
	checkDescriptor string
)

func init() {
	doctorCmd.Flags().BoolVar(&checkConfig, "check-config", false, "Verify the config file and API key")
	doctorCmd.Flags().BoolVar(&checkAPI, "check-api", false, "Verify the platform API is reachable with the configured key")
	doctorCmd.Flags().BoolVar(&checkRunner, "check-runner", false, "Resolve the runner version extensions must pin")
	doctorCmd.Flags().StringVar(&checkDescriptor, "check-descriptor", "", "Validate an extension.json file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the CLI setup",
	Long:  `Run diagnostic checks on the configuration and the services the CLI talks to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s := config.Current()
		anyFlag := checkConfig || checkAPI || checkRunner || checkDescriptor != ""

		if !anyFlag || checkConfig {
			runConfigCheck(out, s)
		}
		if !anyFlag || checkAPI {
			runAPICheck(cmd, out, s)
		}
		if !anyFlag || checkRunner {
			runRunnerCheck(cmd, out, s)
		}
		if checkDescriptor != "" {
			return runDescriptorCheck(out, checkDescriptor)
		}
		return nil
	},
}

func runConfigCheck(out io.Writer, s config.Settings) {
	fmt.Fprintln(out, "Config check:")
	if _, err := os.Stat(config.FilePath()); err != nil {
		fmt.Fprintf(out, "  [INFO] %s not found, using defaults and environment\n", config.FilePath())
	} else {
		fmt.Fprintf(out, "  [ OK ] %s\n", config.FilePath())
	}
	fmt.Fprintf(out, "  [ OK ] API endpoint %s\n", s.APIEndpoint)
	if s.APIKey == "" {
		fmt.Fprintf(out, "  [WARN] No API key configured (set %s)\n", config.KeyAPIKey)
	} else {
		fmt.Fprintln(out, "  [ OK ] API key configured")
	}
}

func runAPICheck(cmd *cobra.Command, out io.Writer, s config.Settings) {
	fmt.Fprintln(out, "API check:")
	defs, err := newConnectClient(s).EventDefinitions(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return
	}
	fmt.Fprintf(out, "  [ OK ] %d event definitions available\n", len(defs))
}

func runRunnerCheck(cmd *cobra.Command, out io.Writer, s config.Settings) {
	fmt.Fprintln(out, "Runner check:")
	version, err := newRunnerResolver(s).LatestRunnerVersion(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return
	}
	source := "PyPI"
	if s.RunnerVersion != "" {
		source = config.KeyRunnerVersion
	}
	fmt.Fprintf(out, "  [ OK ] runner %s (from %s)\n", version, source)
}

func runDescriptorCheck(out io.Writer, path string) error {
	fmt.Fprintf(out, "Descriptor validation: %s\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return fmt.Errorf("reading descriptor: %w", err)
	}
	d, err := extension.ParseDescriptor(filepath.Clean(path), data)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return err
	}
	issues, err := extension.ValidateDescriptor(d)
	if err != nil {
		return fmt.Errorf("validating descriptor: %w", err)
	}
	if len(issues) == 0 {
		fmt.Fprintln(out, "  [ OK ] Valid extension descriptor")
		return nil
	}

	fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(out, "    - %s\n", issue)
	}
	return fmt.Errorf("descriptor %s has %d validation issue(s)", path, len(issues))
}
