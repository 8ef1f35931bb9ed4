package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/connect-labs/ccli/internal/config"
	"github.com/connect-labs/ccli/internal/stats"
	"github.com/connect-labs/ccli/internal/translation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncWorksheet string
	syncOutput    string
	syncSilent    bool
)

func init() {
	translationSyncCmd.Flags().StringVar(&syncWorksheet, "worksheet", translation.DefaultSheet, "Worksheet holding the attributes")
	translationSyncCmd.Flags().StringVarP(&syncOutput, "output", "o", "", "Write the marked workbook here (default: overwrite the input)")
	translationSyncCmd.Flags().BoolVarP(&syncSilent, "silent", "s", false, "Do not show progress")
	translationCmd.AddCommand(translationSyncCmd)
	rootCmd.AddCommand(translationCmd)
}

var translationCmd = &cobra.Command{
	Use:     "translation",
	Aliases: []string{"tr"},
	Short:   "Work with localization translations",
}

var translationSyncCmd = &cobra.Command{
	Use:   "sync-attributes <translation-id> <input.xlsx>",
	Short: "Send spreadsheet attribute updates to a translation",
	Long: `Read the attributes worksheet of an xlsx workbook and send every row whose
action is "update" to the translation in a single request. Sent rows are
marked with "-" in the action column and the workbook is saved again.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		translationID, input := args[0], args[1]
		output := syncOutput
		if output == "" {
			output = input
		}

		st := stats.New(translation.StatsModule)
		var progress io.Writer
		if !syncSilent {
			progress = os.Stderr
		}
		sync := translation.NewSynchronizer(newConnectClient(config.Current()),
			translation.WithStats(st),
			translation.WithProgress(progress),
			translation.WithLogger(logger),
		)
		defer func() {
			if err := sync.Close(); err != nil {
				logger.Warn("closing workbook", zap.Error(err))
			}
		}()

		if err := sync.Open(input, syncWorksheet); err != nil {
			if errors.Is(err, translation.ErrSheetNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return nil
			}
			return err
		}
		if err := sync.Sync(cmd.Context(), translationID); err != nil {
			return fmt.Errorf("synchronizing attributes: %w", err)
		}
		if err := sync.Save(output); err != nil {
			return err
		}

		if err := st.Render(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("rendering stats: %w", err)
		}
		if st.HasErrors() {
			return errors.New("some attributes could not be synchronized")
		}
		return nil
	},
}
