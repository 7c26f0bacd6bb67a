package cli

import (
	"github.com/spf13/cobra"

	"bondcheck/internal/export"
	"bondcheck/internal/highlight"
	"bondcheck/internal/models"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <out.csv|out.xlsx>",
		Short: "Export the last batch to a spreadsheet file",
		Long: `Write the stored batch result to a CSV or XLSX file: one row per
record, one column per field. The export carries no highlight styling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportBatch(cmd, app, args[0])
		},
	}

	cmd.Flags().Bool("near-term-only", false, "export only rows with a key date inside the window")
	cmd.Flags().Bool("overnight", false, "overnight deal: fixed 3-day threshold")
	cmd.Flags().Int("days", 0, "deal length in days beyond settlement (2-366)")
	return cmd
}

func exportBatch(cmd *cobra.Command, app *App, path string) error {
	output := NewOutput(cmd)

	result, storedCfg, err := loadStored(app)
	if err != nil {
		output.Error("%v", err)
		return err
	}

	records := result.Records
	if nearTermOnly, _ := cmd.Flags().GetBool("near-term-only"); nearTermOnly {
		hcfg, err := overrideStored(cmd, storedCfg)
		if err != nil {
			return err
		}
		rows := highlight.ClassifyAll(records, hcfg, models.Today())
		records, _ = filterNearTerm(records, rows)
	}

	if err := export.WriteFile(path, records); err != nil {
		output.Error("%v", err)
		return err
	}
	output.Success("Exported %d record(s) to %s", len(records), path)
	return nil
}
