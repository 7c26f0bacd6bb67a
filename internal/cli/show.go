package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/highlight"
	"bondcheck/internal/models"
)

func newShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Re-display the last batch under the current threshold",
		Long: `Display the stored batch result without refetching anything. The
near-term threshold is recomputed from the current date and settings, so the
same batch can be re-examined under a different deal length.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showBatch(cmd, app)
		},
	}

	cmd.Flags().Bool("overnight", false, "overnight deal: fixed 3-day threshold")
	cmd.Flags().Int("days", 0, "deal length in days beyond settlement (2-366)")
	cmd.Flags().Bool("near-term-only", false, "show only rows with a key date inside the window")
	return cmd
}

func showBatch(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)

	result, storedCfg, err := loadStored(app)
	if err != nil {
		output.Error("%v", err)
		return err
	}

	hcfg, err := overrideStored(cmd, storedCfg)
	if err != nil {
		return err
	}

	rows := highlight.ClassifyAll(result.Records, hcfg, models.Today())

	nearTermOnly, _ := cmd.Flags().GetBool("near-term-only")
	records := result.Records
	if nearTermOnly {
		records, rows = filterNearTerm(records, rows)
	}

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"records":    records,
			"unresolved": result.Unresolved,
			"threshold":  highlight.Threshold(hcfg, models.Today()).String(),
		})
	}

	renderRecords(output, records, rows)
	output.Printf("\n%d record(s), threshold today+%dd\n", len(records), hcfg.ThresholdDays())
	if len(result.Unresolved) > 0 {
		output.Warning("Unresolved: %s", strings.Join(result.Unresolved, ", "))
	}
	return nil
}

func loadStored(app *App) (models.BatchResult, models.HighlightConfig, error) {
	if app.Store == nil {
		return models.BatchResult{}, models.HighlightConfig{}, apperrors.ErrNoStoredResult
	}
	return app.Store.Latest()
}

// overrideStored applies command flags on top of the settings the batch was
// stored with.
func overrideStored(cmd *cobra.Command, stored models.HighlightConfig) (models.HighlightConfig, error) {
	hcfg := stored
	if cmd.Flags().Changed("overnight") {
		hcfg.Overnight, _ = cmd.Flags().GetBool("overnight")
	}
	if cmd.Flags().Changed("days") {
		hcfg.ExtraDays, _ = cmd.Flags().GetInt("days")
	}
	if hcfg.ExtraDays < 2 || hcfg.ExtraDays > 366 {
		return hcfg, fmt.Errorf("days must be between 2 and 366, got %d", hcfg.ExtraDays)
	}
	return hcfg, nil
}

func filterNearTerm(records []models.SecurityRecord, rows []highlight.Row) ([]models.SecurityRecord, []highlight.Row) {
	var outRecords []models.SecurityRecord
	var outRows []highlight.Row
	for i, row := range rows {
		if row.AnyNearTerm() {
			outRecords = append(outRecords, records[i])
			outRows = append(outRows, row)
		}
	}
	return outRecords, outRows
}
