package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/highlight"
	"bondcheck/internal/input"
	"bondcheck/internal/models"
	"bondcheck/internal/pipeline"
	"bondcheck/internal/refdata"
	"bondcheck/internal/resolve"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.csv|file.xlsx | ISIN...>",
		Short: "Resolve a batch of identifiers and store the result",
		Long: `Resolve every identifier against the market-data provider, consolidate
key dates into one record per identifier, and store the batch for later
display and export. Identifiers come either from a CSV/XLSX file with an
ISIN column or directly as arguments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, app, args)
		},
	}

	cmd.Flags().Bool("overnight", false, "overnight deal: fixed 3-day threshold")
	cmd.Flags().Int("days", 0, "deal length in days beyond settlement (2-366)")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	return cmd
}

func runBatch(cmd *cobra.Command, app *App, args []string) error {
	output := NewOutput(cmd)

	hcfg, err := effectiveHighlightConfig(cmd, app)
	if err != nil {
		return err
	}

	batch, err := loadBatch(args)
	if err != nil {
		// Input errors are fatal to the batch and reported before any
		// network call; a previously stored result stays untouched.
		output.Error("%v", err)
		return err
	}
	if len(batch.Invalid) > 0 {
		output.Warning("Skipped %d invalid identifier(s): %s", len(batch.Invalid), preview(batch.Invalid))
	}
	if len(batch.Identifiers) == 0 {
		output.Error("%v", apperrors.ErrEmptyBatch)
		return apperrors.ErrEmptyBatch
	}

	assembler := resolve.NewAssembler(app.Client, app.Logger)
	pipe := pipeline.New(assembler, app.Logger)

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if !noProgress && !output.IsJSON() {
		bar := progressbar.NewOptions(len(batch.Identifiers),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("resolving"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		pipe.OnProgress(func(completed, total int) {
			_ = bar.Set(completed)
		})
		defer bar.Finish()
	}

	result := pipe.Run(cmd.Context(), batch.Identifiers)

	if app.Config.RefData.Enabled && app.Config.RefData.EmitterURL != "" {
		dir, err := refdata.Fetch(cmd.Context(), app.Config.RefData.EmitterURL, app.Logger)
		if err != nil {
			app.Logger.Warn().Err(err).Msg("Issuer reference unavailable, records left unannotated")
		} else {
			dir.Annotate(result.Records)
		}
	}

	if app.Store != nil {
		if err := app.Store.Save(result, hcfg); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to persist batch result")
		}
	}

	if output.IsJSON() {
		return output.JSON(result)
	}

	rows := highlight.ClassifyAll(result.Records, hcfg, models.Today())
	renderRecords(output, result.Records, rows)
	output.Printf("\n%d record(s), threshold today+%dd\n", len(result.Records), hcfg.ThresholdDays())
	if len(result.Unresolved) > 0 {
		output.Warning("Unresolved after two passes: %s", strings.Join(result.Unresolved, ", "))
	}
	return nil
}

// loadBatch reads identifiers from a file argument or from the arguments
// themselves.
func loadBatch(args []string) (input.Batch, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return input.ReadFile(args[0])
		}
	}
	return input.Parse(strings.Join(args, " ")), nil
}

func effectiveHighlightConfig(cmd *cobra.Command, app *App) (models.HighlightConfig, error) {
	overnight, extraDays := app.highlightConfig(cmd)
	if extraDays < 2 || extraDays > 366 {
		return models.HighlightConfig{}, fmt.Errorf("days must be between 2 and 366, got %d", extraDays)
	}
	return models.HighlightConfig{Overnight: overnight, ExtraDays: extraDays}, nil
}

func preview(ids []string) string {
	const limit = 10
	if len(ids) <= limit {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:limit], ", ") + "..."
}
