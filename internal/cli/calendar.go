package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/calendar"
)

func newCalendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar <file | \"ISIN | amount\"...>",
		Short: "Build a payment calendar for a bond portfolio",
		Long: `Build a coupon and redemption payment timeline for a portfolio. Each
line holds an identifier and an optional bond count ("ISIN | amount", amount
defaults to 1). Lines come from a text file or directly as arguments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildCalendar(cmd, app, args)
		},
	}
}

func buildCalendar(cmd *cobra.Command, app *App, args []string) error {
	output := NewOutput(cmd)

	lines, err := portfolioLines(args)
	if err != nil {
		output.Error("%v", err)
		return err
	}

	positions, invalid := calendar.ParsePortfolio(lines)
	if len(invalid) > 0 {
		output.Warning("Skipped %d invalid identifier(s): %s", len(invalid), preview(invalid))
	}
	if len(positions) == 0 {
		output.Error("%v", apperrors.ErrEmptyBatch)
		return apperrors.ErrEmptyBatch
	}

	builder := calendar.NewBuilder(app.Client, app.Logger)
	timeline := builder.Build(cmd.Context(), positions)

	if output.IsJSON() {
		return output.JSON(timeline)
	}

	order := make([]string, 0, len(positions))
	for _, pos := range positions {
		order = append(order, pos.ISIN)
	}
	renderTimeline(output, timeline.Dates, timeline.Rows, order)
	if len(timeline.Failed) > 0 {
		output.Warning("No schedule for: %s", strings.Join(timeline.Failed, ", "))
	}
	return nil
}

func portfolioLines(args []string) ([]string, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return nil, apperrors.NewInputError(args[0], "unreadable file", err)
			}
			return strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n"), nil
		}
	}
	return args, nil
}
