package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"magnet-bot/internal/domain"
)

func newRenderCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "render <downloading|resumed|completed>",
		Short:     "Render one status report to a PNG file without Telegram",
		Args:      cobra.ExactArgs(1),
		ValidArgs: reportNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseReportKind(args[0])
			if err != nil {
				return err
			}

			cfg, logger, err := setup(true)
			if err != nil {
				return err
			}

			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.shutdown()

			png, err := a.bot.RenderReport(cmd.Context(), kind)
			if err != nil {
				return fmt.Errorf("render %s: %w", kind, err)
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(png))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "report.png", "output file")
	return cmd
}

func reportNames() []string {
	names := make([]string, 0, len(domain.ReportKinds))
	for _, k := range domain.ReportKinds {
		names = append(names, k.String())
	}
	return names
}
