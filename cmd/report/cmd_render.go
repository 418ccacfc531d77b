package main

import (
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the report site once and exit",
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	meta, err := a.pipeline.Render(cmd.Context())
	if err != nil {
		return err
	}
	a.logger.Info("render complete",
		"dir", a.cfg.OutputDir,
		"locations", meta.Locations,
		"historic_rows", meta.HistoricRows,
		"nearterm_rows", meta.NearTermRows,
		"fallback_rows", meta.FallbackRows,
	)
	return nil
}
