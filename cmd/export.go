package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitisgeo/terroir-cli/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		summaries, err := st.ListSummaries(ctx, args[0])
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			return eris.Errorf("run %s has no summaries to export", args[0])
		}

		if err := export.WriteWorkbook(exportOut, run, summaries, nil); err != nil {
			return err
		}
		zap.L().Info("workbook written", zap.String("path", exportOut), zap.String("run_id", run.ID))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "run.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
