package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitisgeo/terroir-cli/internal/model"
	"github.com/vitisgeo/terroir-cli/internal/store"
)

var (
	runsStatus string
	runsRegion string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Region: runsRegion,
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its indicator summaries",
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

		out := struct {
			Run       *model.Run               `json:"run"`
			Summaries []model.IndicatorSummary `json:"summaries"`
		}{Run: run, Summaries: summaries}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (queued|running|completed|failed)")
	runsCmd.Flags().StringVar(&runsRegion, "region", "", "filter by region name")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
