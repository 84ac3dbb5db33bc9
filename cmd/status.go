package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/campaign-intel/internal/ingest"
	"github.com/sells-group/campaign-intel/internal/report"
)

var (
	statusCallsPath    string
	statusCampaignPath string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Quick health check without full analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		campaign, err := ingest.LoadCampaign(statusCampaignPath)
		if err != nil {
			return err
		}

		calls, err := ingest.LoadCalls(statusCallsPath)
		if err != nil {
			return err
		}

		engine := report.New(campaign, cfg.Engine)
		status, err := engine.Status(calls)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal status")
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusCallsPath, "calls", "", "call log to check (xlsx, csv, or json)")
	statusCmd.Flags().StringVar(&statusCampaignPath, "campaign", "", "campaign config YAML")
	_ = statusCmd.MarkFlagRequired("calls")
	_ = statusCmd.MarkFlagRequired("campaign")
	rootCmd.AddCommand(statusCmd)
}
