package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/campaign-intel/internal/ingest"
	"github.com/sells-group/campaign-intel/internal/model"
	"github.com/sells-group/campaign-intel/internal/report"
)

var (
	analyzeCallsPath    string
	analyzePreviousPath string
	analyzeCampaignPath string
	analyzeFormat       string
	analyzeOutput       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full intelligence analysis on a call log",
	RunE: func(cmd *cobra.Command, args []string) error {
		campaign, err := ingest.LoadCampaign(analyzeCampaignPath)
		if err != nil {
			return err
		}

		current, err := ingest.LoadCalls(analyzeCallsPath)
		if err != nil {
			return err
		}

		prevRecords, err := loadOptionalCalls(analyzePreviousPath)
		if err != nil {
			return err
		}

		engine := report.New(campaign, cfg.Engine)

		rpt, err := engine.Analyze(current, prevRecords)
		if err != nil {
			return err
		}

		var out []byte
		switch analyzeFormat {
		case "text":
			out = []byte(engine.ExportText(rpt))
		case "json":
			out, err = engine.ExportJSON(rpt)
		case "yaml":
			out, err = engine.ExportYAML(rpt)
		default:
			return eris.Errorf("unknown format %q (want text, json, or yaml)", analyzeFormat)
		}
		if err != nil {
			return err
		}

		if analyzeOutput != "" {
			if err := os.WriteFile(analyzeOutput, out, 0o644); err != nil {
				return eris.Wrap(err, "write report")
			}
			zap.L().Info("report written",
				zap.String("path", analyzeOutput),
				zap.String("report_id", rpt.ReportID),
			)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// loadOptionalCalls loads a call log when a path was given, nil otherwise.
func loadOptionalCalls(path string) ([]model.CallRecord, error) {
	if path == "" {
		return nil, nil
	}
	return ingest.LoadCalls(path)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCallsPath, "calls", "", "call log for the current period (xlsx, csv, or json)")
	analyzeCmd.Flags().StringVar(&analyzePreviousPath, "previous", "", "call log for the previous period (optional)")
	analyzeCmd.Flags().StringVar(&analyzeCampaignPath, "campaign", "", "campaign config YAML")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text, json, or yaml")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write report to file instead of stdout")
	_ = analyzeCmd.MarkFlagRequired("calls")
	_ = analyzeCmd.MarkFlagRequired("campaign")
	rootCmd.AddCommand(analyzeCmd)
}
