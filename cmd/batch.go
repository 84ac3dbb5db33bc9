package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/campaign-intel/internal/ingest"
	"github.com/sells-group/campaign-intel/internal/report"
)

var (
	batchManifestPath string
	batchOutDir       string
	batchConcurrency  int
	batchLimit        int
)

// batchJob is one entry in the batch manifest.
type batchJob struct {
	Campaign string `yaml:"campaign"`
	Calls    string `yaml:"calls"`
	Previous string `yaml:"previous,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze many campaigns concurrently from a manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := loadManifest(batchManifestPath)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			zap.L().Info("no jobs in manifest")
			return nil
		}

		if batchLimit > 0 && len(jobs) > batchLimit {
			jobs = jobs[:batchLimit]
		}

		if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
			return eris.Wrap(err, "create output dir")
		}

		zap.L().Info("processing batch",
			zap.Int("jobs", len(jobs)),
			zap.Int("concurrency", batchConcurrency),
		)

		g, _ := errgroup.WithContext(cmd.Context())
		g.SetLimit(batchConcurrency)

		var succeeded, failed atomic.Int64

		for _, job := range jobs {
			job := job
			g.Go(func() error {
				log := zap.L().With(zap.String("campaign", job.Campaign))

				if err := runJob(job); err != nil {
					failed.Add(1)
					log.Error("analysis failed", zap.Error(err))
					return nil // don't abort batch on individual failure
				}

				succeeded.Add(1)
				log.Info("analysis complete")
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch processing")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

// runJob analyzes one campaign and writes its report JSON to the output dir.
// Each job gets a fresh engine so id sequences never interleave.
func runJob(job batchJob) error {
	campaign, err := ingest.LoadCampaign(job.Campaign)
	if err != nil {
		return err
	}

	current, err := ingest.LoadCalls(job.Calls)
	if err != nil {
		return err
	}

	previous, err := loadOptionalCalls(job.Previous)
	if err != nil {
		return err
	}

	engine := report.New(campaign, cfg.Engine)
	rpt, err := engine.Analyze(current, previous)
	if err != nil {
		return err
	}

	out, err := engine.ExportJSON(rpt)
	if err != nil {
		return err
	}

	path := filepath.Join(batchOutDir, fmt.Sprintf("%s.json", campaign.CampaignID))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrap(err, "write report")
	}

	return nil
}

func loadManifest(path string) ([]batchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read manifest")
	}

	var jobs []batchJob
	if err := yaml.Unmarshal(data, &jobs); err != nil {
		return nil, eris.Wrap(err, "parse manifest")
	}

	for i, job := range jobs {
		if job.Campaign == "" || job.Calls == "" {
			return nil, eris.Errorf("manifest entry %d: campaign and calls are required", i)
		}
	}

	return jobs, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchManifestPath, "manifest", "", "YAML manifest listing campaigns to analyze")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "reports", "directory for report JSON files")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "number of campaigns analyzed in parallel")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max jobs to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(batchCmd)
}
