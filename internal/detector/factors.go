package detector

import (
	"fmt"

	"github.com/sells-group/campaign-intel/internal/model"
)

// conversionFactors inspects sentiment, engagement, and per-script conversion
// to explain a low-conversion trigger.
func (d *Detector) conversionFactors(records []model.CallRecord) []string {
	var factors []string

	if avg := avgSentiment(records); len(records) > 0 && avg < 0 {
		factors = append(factors, fmt.Sprintf("Negative average sentiment score: %.2f", avg))
	}

	var completed []model.CallRecord
	for _, r := range records {
		if r.Status == model.StatusCompleted {
			completed = append(completed, r)
		}
	}
	if len(completed) > 0 {
		avgDur := avgDuration(completed)
		if avgDur < d.cfg.Detection.ShortCallSeconds {
			factors = append(factors,
				fmt.Sprintf("Very short call duration (%.1f min) suggests low engagement", avgDur/60))
		}
	}

	type scriptStats struct{ total, converted int }
	byScript := map[string]*scriptStats{}
	for _, r := range records {
		s, ok := byScript[r.ScriptVersion]
		if !ok {
			s = &scriptStats{}
			byScript[r.ScriptVersion] = s
		}
		s.total++
		if r.Converted() {
			s.converted++
		}
	}
	floor := d.campaign.TargetConversionRate * d.cfg.Detection.ScriptUnderperformRatio
	for script, s := range byScript {
		rate := float64(s.converted) / float64(s.total)
		if rate < floor {
			factors = append(factors,
				fmt.Sprintf("Script version %s has low conversion rate: %.1f%%", script, rate*100))
		}
	}

	if len(factors) == 0 {
		factors = append(factors, "Multiple factors affecting conversion - requires deeper analysis")
	}
	return factors
}

// dropOffFactors explains where and why calls are abandoned.
func (d *Detector) dropOffFactors(records []model.CallRecord, stage model.DropOffStage) []string {
	var factors []string

	if stage != "" {
		var stageDrops []model.CallRecord
		for _, r := range records {
			if r.DropOffStage == stage {
				stageDrops = append(stageDrops, r)
			}
		}
		if len(stageDrops) > 0 {
			avgDur := avgDuration(stageDrops)
			avgSent := avgSentiment(stageDrops)

			factors = append(factors, fmt.Sprintf("Stage '%s' has highest drop-off", stage))
			factors = append(factors, fmt.Sprintf("Average duration before drop: %.1f minutes", avgDur/60))

			if avgSent < -0.2 {
				factors = append(factors,
					fmt.Sprintf("Negative sentiment (%.2f) indicates user frustration", avgSent))
			}

			if stage == model.StageIntro && avgDur < 30 {
				factors = append(factors, "Intro too long or unengaging - users drop within 30 seconds")
			} else if stage == model.StagePitch && avgDur > 300 {
				factors = append(factors, "Pitch phase too lengthy - losing user attention")
			}
		}
	}

	if len(factors) == 0 {
		factors = append(factors, "High overall drop-off across multiple stages")
	}
	return factors
}

func avgDuration(records []model.CallRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += float64(r.DurationSeconds)
	}
	return sum / float64(len(records))
}

func avgSentiment(records []model.CallRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.SentimentScore
	}
	return sum / float64(len(records))
}

// worstDropStage returns the stage with the highest raw drop count.
func worstDropStage(byStage map[model.DropOffStage]int) (model.DropOffStage, int) {
	var worst model.DropOffStage
	worstCount := 0
	// Iterate in fixed stage order so ties resolve deterministically.
	for _, stage := range model.AllStages {
		if count := byStage[stage]; count > worstCount {
			worst = stage
			worstCount = count
		}
	}
	return worst, worstCount
}

// topEntry returns the most frequent key in counts, "Unknown" when empty.
func topEntry(counts map[string]int) (string, int) {
	top, topCount := "Unknown", 0
	for k, v := range counts {
		if v > topCount || (v == topCount && top != "Unknown" && k < top) {
			top = k
			topCount = v
		}
	}
	return top, topCount
}
