package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/campaign-intel/internal/model"
)

// ValidateEngineConfig checks that an EngineConfig is internally consistent.
func ValidateEngineConfig(c EngineConfig) error {
	var errs []string

	// Rates must be proportions.
	rates := map[string]float64{
		"benchmarks.conversion_rate": c.Benchmarks.ConversionRate,
		"benchmarks.completion_rate": c.Benchmarks.CompletionRate,
		"benchmarks.escalation_rate": c.Benchmarks.EscalationRate,
		"benchmarks.compliance_rate": c.Benchmarks.ComplianceRate,
		"detection.drop_off_rate":    c.Detection.DropOffRate,
		"detection.failure_rate":     c.Detection.FailureRate,
	}
	for name, r := range rates {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0,1], got %.3f", name, r))
		}
	}

	// All weights must be non-negative.
	weights := map[string]float64{
		"weights.conversion": c.Weights.Conversion,
		"weights.revenue":    c.Weights.Revenue,
		"weights.compliance": c.Weights.Compliance,
		"weights.efficiency": c.Weights.Efficiency,
		"weights.quality":    c.Weights.Quality,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// Weights must sum to 1 (allow tolerance for floating-point).
	if sum := c.Weights.Sum(); math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Sprintf("health weights should sum to 1.0, got %.3f", sum))
	}

	// Thresholds.
	if c.Detection.ConversionVariance <= 0 {
		errs = append(errs, "detection.conversion_variance must be > 0")
	}
	if c.Detection.EscalationMultiplier <= 0 {
		errs = append(errs, "detection.escalation_multiplier must be > 0")
	}

	// Costs.
	costs := map[string]float64{
		"costs.escalation_agent_cost": c.Costs.EscalationAgentCost,
		"costs.compliance_risk_unit":  c.Costs.ComplianceRiskUnit,
		"costs.compliance_fine_unit":  c.Costs.ComplianceFineUnit,
		"costs.engineering_fix_cost":  c.Costs.EngineeringFixCost,
	}
	for name, v := range costs {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// Recovery coefficients must be proportions.
	for reason, p := range c.Recovery.Potential {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("recovery.potential[%s] must be in [0,1], got %.3f", reason, p))
		}
	}

	// Every funnel stage needs a conversion probability.
	for _, stage := range model.AllStages {
		p, ok := c.Recovery.StageProbability[stage]
		if !ok {
			errs = append(errs, fmt.Sprintf("recovery.stage_probability missing stage %q", stage))
			continue
		}
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("recovery.stage_probability[%s] must be in [0,1], got %.3f", stage, p))
		}
	}

	// Alert thresholds: drops are signed negative, spikes positive.
	if c.Alerts.RevenueDropPct >= 0 {
		errs = append(errs, "alerts.revenue_drop_pct must be < 0")
	}
	if c.Alerts.ConversionDropPct >= 0 {
		errs = append(errs, "alerts.conversion_drop_pct must be < 0")
	}
	if c.Alerts.HealthScoreDropPts >= 0 {
		errs = append(errs, "alerts.health_score_drop_pts must be < 0")
	}
	spikes := map[string]float64{
		"alerts.leakage_increase_pct": c.Alerts.LeakageIncreasePct,
		"alerts.drop_off_spike_pct":   c.Alerts.DropOffSpikePct,
		"alerts.escalation_spike_pct": c.Alerts.EscalationSpikePct,
		"alerts.failure_spike_pct":    c.Alerts.FailureSpikePct,
	}
	for name, v := range spikes {
		if v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0", name))
		}
	}

	// Duration band.
	if c.Scoring.IdealDurationMinSecs <= 0 || c.Scoring.IdealDurationMaxSecs <= c.Scoring.IdealDurationMinSecs {
		errs = append(errs, "scoring ideal duration band must satisfy 0 < min < max")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: engine validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
