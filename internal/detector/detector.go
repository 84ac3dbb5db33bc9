// Package detector compares a metrics snapshot and its raw records against
// benchmarks and campaign targets, emitting a PerformanceIssue for every
// trigger condition that holds. Detection is stateless and re-entrant.
package detector

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

// Detector runs the five issue checks for one campaign.
type Detector struct {
	campaign model.CampaignConfig
	cfg      config.EngineConfig
}

// New creates a Detector for the given campaign and engine rules.
func New(campaign model.CampaignConfig, cfg config.EngineConfig) *Detector {
	return &Detector{campaign: campaign, cfg: cfg}
}

// Detect runs every check and returns the issues whose trigger condition
// holds. Running it twice on identical inputs yields an identical issue set
// modulo ids and timestamps.
func (d *Detector) Detect(m model.PerformanceMetrics, records []model.CallRecord) []model.PerformanceIssue {
	var issues []model.PerformanceIssue

	if issue, ok := d.checkConversion(m, records); ok {
		issues = append(issues, issue)
	}
	if issue, ok := d.checkDropOff(m, records); ok {
		issues = append(issues, issue)
	}
	if issue, ok := d.checkEscalation(m, records); ok {
		issues = append(issues, issue)
	}
	if issue, ok := d.checkCompliance(m, records); ok {
		issues = append(issues, issue)
	}
	if issue, ok := d.checkTechnical(m); ok {
		issues = append(issues, issue)
	}

	zap.L().Debug("detector: detection complete",
		zap.String("campaign_id", d.campaign.CampaignID),
		zap.Int("issues", len(issues)),
	)

	return issues
}

func (d *Detector) checkConversion(m model.PerformanceMetrics, records []model.CallRecord) (model.PerformanceIssue, bool) {
	target := d.campaign.TargetConversionRate
	actual := m.ConversionRate

	var variance float64
	if target > 0 {
		variance = (target - actual) / target
	}
	if variance <= d.cfg.Detection.ConversionVariance {
		return model.PerformanceIssue{}, false
	}

	lostConversions := (target - actual) * float64(m.TotalCalls)
	impact := lostConversions * d.campaign.AvgDealValue

	return model.PerformanceIssue{
		IssueID:          d.issueID("CONV"),
		CampaignID:       d.campaign.CampaignID,
		Kind:             model.IssueLowConversion,
		Severity:         d.severity(impact, m.TotalRevenue),
		DetectedAt:       time.Now().UTC(),
		AffectedCalls:    m.TotalCalls,
		RevenueImpact:    impact,
		ConversionImpact: variance,
		RootCause: fmt.Sprintf("Conversion rate %.1f%% is %.1f%% below target %.1f%%",
			actual*100, variance*100, target*100),
		ContributingFactors: d.conversionFactors(records),
		Evidence: map[string]any{
			"target_rate":      target,
			"actual_rate":      actual,
			"variance":         variance,
			"lost_conversions": lostConversions,
		},
	}, true
}

func (d *Detector) checkDropOff(m model.PerformanceMetrics, records []model.CallRecord) (model.PerformanceIssue, bool) {
	rate := m.DropOffRate()
	if rate <= d.cfg.Detection.DropOffRate {
		return model.PerformanceIssue{}, false
	}

	worstStage, worstCount := worstDropStage(m.DropOffByStage)

	// A fixed share of dropped calls is assumed to have been a missed
	// target-rate conversion.
	potentialConversions := float64(m.DroppedCalls) * d.campaign.TargetConversionRate * d.cfg.Detection.DroppedConversionShare
	impact := potentialConversions * d.campaign.AvgDealValue

	byStage := make(map[string]int, len(m.DropOffByStage))
	for stage, count := range m.DropOffByStage {
		byStage[string(stage)] = count
	}

	return model.PerformanceIssue{
		IssueID:          d.issueID("DROP"),
		CampaignID:       d.campaign.CampaignID,
		Kind:             model.IssueHighDropOff,
		Severity:         d.severity(impact, m.TotalRevenue),
		DetectedAt:       time.Now().UTC(),
		AffectedCalls:    m.DroppedCalls,
		RevenueImpact:    impact,
		ConversionImpact: rate,
		RootCause: fmt.Sprintf("High drop-off rate of %.1f%% (threshold: %.1f%%)",
			rate*100, d.cfg.Detection.DropOffRate*100),
		ContributingFactors: d.dropOffFactors(records, worstStage),
		ProblematicStage:    worstStage,
		Evidence: map[string]any{
			"drop_off_rate":     rate,
			"worst_stage":       string(worstStage),
			"worst_stage_count": worstCount,
			"drop_off_by_stage": byStage,
		},
	}, true
}

func (d *Detector) checkEscalation(m model.PerformanceMetrics, records []model.CallRecord) (model.PerformanceIssue, bool) {
	rate := m.EscalationRate()
	benchmark := d.cfg.Benchmarks.EscalationRate
	if rate <= benchmark*d.cfg.Detection.EscalationMultiplier {
		return model.PerformanceIssue{}, false
	}

	reasons := map[string]int{}
	for _, r := range records {
		if r.Status == model.StatusEscalated && r.EscalationReason != "" {
			reasons[r.EscalationReason]++
		}
	}
	topReason, topCount := topEntry(reasons)

	impact := float64(m.EscalatedCalls) * d.cfg.Costs.EscalationAgentCost

	factors := []string{
		fmt.Sprintf("Top escalation reason: %s (%d calls)", topReason, topCount),
		fmt.Sprintf("Escalation rate %.1f%% vs benchmark %.1f%%", rate*100, benchmark*100),
		"Bot unable to handle complex objections or questions",
	}

	return model.PerformanceIssue{
		IssueID:       d.issueID("ESC"),
		CampaignID:    d.campaign.CampaignID,
		Kind:          model.IssueEscalationSpike,
		Severity:      d.severity(impact, m.TotalRevenue),
		DetectedAt:    time.Now().UTC(),
		AffectedCalls: m.EscalatedCalls,
		RevenueImpact: impact,
		RootCause: fmt.Sprintf("Escalation rate %.1f%% is %.1f%% above benchmark",
			rate*100, (rate/benchmark-1)*100),
		ContributingFactors: factors,
		Evidence: map[string]any{
			"escalation_rate":    rate,
			"escalation_reasons": reasons,
			"top_reason":         topReason,
		},
	}, true
}

func (d *Detector) checkCompliance(m model.PerformanceMetrics, records []model.CallRecord) (model.PerformanceIssue, bool) {
	rate := m.ComplianceRate()
	if rate >= d.cfg.Benchmarks.ComplianceRate {
		return model.PerformanceIssue{}, false
	}

	flags := map[string]int{}
	for _, r := range records {
		if r.Status == model.StatusComplianceViolation {
			for _, f := range r.ComplianceFlags {
				flags[f]++
			}
		}
	}
	topViolation, topCount := topEntry(flags)

	impact := float64(m.ComplianceViolations) * d.cfg.Costs.ComplianceRiskUnit

	factors := []string{
		fmt.Sprintf("Most common violation: %s (%d occurrences)", topViolation, topCount),
		fmt.Sprintf("Compliance rate %.1f%% vs required %.1f%%", rate*100, d.cfg.Benchmarks.ComplianceRate*100),
		"Risk of regulatory fines and brand damage",
	}

	return model.PerformanceIssue{
		IssueID:       d.issueID("COMP"),
		CampaignID:    d.campaign.CampaignID,
		Kind:          model.IssueComplianceRisk,
		Severity:      model.SeverityCritical, // compliance overrides the impact table
		DetectedAt:    time.Now().UTC(),
		AffectedCalls: m.ComplianceViolations,
		RevenueImpact: impact,
		RootCause: fmt.Sprintf("Compliance rate %.1f%% below required %.1f%%",
			rate*100, d.cfg.Benchmarks.ComplianceRate*100),
		ContributingFactors: factors,
		Evidence: map[string]any{
			"compliance_rate": rate,
			"violation_types": flags,
			"top_violation":   topViolation,
		},
	}, true
}

func (d *Detector) checkTechnical(m model.PerformanceMetrics) (model.PerformanceIssue, bool) {
	rate := m.FailureRate()
	if rate <= d.cfg.Detection.FailureRate {
		return model.PerformanceIssue{}, false
	}

	impact := float64(m.FailedCalls) * d.campaign.TargetRevenuePerCall

	factors := []string{
		fmt.Sprintf("%d calls failed to complete due to technical issues", m.FailedCalls),
		"Potential infrastructure, API, or telephony problems",
		fmt.Sprintf("Failure rate: %.1f%%", rate*100),
	}

	return model.PerformanceIssue{
		IssueID:             d.issueID("TECH"),
		CampaignID:          d.campaign.CampaignID,
		Kind:                model.IssueTechnicalError,
		Severity:            d.severity(impact, m.TotalRevenue),
		DetectedAt:          time.Now().UTC(),
		AffectedCalls:       m.FailedCalls,
		RevenueImpact:       impact,
		ConversionImpact:    rate,
		RootCause:           fmt.Sprintf("Technical failure rate of %.1f%% affecting %d calls", rate*100, m.FailedCalls),
		ContributingFactors: factors,
		Evidence: map[string]any{
			"failure_rate": rate,
			"failed_calls": m.FailedCalls,
		},
	}, true
}

// severity grades an impact as a percentage of total revenue. Medium when
// total revenue is zero.
func (d *Detector) severity(impact, totalRevenue float64) model.Severity {
	if totalRevenue == 0 {
		return model.SeverityMedium
	}
	pct := impact / totalRevenue * 100
	switch {
	case pct > 20:
		return model.SeverityCritical
	case pct > 10:
		return model.SeverityHigh
	case pct > 5:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func (d *Detector) issueID(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, d.campaign.CampaignID, uuid.NewString())
}
