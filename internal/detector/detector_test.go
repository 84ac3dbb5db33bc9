package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

func testCampaign() model.CampaignConfig {
	return model.CampaignConfig{
		CampaignID:           "camp_q3",
		CampaignName:         "Q3 Outbound",
		TargetCallsPerDay:    200,
		TargetConversionRate: 0.15,
		TargetRevenuePerCall: 750,
		AvgDealValue:         5000,
	}
}

func healthyMetrics() model.PerformanceMetrics {
	return model.PerformanceMetrics{
		CampaignID:     "camp_q3",
		TotalCalls:     1000,
		CompletedCalls: 900,
		Conversions:    150,
		ConversionRate: 0.15,
		TotalRevenue:   750000,
		DropOffByStage: map[model.DropOffStage]int{},
	}
}

func TestDetectHealthyCampaign(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	issues := d.Detect(healthyMetrics(), nil)
	assert.Empty(t, issues, "campaign at target should raise no issues")
}

func TestDetectLowConversion(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.Conversions = 80
	m.ConversionRate = 0.08
	m.TotalRevenue = 400000

	issues := d.Detect(m, nil)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, model.IssueLowConversion, issue.Kind)
	assert.Equal(t, "camp_q3", issue.CampaignID)
	assert.Equal(t, 1000, issue.AffectedCalls)
	// 70 lost conversions at 5000 per deal.
	assert.InDelta(t, 350000.0, issue.RevenueImpact, 0.01)
	assert.Equal(t, model.SeverityCritical, issue.Severity, "impact over 20 percent of revenue is critical")
	assert.InDelta(t, 0.15, issue.Evidence["target_rate"].(float64), 1e-9)
	assert.InDelta(t, 0.08, issue.Evidence["actual_rate"].(float64), 1e-9)
	assert.Contains(t, issue.RootCause, "below target")
}

func TestDetectConversionWithinVariance(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.Conversions = 130
	m.ConversionRate = 0.13

	issues := d.Detect(m, nil)
	assert.Empty(t, issues, "13 vs 15 target is inside the 20 percent variance band")
}

func TestDetectHighDropOff(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.DroppedCalls = 250
	m.DropOffByStage = map[model.DropOffStage]int{
		model.StageIntro: 100,
		model.StagePitch: 150,
	}

	records := []model.CallRecord{
		{CallID: "c1", Status: model.StatusDropped, DropOffStage: model.StagePitch, DurationSeconds: 120, SentimentScore: -0.5},
		{CallID: "c2", Status: model.StatusDropped, DropOffStage: model.StagePitch, DurationSeconds: 180, SentimentScore: -0.3},
	}

	issues := d.Detect(m, records)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, model.IssueHighDropOff, issue.Kind)
	assert.Equal(t, 250, issue.AffectedCalls)
	assert.Equal(t, model.StagePitch, issue.ProblematicStage)
	// 250 dropped * 15% target * 0.5 convertible share * 5000 deal value.
	assert.InDelta(t, 93750.0, issue.RevenueImpact, 0.01)
	assert.Equal(t, "pitch", issue.Evidence["worst_stage"])
	assert.Equal(t, 150, issue.Evidence["worst_stage_count"])
	assert.Contains(t, issue.ContributingFactors[0], "pitch")
	assert.Contains(t, issue.ContributingFactors, "Negative sentiment (-0.40) indicates user frustration")
}

func TestDetectEscalationSpike(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.EscalatedCalls = 200

	records := []model.CallRecord{
		{CallID: "c1", Status: model.StatusEscalated, EscalationReason: "pricing_question"},
		{CallID: "c2", Status: model.StatusEscalated, EscalationReason: "pricing_question"},
		{CallID: "c3", Status: model.StatusEscalated, EscalationReason: "angry_customer"},
	}

	issues := d.Detect(m, records)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, model.IssueEscalationSpike, issue.Kind)
	// 200 escalations at 50 per agent handoff.
	assert.InDelta(t, 10000.0, issue.RevenueImpact, 0.01)
	assert.Equal(t, model.SeverityLow, issue.Severity)
	assert.Equal(t, "pricing_question", issue.Evidence["top_reason"])
}

func TestDetectEscalationAtBenchmark(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.EscalatedCalls = 150 // exactly 1.5x the 10% benchmark

	issues := d.Detect(m, nil)
	assert.Empty(t, issues, "rate must exceed the multiplier, not merely reach it")
}

func TestDetectComplianceAlwaysCritical(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.ComplianceViolations = 30

	records := []model.CallRecord{
		{CallID: "c1", Status: model.StatusComplianceViolation, ComplianceFlags: []string{"missing_disclosure", "recording_consent"}},
		{CallID: "c2", Status: model.StatusComplianceViolation, ComplianceFlags: []string{"missing_disclosure"}},
	}

	issues := d.Detect(m, records)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, model.IssueComplianceRisk, issue.Kind)
	assert.Equal(t, model.SeverityCritical, issue.Severity, "compliance issues are always critical regardless of impact")
	assert.InDelta(t, 30000.0, issue.RevenueImpact, 0.01)
	assert.Equal(t, "missing_disclosure", issue.Evidence["top_violation"])
}

func TestDetectTechnicalFailures(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.FailedCalls = 80

	issues := d.Detect(m, nil)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, model.IssueTechnicalError, issue.Kind)
	assert.Equal(t, 80, issue.AffectedCalls)
	// 80 failed calls at 750 target revenue each.
	assert.InDelta(t, 60000.0, issue.RevenueImpact, 0.01)
	assert.InDelta(t, 0.08, issue.Evidence["failure_rate"].(float64), 1e-9)
}

func TestDetectSeverityWithoutRevenue(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.TotalRevenue = 0
	m.Conversions = 0
	m.ConversionRate = 0

	issues := d.Detect(m, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityMedium, issues[0].Severity, "no revenue baseline grades medium")
}

func TestDetectIdempotent(t *testing.T) {
	t.Parallel()

	d := New(testCampaign(), config.DefaultEngineConfig())
	m := healthyMetrics()
	m.Conversions = 80
	m.ConversionRate = 0.08
	m.DroppedCalls = 250
	m.FailedCalls = 80
	m.DropOffByStage = map[model.DropOffStage]int{model.StagePitch: 250}

	first := d.Detect(m, nil)
	second := d.Detect(m, nil)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].Severity, second[i].Severity)
		assert.NotEqual(t, first[i].IssueID, second[i].IssueID, "issue ids are unique per run")
	}
}
