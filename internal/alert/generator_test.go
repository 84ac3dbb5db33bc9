package alert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

func testCampaign() model.CampaignConfig {
	return model.CampaignConfig{CampaignID: "camp_q3", AvgDealValue: 5000}
}

func baseMetrics(revenue float64) model.PerformanceMetrics {
	return model.PerformanceMetrics{
		CampaignID:     "camp_q3",
		TotalCalls:     1000,
		CompletedCalls: 800,
		Conversions:    150,
		ConversionRate: 0.15,
		TotalRevenue:   revenue,
	}
}

func TestGenerateNoRegressions(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(105000)
	previous := baseMetrics(100000)

	alerts := g.Generate(current, previous, model.HealthScore{OverallScore: 85}, &model.HealthScore{OverallScore: 84}, nil)
	assert.Empty(t, alerts, "a steady week raises nothing")
}

func TestRevenueDropSeverities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current float64
		want    model.Severity
	}{
		{"moderate drop", 88000, model.SeverityMedium},  // -12%
		{"steep drop", 78000, model.SeverityHigh},       // -22%
		{"collapse", 70000, model.SeverityCritical},     // -30%
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New(testCampaign(), config.DefaultEngineConfig())
			alerts := g.Generate(baseMetrics(tt.current), baseMetrics(100000), model.HealthScore{}, nil, nil)

			require.Len(t, alerts, 1)
			a := alerts[0]
			assert.Equal(t, model.AlertRevenueDrop, a.Kind)
			assert.Equal(t, tt.want, a.Severity)
			assert.Equal(t, "total_revenue", a.MetricName)
			assert.InDelta(t, 90000.0, a.ThresholdValue, 0.01, "threshold sits 10 percent under previous revenue")
		})
	}
}

func TestRevenueDropMessageGrouping(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	alerts := g.Generate(baseMetrics(78000), baseMetrics(100000), model.HealthScore{}, nil, nil)

	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "Lost $22,000 in revenue.")
	assert.Contains(t, alerts[0].Message, "22.0%")
}

func TestLeakageIncreaseAlert(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(100000)
	current.RevenueLeakage = 30000
	previous := baseMetrics(100000)
	previous.RevenueLeakage = 20000

	alerts := g.Generate(current, previous, model.HealthScore{}, nil, nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertRevenueLeakageIncrease, alerts[0].Kind)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.InDelta(t, 50.0, alerts[0].PercentageChange, 0.001)
}

func TestConversionDropAlert(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(100000)
	current.ConversionRate = 0.12 // -20% relative
	previous := baseMetrics(100000)

	alerts := g.Generate(current, previous, model.HealthScore{}, nil, nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertConversionDrop, alerts[0].Kind)
	assert.Equal(t, model.SeverityMedium, alerts[0].Severity)

	current.ConversionRate = 0.10 // -33% relative
	alerts = g.Generate(current, previous, model.HealthScore{}, nil, nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
}

func TestFailureSpikeIsCritical(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(100000)
	current.FailedCalls = 60
	previous := baseMetrics(100000)
	previous.FailedCalls = 20

	alerts := g.Generate(current, previous, model.HealthScore{}, nil, nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertTechnicalFailureSpike, alerts[0].Kind)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
}

func TestComplianceIncreaseAlwaysCritical(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(100000)
	current.ComplianceViolations = 5
	previous := baseMetrics(100000)
	previous.ComplianceViolations = 2

	alerts := g.Generate(current, previous, model.HealthScore{}, nil, nil)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, model.AlertComplianceViolationIncrease, a.Kind)
	assert.Equal(t, model.SeverityCritical, a.Severity)
	assert.InDelta(t, 3.0, a.AbsoluteChange, 0.001)
	assert.InDelta(t, 150.0, a.PercentageChange, 0.001)
	assert.Contains(t, a.Message, "IMMEDIATE ACTION REQUIRED.")
}

func TestZeroPreviousPeriodRaisesNothing(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(100000)
	current.DroppedCalls = 300
	current.FailedCalls = 100
	current.EscalatedCalls = 200

	alerts := g.Generate(current, model.PerformanceMetrics{}, model.HealthScore{}, nil, nil)
	assert.Empty(t, alerts, "no baseline means no week-over-week alerts")
}

func TestHealthDropAlert(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	currentHealth := model.HealthScore{OverallScore: 50}
	previousHealth := model.HealthScore{OverallScore: 72}

	alerts := g.Generate(baseMetrics(100000), baseMetrics(100000), currentHealth, &previousHealth, nil)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, model.AlertHealthScoreDrop, a.Kind)
	assert.Equal(t, model.SeverityHigh, a.Severity, "a 22 point drop grades high")
	assert.Equal(t, "Current period", a.AffectedPeriod)
	assert.Contains(t, a.Message, "dropped 22 points from 72 to 50")
}

func TestIssueAlertsPromoteCriticalAndHigh(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	issues := []model.PerformanceIssue{
		{Kind: model.IssueLowConversion, Severity: model.SeverityCritical, AffectedCalls: 1000, RootCause: "Conversion rate 8.0% is 46.7% below target 15.0%", RevenueImpact: 350000},
		{Kind: model.IssueEscalationSpike, Severity: model.SeverityLow, AffectedCalls: 50},
	}

	alerts := g.Generate(baseMetrics(100000), baseMetrics(100000), model.HealthScore{}, nil, issues)
	require.Len(t, alerts, 1, "low severity issues stay out of the alert stream")

	a := alerts[0]
	assert.Equal(t, model.AlertIssueDetected, a.Kind)
	assert.Equal(t, "CRITICAL: Low Conversion", a.Title)
	assert.Equal(t, "low_conversion", a.MetricName)
	assert.InDelta(t, 1000.0, a.CurrentValue, 0.001)
	assert.Contains(t, a.Message, "$350,000 revenue at risk")
}

func TestGenerateSortsBySeverity(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(88000) // medium revenue drop
	current.ComplianceViolations = 3
	previous := baseMetrics(100000)

	alerts := g.Generate(current, previous, model.HealthScore{}, nil, nil)
	require.Len(t, alerts, 2)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity, "critical compliance alert sorts first")
	assert.Equal(t, model.SeverityMedium, alerts[1].Severity)
}

func TestAlertIDFormat(t *testing.T) {
	t.Parallel()

	g := New(testCampaign(), config.DefaultEngineConfig())
	current := baseMetrics(100000)
	current.ComplianceViolations = 1

	alerts := g.Generate(current, baseMetrics(100000), model.HealthScore{}, nil, nil)
	require.Len(t, alerts, 1)
	assert.True(t, strings.HasPrefix(alerts[0].AlertID, "ALERT_camp_q3_"))
	assert.True(t, strings.HasSuffix(alerts[0].AlertID, "_0001"))
}

func TestCriticalAlerts(t *testing.T) {
	t.Parallel()

	alerts := []model.Alert{
		{AlertID: "a", Severity: model.SeverityCritical},
		{AlertID: "b", Severity: model.SeverityMedium},
		{AlertID: "c", Severity: model.SeverityCritical},
	}

	critical := CriticalAlerts(alerts)
	require.Len(t, critical, 2)
	assert.Equal(t, "a", critical[0].AlertID)
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No alerts - campaign performing normally", FormatSummary(nil))

	alerts := []model.Alert{
		{Title: "Drop-off Rate Increasing", Message: "spiked", Severity: model.SeverityHigh},
		{Title: "Compliance Violations Detected", Message: "increased", Severity: model.SeverityCritical},
		{Title: "Escalation Rate Spiking", Message: "up", Severity: model.SeverityMedium},
		{Title: "Revenue Drop Alert", Message: "down", Severity: model.SeverityMedium},
	}

	summary := FormatSummary(alerts)
	assert.Contains(t, summary, "4 ACTIVE ALERTS")
	assert.Contains(t, summary, "CRITICAL: 1")
	assert.Contains(t, summary, "HIGH: 1")
	assert.Contains(t, summary, "MEDIUM: 2")
	assert.Contains(t, summary, "1. Compliance Violations Detected - increased")
	assert.NotContains(t, summary, "Revenue Drop Alert", "digest keeps only the top three")
}
