package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

func testCampaign() model.CampaignConfig {
	return model.CampaignConfig{
		CampaignID:           "camp_q3",
		CampaignName:         "Q3 Outbound",
		TargetCallsPerDay:    100,
		TargetConversionRate: 0.15,
		TargetRevenuePerCall: 750,
		AvgDealValue:         5000,
	}
}

// weekOfCalls builds a period with weak conversion, heavy pitch drop-off and
// a couple of compliance violations.
func weekOfCalls(startDay int, revenue float64) []model.CallRecord {
	var calls []model.CallRecord
	ts := func(i int) time.Time {
		return time.Date(2026, 8, startDay+i%7, 9+i%8, 0, 0, 0, time.UTC)
	}

	for i := 0; i < 60; i++ {
		calls = append(calls, model.CallRecord{
			CallID: "comp", CampaignID: "camp_q3", Timestamp: ts(i),
			Status: model.StatusCompleted, DurationSeconds: 240, SentimentScore: 0.2,
			ConversionValue: 5000,
		})
	}
	for i := 0; i < 5; i++ {
		calls = append(calls, model.CallRecord{
			CallID: "conv", CampaignID: "camp_q3", Timestamp: ts(i),
			Status: model.StatusCompleted, DurationSeconds: 260, SentimentScore: 0.5,
			ConversionValue: 5000, ActualRevenue: revenue / 5,
		})
	}
	for i := 0; i < 30; i++ {
		calls = append(calls, model.CallRecord{
			CallID: "drop", CampaignID: "camp_q3", Timestamp: ts(i),
			Status: model.StatusDropped, DropOffStage: model.StagePitch,
			DurationSeconds: 90, SentimentScore: -0.3,
		})
	}
	for i := 0; i < 3; i++ {
		calls = append(calls, model.CallRecord{
			CallID: "viol", CampaignID: "camp_q3", Timestamp: ts(i),
			Status: model.StatusComplianceViolation, DurationSeconds: 120,
			ComplianceFlags: []string{"missing_disclosure"},
		})
	}
	return calls
}

func TestAnalyzeFullPipeline(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	current := weekOfCalls(10, 25000)
	previous := weekOfCalls(3, 50000)

	report, err := e.Analyze(current, previous)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(report.ReportID, "RPT_camp_q3_"))
	assert.Equal(t, "camp_q3", report.CampaignID)
	assert.NotEmpty(t, report.PeriodAnalyzed)

	assert.Equal(t, len(current), report.PerformanceMetrics.TotalCalls)

	// Weak conversion, pitch drop-off and violations must all surface.
	kinds := map[model.IssueKind]bool{}
	for _, issue := range report.Issues {
		kinds[issue.Kind] = true
	}
	assert.True(t, kinds[model.IssueLowConversion])
	assert.True(t, kinds[model.IssueHighDropOff])
	assert.True(t, kinds[model.IssueComplianceRisk])

	assert.NotEmpty(t, report.Recommendations)
	assert.NotEmpty(t, report.ActiveAlerts, "halved revenue against last week must alert")

	require.NotNil(t, report.WeekOverWeekChanges)
	assert.InDelta(t, -50.0, report.WeekOverWeekChanges["revenue"], 0.001)
	assert.Contains(t, report.WeekOverWeekChanges, "call_volume")
	assert.Contains(t, report.WeekOverWeekChanges, "drop_off_rate")

	assert.Contains(t, report.Summary, "Campaign 'Q3 Outbound' health score:")
	assert.Contains(t, report.Summary, "CRITICAL")
	assert.NotEmpty(t, report.KeyInsights)
	require.NotEmpty(t, report.UrgentActions)
	assert.Equal(t, "IMMEDIATE: Fix compliance violations to avoid regulatory risk", report.UrgentActions[0])
}

func TestAnalyzeWithoutPrevious(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	report, err := e.Analyze(weekOfCalls(10, 25000), nil)
	require.NoError(t, err)

	assert.Nil(t, report.WeekOverWeekChanges, "no baseline means no comparisons")
	assert.Empty(t, report.ActiveAlerts)
	assert.Equal(t, model.TrendNew, report.HealthScore.Trend)
}

func TestAnalyzeRejectsInvalidRecord(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	calls := []model.CallRecord{
		{CallID: "ok", Status: model.StatusCompleted, DurationSeconds: 200},
		{CallID: "bad", Status: model.StatusCompleted, DurationSeconds: -5},
	}

	_, err := e.Analyze(calls, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current period")
	assert.Contains(t, err.Error(), "record 1")

	_, err = e.Analyze(nil, calls)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "previous period")
}

func TestStatus(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	status, err := e.Status(weekOfCalls(10, 25000))
	require.NoError(t, err)

	assert.Equal(t, "camp_q3", status.CampaignID)
	assert.Equal(t, 98, status.TotalCalls)
	assert.Equal(t, "$25,000", status.TotalRevenue)
	assert.NotEmpty(t, status.HealthStatus)
	assert.True(t, strings.HasSuffix(status.ConversionRate, "%"))
}

func TestAnalyzeIssue(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	issue := model.PerformanceIssue{
		Kind:          model.IssueLowConversion,
		Severity:      model.SeverityHigh,
		AffectedCalls: 50,
		RevenueImpact: 100000,
	}

	analysis := e.AnalyzeIssue(issue, make([]model.CallRecord, 200))

	assert.InDelta(t, 25.0, analysis.AffectedCallsPercent, 0.001)
	assert.InDelta(t, 130000.0, analysis.RevenueImpact.TotalImpact, 0.01)
	assert.Len(t, analysis.Recommendations, 3)
}

func TestExportText(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	report, err := e.Analyze(weekOfCalls(10, 25000), weekOfCalls(3, 50000))
	require.NoError(t, err)

	text := e.ExportText(report)

	for _, section := range []string{
		"CAMPAIGN INTELLIGENCE REPORT - Q3 Outbound",
		"EXECUTIVE SUMMARY",
		"HEALTH SCORE",
		"KEY METRICS",
		"ACTIVE ALERTS",
		"DETECTED ISSUES",
		"URGENT ACTIONS REQUIRED",
		"TOP RECOMMENDATIONS",
	} {
		assert.Contains(t, text, section)
	}
	assert.Contains(t, text, "Total Calls: 98")
}

func TestExportJSONRoundTrips(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	report, err := e.Analyze(weekOfCalls(10, 25000), nil)
	require.NoError(t, err)

	data, err := e.ExportJSON(report)
	require.NoError(t, err)

	var decoded model.IntelligenceReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.ReportID, decoded.ReportID)
	assert.Equal(t, report.PerformanceMetrics.TotalCalls, decoded.PerformanceMetrics.TotalCalls)
}

func TestExportYAML(t *testing.T) {
	t.Parallel()

	e := New(testCampaign(), config.DefaultEngineConfig())
	report, err := e.Analyze(weekOfCalls(10, 25000), nil)
	require.NoError(t, err)

	data, err := e.ExportYAML(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report_id: "+report.ReportID)
}
