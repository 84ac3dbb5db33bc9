package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRecordValidate(t *testing.T) {
	t.Parallel()

	base := CallRecord{
		CallID:          "call_001",
		CampaignID:      "camp_q3",
		Timestamp:       time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC),
		DurationSeconds: 240,
		Status:          StatusCompleted,
		SentimentScore:  0.4,
	}

	tests := []struct {
		name    string
		mutate  func(*CallRecord)
		wantErr bool
	}{
		{"valid", func(r *CallRecord) {}, false},
		{"zero duration", func(r *CallRecord) { r.DurationSeconds = 0 }, false},
		{"max duration", func(r *CallRecord) { r.DurationSeconds = MaxCallDurationSeconds }, false},
		{"negative duration", func(r *CallRecord) { r.DurationSeconds = -1 }, true},
		{"duration over cap", func(r *CallRecord) { r.DurationSeconds = MaxCallDurationSeconds + 1 }, true},
		{"sentiment at bounds", func(r *CallRecord) { r.SentimentScore = -1 }, false},
		{"sentiment below range", func(r *CallRecord) { r.SentimentScore = -1.01 }, true},
		{"sentiment above range", func(r *CallRecord) { r.SentimentScore = 1.5 }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := base
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "call_001", "error should name the call")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCallRecordConverted(t *testing.T) {
	t.Parallel()

	assert.True(t, CallRecord{ActualRevenue: 5000}.Converted())
	assert.False(t, CallRecord{ActualRevenue: 0}.Converted())
	assert.False(t, CallRecord{ConversionValue: 5000}.Converted(), "expected value alone is not a conversion")
}

func TestExpectedDailyRevenue(t *testing.T) {
	t.Parallel()

	c := CampaignConfig{
		TargetCallsPerDay:    200,
		TargetConversionRate: 0.15,
		AvgDealValue:         5000,
	}
	assert.InDelta(t, 150000.0, c.ExpectedDailyRevenue(), 0.001)

	assert.Zero(t, CampaignConfig{}.ExpectedDailyRevenue())
}

func TestMetricsDerivedRates(t *testing.T) {
	t.Parallel()

	m := PerformanceMetrics{
		TotalCalls:           100,
		CompletedCalls:       70,
		DroppedCalls:         15,
		EscalatedCalls:       8,
		FailedCalls:          5,
		ComplianceViolations: 2,
	}

	assert.InDelta(t, 0.70, m.CompletionRate(), 1e-9)
	assert.InDelta(t, 0.15, m.DropOffRate(), 1e-9)
	assert.InDelta(t, 0.08, m.EscalationRate(), 1e-9)
	assert.InDelta(t, 0.05, m.FailureRate(), 1e-9)
	assert.InDelta(t, 0.98, m.ComplianceRate(), 1e-9)
}

func TestMetricsRatesEmptyPeriod(t *testing.T) {
	t.Parallel()

	var m PerformanceMetrics
	assert.Zero(t, m.CompletionRate())
	assert.Zero(t, m.DropOffRate())
	assert.Zero(t, m.EscalationRate())
	assert.Zero(t, m.FailureRate())
	assert.Equal(t, 1.0, m.ComplianceRate(), "no calls means no violations")
}

func TestHealthScoreStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{60, "Good"},
		{59, "Fair"},
		{40, "Fair"},
		{39, "Poor"},
		{20, "Poor"},
		{19, "Critical"},
		{0, "Critical"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HealthScore{OverallScore: tt.score}.Status(), "score %d", tt.score)
	}
}

func TestSeverityRank(t *testing.T) {
	t.Parallel()

	assert.Less(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityLow.Rank())
}

func TestImpactPercentage(t *testing.T) {
	t.Parallel()

	issue := PerformanceIssue{RevenueImpact: 25000}
	assert.InDelta(t, 25.0, issue.ImpactPercentage(100000), 1e-9)
	assert.Zero(t, issue.ImpactPercentage(0))
}

func TestCriticalIssues(t *testing.T) {
	t.Parallel()

	r := IntelligenceReport{
		Issues: []PerformanceIssue{
			{IssueID: "a", Severity: SeverityCritical},
			{IssueID: "b", Severity: SeverityLow},
			{IssueID: "c", Severity: SeverityCritical},
		},
	}

	critical := r.CriticalIssues()
	require.Len(t, critical, 2)
	assert.Equal(t, "a", critical[0].IssueID)
	assert.Equal(t, "c", critical[1].IssueID)
}
