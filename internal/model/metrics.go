package model

import "time"

// PerformanceMetrics is an immutable snapshot derived from one period's call
// records. Completion and escalation rates are derived on demand rather than
// stored.
type PerformanceMetrics struct {
	CampaignID  string    `json:"campaign_id" yaml:"campaign_id"`
	PeriodStart time.Time `json:"period_start" yaml:"period_start"`
	PeriodEnd   time.Time `json:"period_end" yaml:"period_end"`

	TotalCalls           int `json:"total_calls" yaml:"total_calls"`
	CompletedCalls       int `json:"completed_calls" yaml:"completed_calls"`
	DroppedCalls         int `json:"dropped_calls" yaml:"dropped_calls"`
	EscalatedCalls       int `json:"escalated_calls" yaml:"escalated_calls"`
	FailedCalls          int `json:"failed_calls" yaml:"failed_calls"`
	ComplianceViolations int `json:"compliance_violations" yaml:"compliance_violations"`

	Conversions    int     `json:"conversions" yaml:"conversions"`
	ConversionRate float64 `json:"conversion_rate" yaml:"conversion_rate"`

	TotalRevenue             float64 `json:"total_revenue" yaml:"total_revenue"`
	ExpectedRevenue          float64 `json:"expected_revenue" yaml:"expected_revenue"`
	RevenueLeakage           float64 `json:"revenue_leakage" yaml:"revenue_leakage"`
	RevenueLeakagePercentage float64 `json:"revenue_leakage_percentage" yaml:"revenue_leakage_percentage"`

	AvgCallDuration   float64 `json:"avg_call_duration" yaml:"avg_call_duration"`
	AvgSentimentScore float64 `json:"avg_sentiment_score" yaml:"avg_sentiment_score"`

	DropOffByStage map[DropOffStage]int `json:"drop_off_by_stage,omitempty" yaml:"drop_off_by_stage,omitempty"`
}

// CompletionRate is the share of calls the bot resolved without dropping or
// escalating. Zero when there are no calls.
func (m PerformanceMetrics) CompletionRate() float64 {
	if m.TotalCalls == 0 {
		return 0
	}
	return float64(m.CompletedCalls) / float64(m.TotalCalls)
}

// EscalationRate is the share of calls handed to a human agent.
func (m PerformanceMetrics) EscalationRate() float64 {
	if m.TotalCalls == 0 {
		return 0
	}
	return float64(m.EscalatedCalls) / float64(m.TotalCalls)
}

// DropOffRate is the share of calls abandoned mid-funnel.
func (m PerformanceMetrics) DropOffRate() float64 {
	if m.TotalCalls == 0 {
		return 0
	}
	return float64(m.DroppedCalls) / float64(m.TotalCalls)
}

// FailureRate is the share of calls lost to technical failure.
func (m PerformanceMetrics) FailureRate() float64 {
	if m.TotalCalls == 0 {
		return 0
	}
	return float64(m.FailedCalls) / float64(m.TotalCalls)
}

// ComplianceRate is the share of calls with no compliance violation. Reported
// as 1 when there are no calls.
func (m PerformanceMetrics) ComplianceRate() float64 {
	if m.TotalCalls == 0 {
		return 1
	}
	return 1 - float64(m.ComplianceViolations)/float64(m.TotalCalls)
}

// PeriodLabel formats the snapshot's window for display.
func (m PerformanceMetrics) PeriodLabel() string {
	return m.PeriodStart.Format("2006-01-02") + " to " + m.PeriodEnd.Format("2006-01-02")
}
