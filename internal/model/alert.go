package model

import "time"

// AlertKind identifies the threshold check that raised an alert. The set is
// closed; severity rules dispatch over it exhaustively.
type AlertKind string

const (
	AlertRevenueDrop                 AlertKind = "revenue_drop"
	AlertRevenueLeakageIncrease      AlertKind = "revenue_leakage_increase"
	AlertConversionDrop              AlertKind = "conversion_drop"
	AlertDropOffSpike                AlertKind = "drop_off_spike"
	AlertEscalationSpike             AlertKind = "escalation_spike"
	AlertTechnicalFailureSpike       AlertKind = "technical_failure_spike"
	AlertComplianceViolationIncrease AlertKind = "compliance_violation_increase"
	AlertHealthScoreDrop             AlertKind = "health_score_drop"
	AlertIssueDetected               AlertKind = "issue_detected"
)

// Alert is a single threshold-crossing event comparing the current period to
// a prior baseline.
type Alert struct {
	AlertID     string    `json:"alert_id" yaml:"alert_id"`
	CampaignID  string    `json:"campaign_id" yaml:"campaign_id"`
	Kind        AlertKind `json:"kind" yaml:"kind"`
	Severity    Severity  `json:"severity" yaml:"severity"`
	TriggeredAt time.Time `json:"triggered_at" yaml:"triggered_at"`

	Title   string `json:"title" yaml:"title"`
	Message string `json:"message" yaml:"message"`

	MetricName     string  `json:"metric_name" yaml:"metric_name"`
	CurrentValue   float64 `json:"current_value" yaml:"current_value"`
	PreviousValue  float64 `json:"previous_value" yaml:"previous_value"`
	ThresholdValue float64 `json:"threshold_value" yaml:"threshold_value"`

	PercentageChange float64 `json:"percentage_change" yaml:"percentage_change"`
	AbsoluteChange   float64 `json:"absolute_change" yaml:"absolute_change"`

	AffectedPeriod   string `json:"affected_period" yaml:"affected_period"`
	ComparisonPeriod string `json:"comparison_period" yaml:"comparison_period"`
}

// IsCritical reports whether the alert carries critical severity.
func (a Alert) IsCritical() bool {
	return a.Severity == SeverityCritical
}
