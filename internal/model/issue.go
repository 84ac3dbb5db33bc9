package model

import "time"

// IssueKind identifies the category of a detected performance problem. The set
// is closed; every dispatch over it is an exhaustive switch.
type IssueKind string

const (
	IssueLowConversion   IssueKind = "low_conversion"
	IssueHighDropOff     IssueKind = "high_drop_off"
	IssueComplianceRisk  IssueKind = "compliance_risk"
	IssueEscalationSpike IssueKind = "escalation_spike"
	IssueTechnicalError  IssueKind = "technical_error"
)

// Severity grades issues and alerts by revenue impact.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities for sorting, critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// PerformanceIssue is one detected deviation from a benchmark or target.
// Created once per detection pass and never mutated.
type PerformanceIssue struct {
	IssueID    string    `json:"issue_id" yaml:"issue_id"`
	CampaignID string    `json:"campaign_id" yaml:"campaign_id"`
	Kind       IssueKind `json:"kind" yaml:"kind"`
	Severity   Severity  `json:"severity" yaml:"severity"`
	DetectedAt time.Time `json:"detected_at" yaml:"detected_at"`

	AffectedCalls    int     `json:"affected_calls" yaml:"affected_calls"`
	RevenueImpact    float64 `json:"revenue_impact" yaml:"revenue_impact"`
	ConversionImpact float64 `json:"conversion_impact" yaml:"conversion_impact"`

	RootCause           string   `json:"root_cause" yaml:"root_cause"`
	ContributingFactors []string `json:"contributing_factors,omitempty" yaml:"contributing_factors,omitempty"`

	ProblematicStage DropOffStage `json:"problematic_stage,omitempty" yaml:"problematic_stage,omitempty"`
	ScriptVersion    string       `json:"script_version,omitempty" yaml:"script_version,omitempty"`

	Evidence map[string]any `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// ImpactPercentage expresses the issue's revenue impact as a percentage of
// total revenue. Zero when total revenue is zero.
func (i PerformanceIssue) ImpactPercentage(totalRevenue float64) float64 {
	if totalRevenue == 0 {
		return 0
	}
	return i.RevenueImpact / totalRevenue * 100
}
