// Package model defines the value types shared by the campaign intelligence
// engine: call records, campaign configuration, derived metrics, detected
// issues, recommendations, health scores, alerts, and the final report.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// CallStatus is the outcome of a single voice-bot call.
type CallStatus string

const (
	StatusCompleted           CallStatus = "completed"
	StatusDropped             CallStatus = "dropped"
	StatusEscalated           CallStatus = "escalated"
	StatusFailed              CallStatus = "failed"
	StatusComplianceViolation CallStatus = "compliance_violation"
)

// DropOffStage is the funnel position at which a call was abandoned.
// The zero value means the call did not drop off.
type DropOffStage string

const (
	StageIntro             DropOffStage = "intro"
	StageQualification     DropOffStage = "qualification"
	StagePitch             DropOffStage = "pitch"
	StageObjectionHandling DropOffStage = "objection_handling"
	StageClosing           DropOffStage = "closing"
	StageFollowUp          DropOffStage = "follow_up"
)

// AllStages lists every funnel stage in order.
var AllStages = []DropOffStage{
	StageIntro,
	StageQualification,
	StagePitch,
	StageObjectionHandling,
	StageClosing,
	StageFollowUp,
}

// MaxCallDurationSeconds caps call duration at two hours.
const MaxCallDurationSeconds = 7200

// CallRecord is one call's outcome as delivered by the ingestion boundary.
// Records are treated as immutable once validated.
type CallRecord struct {
	CallID           string       `json:"call_id" yaml:"call_id"`
	CampaignID       string       `json:"campaign_id" yaml:"campaign_id"`
	Timestamp        time.Time    `json:"timestamp" yaml:"timestamp"`
	DurationSeconds  int          `json:"duration_seconds" yaml:"duration_seconds"`
	Status           CallStatus   `json:"status" yaml:"status"`
	DropOffStage     DropOffStage `json:"drop_off_stage,omitempty" yaml:"drop_off_stage,omitempty"`
	EscalationReason string       `json:"escalation_reason,omitempty" yaml:"escalation_reason,omitempty"`
	ComplianceFlags  []string     `json:"compliance_flags,omitempty" yaml:"compliance_flags,omitempty"`
	ConversionValue  float64      `json:"conversion_value" yaml:"conversion_value"`
	ActualRevenue    float64      `json:"actual_revenue" yaml:"actual_revenue"`
	SentimentScore   float64      `json:"sentiment_score" yaml:"sentiment_score"`
	ScriptVersion    string       `json:"script_version" yaml:"script_version"`
	AgentID          string       `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`
}

// Validate checks the record's range invariants. Out-of-range values are
// rejected, never clamped.
func (r CallRecord) Validate() error {
	if r.DurationSeconds < 0 || r.DurationSeconds > MaxCallDurationSeconds {
		return eris.Errorf("model: call %s: invalid duration %d", r.CallID, r.DurationSeconds)
	}
	if r.SentimentScore < -1 || r.SentimentScore > 1 {
		return eris.Errorf("model: call %s: invalid sentiment score %.2f", r.CallID, r.SentimentScore)
	}
	return nil
}

// Converted reports whether the call produced any realized revenue.
func (r CallRecord) Converted() bool {
	return r.ActualRevenue > 0
}

// CampaignConfig holds one campaign's targets and policy. It is supplied once
// per analysis invocation and never mutated by the engine.
type CampaignConfig struct {
	CampaignID           string    `json:"campaign_id" yaml:"campaign_id"`
	CampaignName         string    `json:"campaign_name" yaml:"campaign_name"`
	StartDate            time.Time `json:"start_date" yaml:"start_date"`
	TargetCallsPerDay    int       `json:"target_calls_per_day" yaml:"target_calls_per_day"`
	TargetConversionRate float64   `json:"target_conversion_rate" yaml:"target_conversion_rate"`
	TargetRevenuePerCall float64   `json:"target_revenue_per_call" yaml:"target_revenue_per_call"`
	AvgDealValue         float64   `json:"avg_deal_value" yaml:"avg_deal_value"`
	ComplianceRules      []string  `json:"compliance_rules,omitempty" yaml:"compliance_rules,omitempty"`
	ScriptVersions       []string  `json:"script_versions,omitempty" yaml:"script_versions,omitempty"`
}

// ExpectedDailyRevenue is the revenue the campaign should produce per day at
// target volume and conversion.
func (c CampaignConfig) ExpectedDailyRevenue() float64 {
	return float64(c.TargetCallsPerDay) * c.TargetConversionRate * c.AvgDealValue
}
