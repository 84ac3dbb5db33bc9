package model

import "time"

// Trend classifies period-over-period movement.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendNew       Trend = "new"
)

// HealthScore is the weighted 0-100 composite of five component scores.
type HealthScore struct {
	CampaignID   string    `json:"campaign_id" yaml:"campaign_id"`
	CalculatedAt time.Time `json:"calculated_at" yaml:"calculated_at"`
	OverallScore int       `json:"overall_score" yaml:"overall_score"`

	ConversionHealth int `json:"conversion_health" yaml:"conversion_health"`
	RevenueHealth    int `json:"revenue_health" yaml:"revenue_health"`
	ComplianceHealth int `json:"compliance_health" yaml:"compliance_health"`
	EfficiencyHealth int `json:"efficiency_health" yaml:"efficiency_health"`
	QualityHealth    int `json:"quality_health" yaml:"quality_health"`

	Trend              Trend   `json:"trend" yaml:"trend"`
	WeekOverWeekChange float64 `json:"week_over_week_change" yaml:"week_over_week_change"`

	ScoreComponents map[string]float64 `json:"score_components,omitempty" yaml:"score_components,omitempty"`
}

// Status maps the overall score to a human-readable label.
func (h HealthScore) Status() string {
	switch {
	case h.OverallScore >= 80:
		return "Excellent"
	case h.OverallScore >= 60:
		return "Good"
	case h.OverallScore >= 40:
		return "Fair"
	case h.OverallScore >= 20:
		return "Poor"
	default:
		return "Critical"
	}
}
