package model

import "time"

// IntelligenceReport is the engine's sole externally visible output. It owns
// its children by value; once returned it is a frozen snapshot of the run.
type IntelligenceReport struct {
	ReportID       string    `json:"report_id" yaml:"report_id"`
	CampaignID     string    `json:"campaign_id" yaml:"campaign_id"`
	ReportDate     time.Time `json:"report_date" yaml:"report_date"`
	PeriodAnalyzed string    `json:"period_analyzed" yaml:"period_analyzed"`

	PerformanceMetrics PerformanceMetrics `json:"performance_metrics" yaml:"performance_metrics"`
	HealthScore        HealthScore        `json:"health_score" yaml:"health_score"`

	Issues          []PerformanceIssue         `json:"issues" yaml:"issues"`
	Recommendations []ActionableRecommendation `json:"recommendations" yaml:"recommendations"`
	ActiveAlerts    []Alert                    `json:"active_alerts" yaml:"active_alerts"`

	WeekOverWeekChanges map[string]float64 `json:"week_over_week_changes,omitempty" yaml:"week_over_week_changes,omitempty"`

	Summary       string   `json:"summary" yaml:"summary"`
	KeyInsights   []string `json:"key_insights" yaml:"key_insights"`
	UrgentActions []string `json:"urgent_actions" yaml:"urgent_actions"`
}

// CriticalIssues returns the subset of issues with critical severity.
func (r IntelligenceReport) CriticalIssues() []PerformanceIssue {
	var out []PerformanceIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			out = append(out, issue)
		}
	}
	return out
}
