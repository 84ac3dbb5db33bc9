package model

// Effort is the implementation cost tier of a recommendation.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// ActionableRecommendation is a prioritized corrective action tied to one
// detected issue. Priority 1 is highest, 5 lowest.
type ActionableRecommendation struct {
	RecommendationID string `json:"recommendation_id" yaml:"recommendation_id"`
	IssueID          string `json:"issue_id" yaml:"issue_id"`
	Priority         int    `json:"priority" yaml:"priority"`

	Action               string `json:"action" yaml:"action"`
	ExpectedImpact       string `json:"expected_impact" yaml:"expected_impact"`
	ImplementationEffort Effort `json:"implementation_effort" yaml:"implementation_effort"`

	Steps           []string `json:"steps" yaml:"steps"`
	ResourcesNeeded []string `json:"resources_needed" yaml:"resources_needed"`
	EstimatedTime   string   `json:"estimated_time" yaml:"estimated_time"`

	ExpectedRevenueRecovery float64 `json:"expected_revenue_recovery" yaml:"expected_revenue_recovery"`
	ExpectedConversionLift  float64 `json:"expected_conversion_lift" yaml:"expected_conversion_lift"`
	ConfidenceScore         float64 `json:"confidence_score" yaml:"confidence_score"`
}
