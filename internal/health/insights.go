package health

import (
	"fmt"
	"strings"

	"github.com/sells-group/campaign-intel/internal/model"
)

// Insights renders a health score as human-readable statements for the
// report's key-insights section.
func Insights(score model.HealthScore) []string {
	insights := []string{
		fmt.Sprintf("Campaign health is %s with overall score of %d/100", score.Status(), score.OverallScore),
	}

	components := []struct {
		name  string
		value int
	}{
		{"Conversion", score.ConversionHealth},
		{"Revenue", score.RevenueHealth},
		{"Compliance", score.ComplianceHealth},
		{"Efficiency", score.EfficiencyHealth},
		{"Quality", score.QualityHealth},
	}

	var strengths, weaknesses []string
	for _, c := range components {
		switch {
		case c.value >= 80:
			strengths = append(strengths, c.name)
		case c.value < 60:
			weaknesses = append(weaknesses, c.name)
		}
	}
	if len(strengths) > 0 {
		insights = append(insights, "Strong performance in: "+strings.Join(strengths, ", "))
	}
	if len(weaknesses) > 0 {
		insights = append(insights, "Needs improvement in: "+strings.Join(weaknesses, ", "))
	}

	if score.ComplianceHealth < 70 {
		insights = append(insights, "CRITICAL: Compliance issues detected - immediate attention required")
	}
	if score.OverallScore < 50 {
		insights = append(insights, "WARNING: Campaign health is poor - consider pausing for optimization")
	}

	switch score.Trend {
	case model.TrendImproving:
		insights = append(insights, fmt.Sprintf("Positive trend: %+.1f%% improvement WoW", score.WeekOverWeekChange))
	case model.TrendDeclining:
		insights = append(insights, fmt.Sprintf("Declining trend: %.1f%% decrease WoW", score.WeekOverWeekChange))
	}

	return insights
}
