package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/campaign-intel/internal/model"
)

const ruleWidth = 80

// ExportText renders the report as a fixed-width text summary suitable for
// terminals and email.
func (e *Engine) ExportText(r *model.IntelligenceReport) string {
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(heavy)
	line("CAMPAIGN INTELLIGENCE REPORT - %s", e.campaign.CampaignName)
	line(heavy)
	line("Report Date: %s", r.ReportDate.Format("2006-01-02 15:04:05"))
	line("Period: %s", r.PeriodAnalyzed)
	line("")

	line("EXECUTIVE SUMMARY")
	line(light)
	line("%s", r.Summary)
	line("")

	h := r.HealthScore
	line("HEALTH SCORE")
	line(light)
	line("Overall: %d/100 (%s)", h.OverallScore, h.Status())
	line("  Conversion Health: %d/100", h.ConversionHealth)
	line("  Revenue Health: %d/100", h.RevenueHealth)
	line("  Compliance Health: %d/100", h.ComplianceHealth)
	line("  Efficiency Health: %d/100", h.EfficiencyHealth)
	line("  Quality Health: %d/100", h.QualityHealth)
	line("Trend: %s (%+.1f%% WoW)", strings.ToUpper(string(h.Trend)), h.WeekOverWeekChange)
	line("")

	m := r.PerformanceMetrics
	line("KEY METRICS")
	line(light)
	line("Total Calls: %s", e.printer.Sprintf("%d", m.TotalCalls))
	line("Conversion Rate: %.1f%% (target: %.1f%%)", m.ConversionRate*100, e.campaign.TargetConversionRate*100)
	line("Revenue: %s", e.printer.Sprintf("$%.0f", m.TotalRevenue))
	line("Revenue Leakage: %s (%.1f%%)", e.printer.Sprintf("$%.0f", m.RevenueLeakage), m.RevenueLeakagePercentage)
	line("Completion Rate: %.1f%%", m.CompletionRate()*100)
	line("Escalation Rate: %.1f%%", m.EscalationRate()*100)
	line("")

	if len(r.ActiveAlerts) > 0 {
		line("ACTIVE ALERTS")
		line(light)
		alerts := r.ActiveAlerts
		if len(alerts) > 5 {
			alerts = alerts[:5]
		}
		for _, a := range alerts {
			line("[%s] %s", strings.ToUpper(string(a.Severity)), a.Title)
			line("  %s", a.Message)
		}
		line("")
	}

	if len(r.Issues) > 0 {
		line("DETECTED ISSUES")
		line(light)
		issues := r.Issues
		if len(issues) > 5 {
			issues = issues[:5]
		}
		for _, issue := range issues {
			line("[%s] %s", strings.ToUpper(string(issue.Severity)), titleCase(string(issue.Kind)))
			line("  %s", issue.RootCause)
			line("  Impact: %s, %d calls", e.printer.Sprintf("$%.0f", issue.RevenueImpact), issue.AffectedCalls)
		}
		line("")
	}

	line("URGENT ACTIONS REQUIRED")
	line(light)
	for i, action := range r.UrgentActions {
		line("%d. %s", i+1, action)
	}
	line("")

	line("TOP RECOMMENDATIONS")
	line(light)
	recs := r.Recommendations
	if len(recs) > 3 {
		recs = recs[:3]
	}
	for _, rec := range recs {
		line("Priority %d: %s", rec.Priority, rec.Action)
		line("  Expected Impact: %s", rec.ExpectedImpact)
		line("  Effort: %s, Time: %s", rec.ImplementationEffort, rec.EstimatedTime)
		line("")
	}

	line(heavy)

	return b.String()
}

// ExportJSON renders the report as indented JSON.
func (e *Engine) ExportJSON(r *model.IntelligenceReport) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal json")
	}
	return data, nil
}

// ExportYAML renders the report as YAML.
func (e *Engine) ExportYAML(r *model.IntelligenceReport) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal yaml")
	}
	return data, nil
}
