// Package alert compares the current period against the previous one and
// raises threshold-crossing alerts for week-over-week regressions.
package alert

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

// Generator produces alerts for one campaign. Each Generator keeps its own
// id counter.
type Generator struct {
	campaign model.CampaignConfig
	cfg      config.EngineConfig
	printer  *message.Printer
	counter  int
}

// New creates an alert Generator for the given campaign and engine rules.
func New(campaign model.CampaignConfig, cfg config.EngineConfig) *Generator {
	return &Generator{
		campaign: campaign,
		cfg:      cfg,
		printer:  message.NewPrinter(language.English),
	}
}

// Generate compares the two periods and returns all triggered alerts, most
// severe first. previousHealth may be nil; issue-based alerts are raised for
// critical and high severity issues.
func (g *Generator) Generate(
	current, previous model.PerformanceMetrics,
	currentHealth model.HealthScore,
	previousHealth *model.HealthScore,
	issues []model.PerformanceIssue,
) []model.Alert {
	var alerts []model.Alert

	alerts = append(alerts, g.revenueAlerts(current, previous)...)
	alerts = append(alerts, g.conversionAlerts(current, previous)...)
	alerts = append(alerts, g.operationalAlerts(current, previous)...)
	alerts = append(alerts, g.complianceAlerts(current, previous)...)
	if previousHealth != nil {
		alerts = append(alerts, g.healthAlerts(currentHealth, *previousHealth)...)
	}
	alerts = append(alerts, g.issueAlerts(issues)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})

	zap.L().Debug("alert: comparison complete",
		zap.String("campaign_id", g.campaign.CampaignID),
		zap.Int("alerts", len(alerts)),
	)

	return alerts
}

func (g *Generator) revenueAlerts(current, previous model.PerformanceMetrics) []model.Alert {
	var alerts []model.Alert

	if previous.TotalRevenue > 0 {
		change := current.TotalRevenue - previous.TotalRevenue
		changePct := change / previous.TotalRevenue * 100

		if changePct < g.cfg.Alerts.RevenueDropPct {
			var severity model.Severity
			switch {
			case changePct < -25:
				severity = model.SeverityCritical
			case changePct < -20:
				severity = model.SeverityHigh
			default:
				severity = model.SeverityMedium
			}

			alerts = append(alerts, model.Alert{
				AlertID:     g.nextID(),
				CampaignID:  g.campaign.CampaignID,
				Kind:        model.AlertRevenueDrop,
				Severity:    severity,
				TriggeredAt: time.Now().UTC(),
				Title:       "Revenue Drop Alert",
				Message: g.printer.Sprintf("Revenue decreased by %.1f%% compared to last week. Lost $%.0f in revenue.",
					abs(changePct), abs(change)),
				MetricName:       "total_revenue",
				CurrentValue:     current.TotalRevenue,
				PreviousValue:    previous.TotalRevenue,
				ThresholdValue:   previous.TotalRevenue * (1 + g.cfg.Alerts.RevenueDropPct/100),
				PercentageChange: changePct,
				AbsoluteChange:   change,
				AffectedPeriod:   current.PeriodLabel(),
				ComparisonPeriod: previous.PeriodLabel(),
			})
		}
	}

	if previous.RevenueLeakage > 0 {
		leakageChangePct := (current.RevenueLeakage - previous.RevenueLeakage) / previous.RevenueLeakage * 100

		if leakageChangePct > g.cfg.Alerts.LeakageIncreasePct {
			alerts = append(alerts, model.Alert{
				AlertID:     g.nextID(),
				CampaignID:  g.campaign.CampaignID,
				Kind:        model.AlertRevenueLeakageIncrease,
				Severity:    model.SeverityHigh,
				TriggeredAt: time.Now().UTC(),
				Title:       "Revenue Leakage Increasing",
				Message: g.printer.Sprintf("Revenue leakage increased by %.1f%% to $%.0f",
					leakageChangePct, current.RevenueLeakage),
				MetricName:       "revenue_leakage",
				CurrentValue:     current.RevenueLeakage,
				PreviousValue:    previous.RevenueLeakage,
				ThresholdValue:   previous.RevenueLeakage * (1 + g.cfg.Alerts.LeakageIncreasePct/100),
				PercentageChange: leakageChangePct,
				AbsoluteChange:   current.RevenueLeakage - previous.RevenueLeakage,
				AffectedPeriod:   current.PeriodLabel(),
				ComparisonPeriod: previous.PeriodLabel(),
			})
		}
	}

	return alerts
}

func (g *Generator) conversionAlerts(current, previous model.PerformanceMetrics) []model.Alert {
	if previous.ConversionRate == 0 {
		return nil
	}

	change := current.ConversionRate - previous.ConversionRate
	changePct := change / previous.ConversionRate * 100

	if changePct >= g.cfg.Alerts.ConversionDropPct {
		return nil
	}

	severity := model.SeverityMedium
	if changePct < -25 {
		severity = model.SeverityHigh
	}

	return []model.Alert{{
		AlertID:     g.nextID(),
		CampaignID:  g.campaign.CampaignID,
		Kind:        model.AlertConversionDrop,
		Severity:    severity,
		TriggeredAt: time.Now().UTC(),
		Title:       "Conversion Rate Declining",
		Message: fmt.Sprintf("Conversion rate dropped %.1f%% from %.1f%% to %.1f%%",
			abs(changePct), previous.ConversionRate*100, current.ConversionRate*100),
		MetricName:       "conversion_rate",
		CurrentValue:     current.ConversionRate,
		PreviousValue:    previous.ConversionRate,
		ThresholdValue:   previous.ConversionRate * (1 + g.cfg.Alerts.ConversionDropPct/100),
		PercentageChange: changePct,
		AbsoluteChange:   change,
		AffectedPeriod:   current.PeriodLabel(),
		ComparisonPeriod: previous.PeriodLabel(),
	}}
}

func (g *Generator) operationalAlerts(current, previous model.PerformanceMetrics) []model.Alert {
	var alerts []model.Alert

	if prevRate := previous.DropOffRate(); prevRate > 0 {
		curRate := current.DropOffRate()
		changePct := (curRate - prevRate) / prevRate * 100

		if changePct > g.cfg.Alerts.DropOffSpikePct {
			alerts = append(alerts, model.Alert{
				AlertID:     g.nextID(),
				CampaignID:  g.campaign.CampaignID,
				Kind:        model.AlertDropOffSpike,
				Severity:    model.SeverityHigh,
				TriggeredAt: time.Now().UTC(),
				Title:       "Drop-off Rate Increasing",
				Message: fmt.Sprintf("Call drop-off rate spiked %.1f%% to %.1f%%. %d calls dropped this period.",
					changePct, curRate*100, current.DroppedCalls),
				MetricName:       "drop_off_rate",
				CurrentValue:     curRate,
				PreviousValue:    prevRate,
				ThresholdValue:   prevRate * (1 + g.cfg.Alerts.DropOffSpikePct/100),
				PercentageChange: changePct,
				AbsoluteChange:   curRate - prevRate,
				AffectedPeriod:   current.PeriodLabel(),
				ComparisonPeriod: previous.PeriodLabel(),
			})
		}
	}

	if prevRate := previous.EscalationRate(); prevRate > 0 {
		curRate := current.EscalationRate()
		changePct := (curRate - prevRate) / prevRate * 100

		if changePct > g.cfg.Alerts.EscalationSpikePct {
			alerts = append(alerts, model.Alert{
				AlertID:     g.nextID(),
				CampaignID:  g.campaign.CampaignID,
				Kind:        model.AlertEscalationSpike,
				Severity:    model.SeverityMedium,
				TriggeredAt: time.Now().UTC(),
				Title:       "Escalation Rate Spiking",
				Message: fmt.Sprintf("Escalations increased %.1f%% to %.1f%%. %d calls escalated.",
					changePct, curRate*100, current.EscalatedCalls),
				MetricName:       "escalation_rate",
				CurrentValue:     curRate,
				PreviousValue:    prevRate,
				ThresholdValue:   prevRate * (1 + g.cfg.Alerts.EscalationSpikePct/100),
				PercentageChange: changePct,
				AbsoluteChange:   curRate - prevRate,
				AffectedPeriod:   current.PeriodLabel(),
				ComparisonPeriod: previous.PeriodLabel(),
			})
		}
	}

	if prevRate := previous.FailureRate(); prevRate > 0 {
		curRate := current.FailureRate()
		changePct := (curRate - prevRate) / prevRate * 100

		if changePct > g.cfg.Alerts.FailureSpikePct {
			alerts = append(alerts, model.Alert{
				AlertID:     g.nextID(),
				CampaignID:  g.campaign.CampaignID,
				Kind:        model.AlertTechnicalFailureSpike,
				Severity:    model.SeverityCritical,
				TriggeredAt: time.Now().UTC(),
				Title:       "Technical Failures Spiking",
				Message: fmt.Sprintf("System failures increased %.1f%% to %.1f%%. %d calls failed.",
					changePct, curRate*100, current.FailedCalls),
				MetricName:       "failure_rate",
				CurrentValue:     curRate,
				PreviousValue:    prevRate,
				ThresholdValue:   prevRate * (1 + g.cfg.Alerts.FailureSpikePct/100),
				PercentageChange: changePct,
				AbsoluteChange:   curRate - prevRate,
				AffectedPeriod:   current.PeriodLabel(),
				ComparisonPeriod: previous.PeriodLabel(),
			})
		}
	}

	return alerts
}

// complianceAlerts fires on any increase in violations, always critical.
func (g *Generator) complianceAlerts(current, previous model.PerformanceMetrics) []model.Alert {
	increase := current.ComplianceViolations - previous.ComplianceViolations
	if increase <= 0 {
		return nil
	}

	prevBase := previous.ComplianceViolations
	if prevBase < 1 {
		prevBase = 1
	}

	return []model.Alert{{
		AlertID:     g.nextID(),
		CampaignID:  g.campaign.CampaignID,
		Kind:        model.AlertComplianceViolationIncrease,
		Severity:    model.SeverityCritical,
		TriggeredAt: time.Now().UTC(),
		Title:       "Compliance Violations Detected",
		Message: fmt.Sprintf("Compliance violations increased by %d. Total violations: %d. IMMEDIATE ACTION REQUIRED.",
			increase, current.ComplianceViolations),
		MetricName:       "compliance_violations",
		CurrentValue:     float64(current.ComplianceViolations),
		PreviousValue:    float64(previous.ComplianceViolations),
		ThresholdValue:   float64(previous.ComplianceViolations),
		PercentageChange: float64(increase) / float64(prevBase) * 100,
		AbsoluteChange:   float64(increase),
		AffectedPeriod:   current.PeriodLabel(),
		ComparisonPeriod: previous.PeriodLabel(),
	}}
}

func (g *Generator) healthAlerts(current, previous model.HealthScore) []model.Alert {
	change := current.OverallScore - previous.OverallScore
	if float64(change) >= g.cfg.Alerts.HealthScoreDropPts {
		return nil
	}

	var severity model.Severity
	switch {
	case change < -25:
		severity = model.SeverityCritical
	case change < -20:
		severity = model.SeverityHigh
	default:
		severity = model.SeverityMedium
	}

	prevBase := previous.OverallScore
	if prevBase < 1 {
		prevBase = 1
	}

	return []model.Alert{{
		AlertID:     g.nextID(),
		CampaignID:  g.campaign.CampaignID,
		Kind:        model.AlertHealthScoreDrop,
		Severity:    severity,
		TriggeredAt: time.Now().UTC(),
		Title:       "Campaign Health Declining",
		Message: fmt.Sprintf("Overall health score dropped %d points from %d to %d",
			-change, previous.OverallScore, current.OverallScore),
		MetricName:       "health_score",
		CurrentValue:     float64(current.OverallScore),
		PreviousValue:    float64(previous.OverallScore),
		ThresholdValue:   float64(previous.OverallScore) + g.cfg.Alerts.HealthScoreDropPts,
		PercentageChange: float64(change) / float64(prevBase) * 100,
		AbsoluteChange:   float64(change),
		AffectedPeriod:   "Current period",
		ComparisonPeriod: "Previous period",
	}}
}

// issueAlerts promotes critical and high severity issues to alerts.
func (g *Generator) issueAlerts(issues []model.PerformanceIssue) []model.Alert {
	var alerts []model.Alert
	for _, issue := range issues {
		if issue.Severity != model.SeverityCritical && issue.Severity != model.SeverityHigh {
			continue
		}

		alerts = append(alerts, model.Alert{
			AlertID:     g.nextID(),
			CampaignID:  g.campaign.CampaignID,
			Kind:        model.AlertIssueDetected,
			Severity:    issue.Severity,
			TriggeredAt: time.Now().UTC(),
			Title: fmt.Sprintf("%s: %s",
				strings.ToUpper(string(issue.Severity)), titleCase(string(issue.Kind))),
			Message: g.printer.Sprintf("%s. Impact: $%.0f revenue at risk.",
				issue.RootCause, issue.RevenueImpact),
			MetricName:       string(issue.Kind),
			CurrentValue:     float64(issue.AffectedCalls),
			AbsoluteChange:   float64(issue.AffectedCalls),
			AffectedPeriod:   "Current period",
			ComparisonPeriod: "N/A",
		})
	}
	return alerts
}

// CriticalAlerts filters to critical severity only.
func CriticalAlerts(alerts []model.Alert) []model.Alert {
	var out []model.Alert
	for _, a := range alerts {
		if a.IsCritical() {
			out = append(out, a)
		}
	}
	return out
}

// FormatSummary renders a short human-readable digest of the alert list.
func FormatSummary(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return "No alerts - campaign performing normally"
	}

	var critical, high, medium int
	for _, a := range alerts {
		switch a.Severity {
		case model.SeverityCritical:
			critical++
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		}
	}

	lines := []string{
		fmt.Sprintf("%d ACTIVE ALERTS", len(alerts)),
		"",
	}
	if critical > 0 {
		lines = append(lines, fmt.Sprintf("CRITICAL: %d", critical))
	}
	if high > 0 {
		lines = append(lines, fmt.Sprintf("HIGH: %d", high))
	}
	if medium > 0 {
		lines = append(lines, fmt.Sprintf("MEDIUM: %d", medium))
	}

	lines = append(lines, "", "Top Alerts:")

	sorted := make([]model.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}
	for i, a := range sorted {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, a.Title, a.Message))
	}

	return strings.Join(lines, "\n")
}

func (g *Generator) nextID() string {
	g.counter++
	ts := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("ALERT_%s_%s_%04d", g.campaign.CampaignID, ts, g.counter)
}

// titleCase renders an issue kind like "low_conversion" as "Low Conversion".
func titleCase(kind string) string {
	words := strings.Split(kind, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
