// Package report orchestrates the analysis pipeline: metrics, issue
// detection, revenue attribution, recommendations, health scoring and
// alerting, assembled into a single intelligence report.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/campaign-intel/internal/alert"
	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/detector"
	"github.com/sells-group/campaign-intel/internal/health"
	"github.com/sells-group/campaign-intel/internal/metrics"
	"github.com/sells-group/campaign-intel/internal/model"
	"github.com/sells-group/campaign-intel/internal/recommend"
	"github.com/sells-group/campaign-intel/internal/revenue"
)

// Engine wires the analysis modules for one campaign. Engines are cheap to
// construct; batch jobs build one per campaign so id sequences stay
// independent.
type Engine struct {
	campaign model.CampaignConfig
	cfg      config.EngineConfig

	detector    *detector.Detector
	attributor  *revenue.Attributor
	recommender *recommend.Generator
	scorer      *health.Scorer
	alerter     *alert.Generator
	printer     *message.Printer
}

// New creates an Engine for the given campaign and engine rules.
func New(campaign model.CampaignConfig, cfg config.EngineConfig) *Engine {
	return &Engine{
		campaign: campaign,
		cfg:      cfg,

		detector:    detector.New(campaign, cfg),
		attributor:  revenue.New(campaign, cfg),
		recommender: recommend.New(campaign, cfg),
		scorer:      health.New(campaign, cfg),
		alerter:     alert.New(campaign, cfg),
		printer:     message.NewPrinter(language.English),
	}
}

// Analyze runs the full pipeline over the current period, comparing against
// the previous period when one is supplied. Invalid records abort the run.
func (e *Engine) Analyze(currentCalls, previousCalls []model.CallRecord) (*model.IntelligenceReport, error) {
	if err := validateRecords(currentCalls); err != nil {
		return nil, eris.Wrap(err, "report: current period")
	}
	if err := validateRecords(previousCalls); err != nil {
		return nil, eris.Wrap(err, "report: previous period")
	}

	zap.L().Info("report: analysis started",
		zap.String("campaign_id", e.campaign.CampaignID),
		zap.Int("current_calls", len(currentCalls)),
		zap.Int("previous_calls", len(previousCalls)),
	)

	current := metrics.Aggregate(e.campaign.CampaignID, currentCalls)
	var previous *model.PerformanceMetrics
	if len(previousCalls) > 0 {
		m := metrics.Aggregate(e.campaign.CampaignID, previousCalls)
		previous = &m
	}

	issues := e.detector.Detect(current, currentCalls)
	leakage := e.attributor.Attribute(currentCalls, current)
	recommendations := e.recommender.Generate(issues)
	currentHealth := e.scorer.Score(current, previous, issues)

	var alerts []model.Alert
	if previous != nil {
		previousHealth := e.scorer.Score(*previous, nil, nil)
		alerts = e.alerter.Generate(current, *previous, currentHealth, &previousHealth, issues)
	}

	report := &model.IntelligenceReport{
		ReportID:       fmt.Sprintf("RPT_%s_%s", e.campaign.CampaignID, uuid.NewString()),
		CampaignID:     e.campaign.CampaignID,
		ReportDate:     time.Now().UTC(),
		PeriodAnalyzed: current.PeriodLabel(),

		PerformanceMetrics: current,
		HealthScore:        currentHealth,

		Issues:          issues,
		Recommendations: recommendations,
		ActiveAlerts:    alerts,

		WeekOverWeekChanges: wowChanges(current, previous),

		Summary:       e.executiveSummary(current, currentHealth, issues, leakage, alerts),
		KeyInsights:   e.keyInsights(current, leakage, recommendations, alerts),
		UrgentActions: e.urgentActions(issues, recommendations, alerts),
	}

	zap.L().Info("report: analysis complete",
		zap.String("report_id", report.ReportID),
		zap.Int("health_score", currentHealth.OverallScore),
		zap.Int("issues", len(issues)),
		zap.Int("alerts", len(alerts)),
	)

	return report, nil
}

// QuickStatus is the lightweight status check: metrics and health only, no
// issue detection or alerting.
type QuickStatus struct {
	CampaignID     string    `json:"campaign_id"`
	HealthScore    int       `json:"health_score"`
	HealthStatus   string    `json:"health_status"`
	TotalCalls     int       `json:"total_calls"`
	ConversionRate string    `json:"conversion_rate"`
	TotalRevenue   string    `json:"total_revenue"`
	RevenueLeakage string    `json:"revenue_leakage"`
	Timestamp      time.Time `json:"timestamp"`
}

// Status computes a QuickStatus for the given period.
func (e *Engine) Status(calls []model.CallRecord) (*QuickStatus, error) {
	if err := validateRecords(calls); err != nil {
		return nil, eris.Wrap(err, "report: status")
	}

	m := metrics.Aggregate(e.campaign.CampaignID, calls)
	h := e.scorer.Score(m, nil, nil)

	return &QuickStatus{
		CampaignID:     e.campaign.CampaignID,
		HealthScore:    h.OverallScore,
		HealthStatus:   h.Status(),
		TotalCalls:     m.TotalCalls,
		ConversionRate: fmt.Sprintf("%.1f%%", m.ConversionRate*100),
		TotalRevenue:   e.printer.Sprintf("$%.0f", m.TotalRevenue),
		RevenueLeakage: e.printer.Sprintf("$%.0f", m.RevenueLeakage),
		Timestamp:      time.Now().UTC(),
	}, nil
}

// IssueAnalysis is the deep-dive view of a single issue.
type IssueAnalysis struct {
	Issue                model.PerformanceIssue           `json:"issue"`
	RevenueImpact        revenue.ImpactBreakdown          `json:"revenue_impact_breakdown"`
	Recommendations      []model.ActionableRecommendation `json:"recommendations"`
	AffectedCallsPercent float64                          `json:"affected_calls_percentage"`
}

// AnalyzeIssue drills into one issue: detailed impact breakdown plus the
// recommendations specific to it.
func (e *Engine) AnalyzeIssue(issue model.PerformanceIssue, calls []model.CallRecord) IssueAnalysis {
	var pct float64
	if len(calls) > 0 {
		pct = float64(issue.AffectedCalls) / float64(len(calls)) * 100
	}

	return IssueAnalysis{
		Issue:                issue,
		RevenueImpact:        e.attributor.IssueImpact(issue, calls),
		Recommendations:      e.recommender.Generate([]model.PerformanceIssue{issue}),
		AffectedCallsPercent: pct,
	}
}

func validateRecords(records []model.CallRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return eris.Wrapf(err, "record %d", i)
		}
	}
	return nil
}

func wowChanges(current model.PerformanceMetrics, previous *model.PerformanceMetrics) map[string]float64 {
	if previous == nil {
		return nil
	}

	changes := map[string]float64{}

	if previous.TotalRevenue > 0 {
		changes["revenue"] = (current.TotalRevenue - previous.TotalRevenue) / previous.TotalRevenue * 100
	}
	if previous.ConversionRate > 0 {
		changes["conversion_rate"] = (current.ConversionRate - previous.ConversionRate) / previous.ConversionRate * 100
	}
	if previous.TotalCalls > 0 {
		changes["call_volume"] = float64(current.TotalCalls-previous.TotalCalls) / float64(previous.TotalCalls) * 100
	}
	if prevDrop := previous.DropOffRate(); prevDrop > 0 {
		changes["drop_off_rate"] = (current.DropOffRate() - prevDrop) / prevDrop * 100
	}

	return changes
}

func (e *Engine) executiveSummary(
	m model.PerformanceMetrics,
	h model.HealthScore,
	issues []model.PerformanceIssue,
	leakage revenue.LeakageBreakdown,
	alerts []model.Alert,
) string {
	parts := []string{
		fmt.Sprintf("Campaign '%s' health score: %d/100 (%s)", e.campaign.CampaignName, h.OverallScore, h.Status()),
	}

	weeklyTarget := e.campaign.ExpectedDailyRevenue() * 7
	revenueVsTarget := 0.0
	if weeklyTarget > 0 {
		revenueVsTarget = m.TotalRevenue / weeklyTarget * 100
	}
	parts = append(parts, e.printer.Sprintf("Revenue: $%.0f (%.0f%% of target) with $%.0f in leakage (%.1f%%)",
		m.TotalRevenue, revenueVsTarget, m.RevenueLeakage, m.RevenueLeakagePercentage))

	parts = append(parts, fmt.Sprintf("Conversion rate: %.1f%% (target: %.1f%%) from %d calls",
		m.ConversionRate*100, e.campaign.TargetConversionRate*100, m.TotalCalls))

	var criticalIssues int
	for _, issue := range issues {
		if issue.Severity == model.SeverityCritical {
			criticalIssues++
		}
	}
	if criticalIssues > 0 {
		parts = append(parts, fmt.Sprintf("%d CRITICAL issues requiring immediate attention", criticalIssues))
	}

	if critical := alert.CriticalAlerts(alerts); len(critical) > 0 {
		parts = append(parts, fmt.Sprintf("%d CRITICAL alerts triggered", len(critical)))
	}

	parts = append(parts, e.printer.Sprintf("Recovery opportunity: $%.0f (%s difficulty)",
		leakage.RecoverableAmount, leakage.RecoveryDifficulty))

	return strings.Join(parts, " | ")
}

func (e *Engine) keyInsights(
	m model.PerformanceMetrics,
	leakage revenue.LeakageBreakdown,
	recommendations []model.ActionableRecommendation,
	alerts []model.Alert,
) []string {
	var insights []string

	if len(leakage.Top3Reasons) > 0 && leakage.TotalLeakage > 0 {
		top := leakage.Top3Reasons[0]
		insights = append(insights, e.printer.Sprintf("Largest revenue leak: %s ($%.0f, %.0f%% of total leakage)",
			titleCase(top.Reason), top.Amount, top.Amount/leakage.TotalLeakage*100))
	}

	if m.ConversionRate < e.campaign.TargetConversionRate {
		gap := e.campaign.TargetConversionRate - m.ConversionRate
		potential := gap * float64(m.TotalCalls) * e.campaign.AvgDealValue
		insights = append(insights, e.printer.Sprintf("Closing conversion gap to target would recover $%.0f", potential))
	}

	if len(m.DropOffByStage) > 0 {
		stage, count := worstStage(m.DropOffByStage)
		insights = append(insights, fmt.Sprintf("Highest drop-off at '%s' stage (%d calls)", stage, count))
	}

	if len(recommendations) > 0 {
		top := recommendations[0]
		insights = append(insights, e.printer.Sprintf("Top recommendation: %s ($%.0f potential recovery)",
			top.Action, top.ExpectedRevenueRecovery))
	}

	var declining int
	for _, a := range alerts {
		if strings.Contains(strings.ToLower(string(a.Kind)), "drop") ||
			strings.Contains(strings.ToLower(a.Message), "declining") {
			declining++
		}
	}
	if declining > 0 {
		insights = append(insights, fmt.Sprintf("Performance declining in %d key metrics - immediate action needed", declining))
	}

	return insights
}

func (e *Engine) urgentActions(
	issues []model.PerformanceIssue,
	recommendations []model.ActionableRecommendation,
	alerts []model.Alert,
) []string {
	var urgent []string

	for _, issue := range issues {
		if issue.Kind == model.IssueComplianceRisk {
			urgent = append(urgent, "IMMEDIATE: Fix compliance violations to avoid regulatory risk")
			break
		}
	}

	critical := alert.CriticalAlerts(alerts)
	if len(critical) > 2 {
		critical = critical[:2]
	}
	for _, a := range critical {
		urgent = append(urgent, "CRITICAL: "+a.Title)
	}

	var highImpact int
	for _, rec := range recommendations {
		if rec.Priority != 1 || rec.ExpectedRevenueRecovery <= 10000 {
			continue
		}
		urgent = append(urgent, e.printer.Sprintf("Priority %d: %s ($%.0f recovery, %s)",
			rec.Priority, rec.Action, rec.ExpectedRevenueRecovery, rec.EstimatedTime))
		highImpact++
		if highImpact == 3 {
			break
		}
	}

	if len(urgent) == 0 {
		urgent = append(urgent, "No urgent actions - continue monitoring performance")
	}

	return urgent
}

// worstStage returns the stage with the highest drop count, stage order
// breaking ties deterministically.
func worstStage(byStage map[model.DropOffStage]int) (model.DropOffStage, int) {
	var worst model.DropOffStage
	best := -1
	for _, stage := range model.AllStages {
		if count, ok := byStage[stage]; ok && count > best {
			worst, best = stage, count
		}
	}
	if best < 0 {
		// Unknown stage keys still get reported.
		keys := make([]string, 0, len(byStage))
		for k := range byStage {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			worst = model.DropOffStage(keys[0])
			best = byStage[worst]
		}
	}
	return worst, best
}

func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
