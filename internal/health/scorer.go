// Package health computes a weighted 0-100 campaign health score from five
// component scores: conversion, revenue, compliance, efficiency, quality.
package health

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

// Curve shape constants. These define how raw rates map onto the 0-100
// scale; the tunable targets and weights live in config.
const (
	// Conversion is scored against the campaign target and the industry
	// benchmark, mixed 60/40.
	targetMix    = 0.60
	benchmarkMix = 0.40

	// Each point of completion rate above benchmark adds half a point.
	completionBonusScale = 50

	// Compliance bands.
	complianceAcceptable = 0.95
	compliancePoor       = 0.90

	// Efficiency mixes drop-off, escalation and failure scores.
	dropMix       = 0.40
	escalationMix = 0.40
	failureMix    = 0.20

	failureOK           = 0.02
	failureConcern      = 0.05
	failureConcernScore = 60

	// Quality mixes sentiment and duration.
	sentimentMix = 0.70
	durationMix  = 0.30
)

// Scorer computes health scores for one campaign.
type Scorer struct {
	campaign model.CampaignConfig
	cfg      config.EngineConfig
}

// New creates a Scorer for the given campaign and engine rules.
func New(campaign model.CampaignConfig, cfg config.EngineConfig) *Scorer {
	return &Scorer{campaign: campaign, cfg: cfg}
}

// Score computes the composite health score. previous may be nil when no
// prior period exists; issues feed component penalties.
func (s *Scorer) Score(m model.PerformanceMetrics, previous *model.PerformanceMetrics, issues []model.PerformanceIssue) model.HealthScore {
	conversion := s.scoreConversion(m)
	revenue := s.scoreRevenue(m)
	compliance := s.scoreCompliance(m)
	efficiency := s.scoreEfficiency(m)
	quality := s.scoreQuality(m)

	if len(issues) > 0 {
		conversionIssues := []model.IssueKind{model.IssueLowConversion, model.IssueHighDropOff}
		conversion = s.applyPenalty(conversion, issues, conversionIssues)
		revenue = s.applyPenalty(revenue, issues, conversionIssues)
		compliance = s.applyPenalty(compliance, issues, []model.IssueKind{model.IssueComplianceRisk})
	}

	w := s.cfg.Weights
	overall := int(
		float64(conversion)*w.Conversion +
			float64(revenue)*w.Revenue +
			float64(compliance)*w.Compliance +
			float64(efficiency)*w.Efficiency +
			float64(quality)*w.Quality,
	)

	trend, wowChange := s.trend(m, previous)

	score := model.HealthScore{
		CampaignID:   s.campaign.CampaignID,
		CalculatedAt: time.Now().UTC(),
		OverallScore: overall,

		ConversionHealth: conversion,
		RevenueHealth:    revenue,
		ComplianceHealth: compliance,
		EfficiencyHealth: efficiency,
		QualityHealth:    quality,

		Trend:              trend,
		WeekOverWeekChange: wowChange,

		ScoreComponents: map[string]float64{
			"conversion_health": float64(conversion),
			"revenue_health":    float64(revenue),
			"compliance_health": float64(compliance),
			"efficiency_health": float64(efficiency),
			"quality_health":    float64(quality),
			"conversion_weight": w.Conversion,
			"revenue_weight":    w.Revenue,
			"compliance_weight": w.Compliance,
			"efficiency_weight": w.Efficiency,
			"quality_weight":    w.Quality,
		},
	}

	zap.L().Debug("health: score calculated",
		zap.String("campaign_id", s.campaign.CampaignID),
		zap.Int("overall", overall),
		zap.String("trend", string(trend)),
	)

	return score
}

// scoreConversion rates the conversion rate against the campaign target and
// the industry benchmark, with a bonus for above-benchmark completion.
func (s *Scorer) scoreConversion(m model.PerformanceMetrics) int {
	targetScore := 50.0
	if s.campaign.TargetConversionRate > 0 {
		targetScore = min100(m.ConversionRate / s.campaign.TargetConversionRate * 100)
	}
	benchmarkScore := min100(m.ConversionRate / s.cfg.Benchmarks.ConversionRate * 100)

	score := targetScore*targetMix + benchmarkScore*benchmarkMix

	if completion := m.CompletionRate(); completion > s.cfg.Benchmarks.CompletionRate {
		score += (completion - s.cfg.Benchmarks.CompletionRate) * completionBonusScale
	}

	return clampScore(score)
}

// scoreRevenue rates revenue achievement against expectation, penalized by
// leakage and boosted when per-call revenue beats the campaign target.
func (s *Scorer) scoreRevenue(m model.PerformanceMetrics) int {
	base := 50.0
	if m.ExpectedRevenue > 0 {
		base = min100(m.TotalRevenue / m.ExpectedRevenue * 100)
	}

	score := base - m.RevenueLeakagePercentage/2

	if m.TotalCalls > 0 && s.campaign.TargetRevenuePerCall > 0 {
		ratio := m.TotalRevenue / float64(m.TotalCalls) / s.campaign.TargetRevenuePerCall
		if ratio > 1 {
			score += (ratio - 1) * 20
		}
	}

	return clampScore(score)
}

// scoreCompliance is deliberately strict: the score falls off a cliff as the
// compliance rate leaves the benchmark band.
func (s *Scorer) scoreCompliance(m model.PerformanceMetrics) int {
	if m.TotalCalls == 0 {
		return 100
	}

	rate := m.ComplianceRate()
	benchmark := s.cfg.Benchmarks.ComplianceRate

	var score float64
	switch {
	case rate >= benchmark:
		score = 95 + (rate-benchmark)*500
	case rate >= complianceAcceptable:
		score = 70 + (rate-complianceAcceptable)*833
	case rate >= compliancePoor:
		score = 40 + (rate-compliancePoor)*600
	default:
		score = rate * 40
	}

	return clampScore(score)
}

// scoreEfficiency combines drop-off, escalation and technical failure rates.
func (s *Scorer) scoreEfficiency(m model.PerformanceMetrics) int {
	if m.TotalCalls == 0 {
		return 100
	}

	dropScore := 50.0
	if s.cfg.Benchmarks.CompletionRate > 0 {
		dropScore = m.CompletionRate() / s.cfg.Benchmarks.CompletionRate * 100
	}

	escalationScore := 100.0
	if rate := m.EscalationRate(); rate > s.cfg.Benchmarks.EscalationRate {
		excess := (rate - s.cfg.Benchmarks.EscalationRate) / s.cfg.Benchmarks.EscalationRate
		escalationScore = maxFloat(0, 100-excess*100)
	}

	var failureScore float64
	switch rate := m.FailureRate(); {
	case rate <= failureOK:
		failureScore = 100
	case rate <= failureConcern:
		failureScore = failureConcernScore
	default:
		failureScore = maxFloat(0, 100-rate*500)
	}

	score := dropScore*dropMix + escalationScore*escalationMix + failureScore*failureMix
	return clampScore(score)
}

// scoreQuality combines sentiment and call-duration signals. The benchmark
// sentiment maps to 70; negative sentiment falls below 50 fast.
func (s *Scorer) scoreQuality(m model.PerformanceMetrics) int {
	benchmark := s.cfg.Benchmarks.AvgSentiment

	var sentimentScore float64
	switch sentiment := m.AvgSentimentScore; {
	case sentiment >= benchmark:
		sentimentScore = 70 + (sentiment-benchmark)/0.30*30
	case sentiment >= 0:
		sentimentScore = 50 + sentiment/benchmark*20
	default:
		sentimentScore = 50 + sentiment*50
	}

	var durationScore float64
	minIdeal := s.cfg.Scoring.IdealDurationMinSecs
	maxIdeal := s.cfg.Scoring.IdealDurationMaxSecs
	switch duration := m.AvgCallDuration; {
	case duration >= minIdeal && duration <= maxIdeal:
		durationScore = 100
	case duration < minIdeal:
		durationScore = duration / minIdeal * 100
	default:
		// Long calls degrade slowly with a floor at 60.
		durationScore = maxFloat(60, 100-(duration-maxIdeal)/60*10)
	}

	score := sentimentScore*sentimentMix + durationScore*durationMix
	return clampScore(score)
}

// applyPenalty subtracts severity-scaled penalties for issues relevant to a
// component, with a floor at zero.
func (s *Scorer) applyPenalty(score int, issues []model.PerformanceIssue, relevant []model.IssueKind) int {
	var total float64
	for _, issue := range issues {
		for _, kind := range relevant {
			if issue.Kind == kind {
				total += s.cfg.Scoring.Penalty(issue.Severity)
				break
			}
		}
	}
	if penalized := score - int(total); penalized > 0 {
		return penalized
	}
	return 0
}

// trend classifies week-over-week movement by total revenue.
func (s *Scorer) trend(current model.PerformanceMetrics, previous *model.PerformanceMetrics) (model.Trend, float64) {
	if previous == nil {
		return model.TrendNew, 0
	}
	if previous.TotalRevenue == 0 {
		if current.TotalRevenue > 0 {
			return model.TrendImproving, 100
		}
		return model.TrendImproving, 0
	}

	changePct := (current.TotalRevenue - previous.TotalRevenue) / previous.TotalRevenue * 100

	switch {
	case changePct > s.cfg.Alerts.RevenueTrendBandPct:
		return model.TrendImproving, changePct
	case changePct < -s.cfg.Alerts.RevenueTrendBandPct:
		return model.TrendDeclining, changePct
	default:
		return model.TrendStable, changePct
	}
}

func min100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clampScore(v float64) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return int(v)
}
