package revenue

import (
	"github.com/sells-group/campaign-intel/internal/model"
)

// ImpactBreakdown splits an issue's dollar impact into how the money is
// actually lost.
type ImpactBreakdown struct {
	DirectLoss      float64 `json:"direct_loss"`
	OpportunityCost float64 `json:"opportunity_cost"`
	OperationalCost float64 `json:"operational_cost"`
	TotalImpact     float64 `json:"total_impact"`
}

// IssueImpact expands a detected issue's base revenue impact into a detailed
// breakdown. Unknown issue kinds produce a zero breakdown.
func (a *Attributor) IssueImpact(issue model.PerformanceIssue, records []model.CallRecord) ImpactBreakdown {
	switch issue.Kind {
	case model.IssueLowConversion:
		opportunity := issue.RevenueImpact * a.cfg.Costs.ConversionUpsideShare
		return ImpactBreakdown{
			DirectLoss:      issue.RevenueImpact,
			OpportunityCost: opportunity,
			TotalImpact:     issue.RevenueImpact + opportunity,
		}

	case model.IssueHighDropOff:
		opportunity := issue.RevenueImpact * a.cfg.Costs.DropOffOpportunityShare
		return ImpactBreakdown{
			DirectLoss:      issue.RevenueImpact,
			OpportunityCost: opportunity,
			TotalImpact:     issue.RevenueImpact + opportunity,
		}

	case model.IssueEscalationSpike:
		// Escalations are primarily an operational cost; delayed response
		// also forfeits a slice of deal value per escalated call.
		escalated := countStatus(records, model.StatusEscalated)
		opportunity := float64(escalated) * a.cfg.Costs.EscalationDelayShare * a.campaign.AvgDealValue
		return ImpactBreakdown{
			OpportunityCost: opportunity,
			OperationalCost: issue.RevenueImpact,
			TotalImpact:     issue.RevenueImpact + opportunity,
		}

	case model.IssueComplianceRisk:
		riskCost := issue.RevenueImpact * a.cfg.Costs.ComplianceRiskMultiplier
		return ImpactBreakdown{
			DirectLoss:      issue.RevenueImpact,
			OperationalCost: riskCost,
			TotalImpact:     issue.RevenueImpact + riskCost,
		}

	case model.IssueTechnicalError:
		return ImpactBreakdown{
			DirectLoss:      issue.RevenueImpact,
			OperationalCost: a.cfg.Costs.EngineeringFixCost,
			TotalImpact:     issue.RevenueImpact + a.cfg.Costs.EngineeringFixCost,
		}
	}

	return ImpactBreakdown{}
}

// WeeklyRevenueTrend summarizes a week-over-week revenue comparison.
type WeeklyRevenueTrend struct {
	ChangeAmount     float64     `json:"change_amount"`
	ChangePercentage float64     `json:"change_percentage"`
	Trend            model.Trend `json:"trend"`
	AlertNeeded      bool        `json:"alert_needed"`
}

// WeeklyTrend classifies the revenue change between two weeks. A campaign
// with no prior revenue reads as new rather than a 100% jump on noise.
func (a *Attributor) WeeklyTrend(currentRevenue, previousRevenue float64) WeeklyRevenueTrend {
	if previousRevenue == 0 {
		pct := 0.0
		if currentRevenue > 0 {
			pct = 100.0
		}
		return WeeklyRevenueTrend{
			ChangeAmount:     currentRevenue,
			ChangePercentage: pct,
			Trend:            model.TrendNew,
		}
	}

	change := currentRevenue - previousRevenue
	pct := change / previousRevenue * 100

	trend := model.TrendStable
	switch {
	case pct > a.cfg.Alerts.RevenueTrendBandPct:
		trend = model.TrendImproving
	case pct < -a.cfg.Alerts.RevenueTrendBandPct:
		trend = model.TrendDeclining
	}

	return WeeklyRevenueTrend{
		ChangeAmount:     change,
		ChangePercentage: pct,
		Trend:            trend,
		AlertNeeded:      pct < a.cfg.Alerts.RevenueDropPct,
	}
}
