// Package revenue quantifies where money is being lost: a leakage breakdown
// by cause and funnel stage, recoverability estimates, and counterfactual
// recovery scenarios. All computations are pure projections over the record
// set, never forecasts.
package revenue

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

// Leakage reason keys. They double as lookup keys into the configured
// recovery-potential coefficients.
const (
	ReasonDroppedCalls   = "dropped_calls"
	ReasonLowConversion  = "low_conversion"
	ReasonEscalationCost = "escalation_cost"
	ReasonTechnical      = "technical_failures"
	ReasonCompliance     = "compliance_violations"
)

// ReasonAmount pairs a leakage reason with its estimated dollar amount.
type ReasonAmount struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// LeakageBreakdown details where revenue is being lost and how much of it is
// plausibly recoverable.
type LeakageBreakdown struct {
	TotalLeakage       float64                        `json:"total_leakage"`
	LeakageByReason    map[string]float64             `json:"leakage_by_reason"`
	LeakageByStage     map[model.DropOffStage]float64 `json:"leakage_by_stage,omitempty"`
	RecoverableAmount  float64                        `json:"recoverable_amount"`
	RecoveryDifficulty string                         `json:"recovery_difficulty"`
	Top3Reasons        []ReasonAmount                 `json:"top_3_reasons"`

	// Independent counterfactuals over the same record set.
	IfConversionImproved float64 `json:"if_conversion_improved"`
	IfDropOffReduced     float64 `json:"if_dropoff_reduced"`
	IfEscalationsHandled float64 `json:"if_escalations_handled"`
}

// Attributor computes leakage breakdowns for one campaign.
type Attributor struct {
	campaign model.CampaignConfig
	cfg      config.EngineConfig
}

// New creates an Attributor for the given campaign and engine rules.
func New(campaign model.CampaignConfig, cfg config.EngineConfig) *Attributor {
	return &Attributor{campaign: campaign, cfg: cfg}
}

// Attribute computes the full leakage breakdown for a period.
func (a *Attributor) Attribute(records []model.CallRecord, m model.PerformanceMetrics) LeakageBreakdown {
	byReason := map[string]float64{
		ReasonDroppedCalls:   a.dropOffLeakage(records),
		ReasonLowConversion:  a.conversionLeakage(records),
		ReasonEscalationCost: a.escalationCost(records),
		ReasonTechnical:      a.failureLeakage(records),
		ReasonCompliance:     a.complianceCost(records),
	}

	var total float64
	for _, amount := range byReason {
		total += amount
	}

	recoverable, difficulty := a.recoverable(byReason)

	breakdown := LeakageBreakdown{
		TotalLeakage:       total,
		LeakageByReason:    byReason,
		LeakageByStage:     a.stageLeakage(records),
		RecoverableAmount:  recoverable,
		RecoveryDifficulty: difficulty,
		Top3Reasons:        topReasons(byReason, 3),

		IfConversionImproved: a.scenarioConversion(m),
		IfDropOffReduced:     a.scenarioDropOff(m),
		IfEscalationsHandled: a.scenarioEscalation(m),
	}

	zap.L().Debug("revenue: leakage attribution complete",
		zap.String("campaign_id", a.campaign.CampaignID),
		zap.Float64("total_leakage", total),
		zap.Float64("recoverable", recoverable),
	)

	return breakdown
}

// dropOffLeakage estimates the opportunity loss among dropped calls: a
// conservative share of them would have converted at the target rate.
func (a *Attributor) dropOffLeakage(records []model.CallRecord) float64 {
	dropped := countStatus(records, model.StatusDropped)
	estimated := float64(dropped) * a.cfg.Recovery.DroppedConvertibleShare * a.campaign.TargetConversionRate
	return estimated * a.campaign.AvgDealValue
}

// conversionLeakage applies the target rate to completed calls that never
// converted.
func (a *Attributor) conversionLeakage(records []model.CallRecord) float64 {
	var unconverted int
	for _, r := range records {
		if r.Status == model.StatusCompleted && r.ActualRevenue == 0 {
			unconverted++
		}
	}
	expected := float64(unconverted) * a.campaign.TargetConversionRate
	return expected * a.campaign.AvgDealValue
}

// escalationCost is an operational cost, not a direct revenue loss: agent
// time plus a share of deal value lost to delayed response.
func (a *Attributor) escalationCost(records []model.CallRecord) float64 {
	escalated := countStatus(records, model.StatusEscalated)
	perEscalation := a.cfg.Costs.EscalationAgentCost + a.campaign.AvgDealValue*a.cfg.Recovery.EscalationDealShare
	return float64(escalated) * perEscalation
}

// failureLeakage treats failed calls as complete lost opportunities.
func (a *Attributor) failureLeakage(records []model.CallRecord) float64 {
	failed := countStatus(records, model.StatusFailed)
	return float64(failed) * a.campaign.TargetConversionRate * a.campaign.AvgDealValue
}

// complianceCost combines a nominal fine unit with the lost deal.
func (a *Attributor) complianceCost(records []model.CallRecord) float64 {
	violations := countStatus(records, model.StatusComplianceViolation)
	perViolation := a.cfg.Costs.ComplianceFineUnit + a.campaign.AvgDealValue
	return float64(violations) * perViolation
}

// stageLeakage applies the configured stage conversion-probability table to
// drop counts at each funnel stage. Stages with no loss are omitted.
func (a *Attributor) stageLeakage(records []model.CallRecord) map[model.DropOffStage]float64 {
	drops := map[model.DropOffStage]int{}
	for _, r := range records {
		if r.DropOffStage != "" {
			drops[r.DropOffStage]++
		}
	}

	out := map[model.DropOffStage]float64{}
	for _, stage := range model.AllStages {
		prob := a.cfg.Recovery.StageProbability[stage]
		leak := float64(drops[stage]) * prob * a.campaign.AvgDealValue
		if leak > 0 {
			out[stage] = leak
		}
	}
	return out
}

// recoverable weighs each leakage component by its recovery-potential
// coefficient and derives difficulty from the dominant component.
func (a *Attributor) recoverable(byReason map[string]float64) (float64, string) {
	var recoverable float64
	for reason, leak := range byReason {
		potential, ok := a.cfg.Recovery.Potential[reason]
		if !ok {
			potential = 0.50
		}
		recoverable += leak * potential
	}

	dominant := ""
	for _, entry := range topReasons(byReason, 1) {
		dominant = entry.Reason
	}

	var difficulty string
	switch dominant {
	case ReasonTechnical, ReasonCompliance:
		difficulty = "easy"
	case ReasonDroppedCalls, ReasonLowConversion:
		difficulty = "medium"
	case ReasonEscalationCost:
		difficulty = "hard"
	default:
		difficulty = "medium"
	}

	return recoverable, difficulty
}

// scenarioConversion: revenue if the conversion rate hit target.
func (a *Attributor) scenarioConversion(m model.PerformanceMetrics) float64 {
	if m.ConversionRate >= a.campaign.TargetConversionRate {
		return 0
	}
	additional := (a.campaign.TargetConversionRate - m.ConversionRate) * float64(m.TotalCalls)
	return additional * a.campaign.AvgDealValue
}

// scenarioDropOff: revenue if drop-off were cut by the configured share.
func (a *Attributor) scenarioDropOff(m model.PerformanceMetrics) float64 {
	if m.DroppedCalls == 0 {
		return 0
	}
	recovered := float64(m.DroppedCalls) * a.cfg.Recovery.DropOffReductionShare
	return recovered * a.campaign.TargetConversionRate * a.campaign.AvgDealValue
}

// scenarioEscalation: net effect of containing most escalations in the bot.
// Agent cost savings offset by the bot's lower close rate.
func (a *Attributor) scenarioEscalation(m model.PerformanceMetrics) float64 {
	if m.EscalatedCalls == 0 {
		return 0
	}
	contained := float64(m.EscalatedCalls) * a.cfg.Recovery.EscalationContainShare
	savedCost := contained * a.cfg.Costs.EscalationAgentCost
	revenueDiff := contained * a.cfg.Recovery.BotConversionDelta * a.campaign.AvgDealValue
	return savedCost + revenueDiff
}

func countStatus(records []model.CallRecord, status model.CallStatus) int {
	n := 0
	for _, r := range records {
		if r.Status == status {
			n++
		}
	}
	return n
}

// topReasons returns the n largest leakage components, largest first. Ties
// resolve lexicographically so output is deterministic.
func topReasons(byReason map[string]float64, n int) []ReasonAmount {
	entries := make([]ReasonAmount, 0, len(byReason))
	for reason, amount := range byReason {
		entries = append(entries, ReasonAmount{Reason: reason, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Reason < entries[j].Reason
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
