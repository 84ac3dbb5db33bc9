// Package recommend turns detected issues into prioritized, actionable
// recommendations with estimated recovery amounts.
package recommend

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/campaign-intel/internal/config"
	"github.com/sells-group/campaign-intel/internal/model"
)

// Generator produces recommendations for one campaign. Each Generator keeps
// its own id counter, so two campaigns analyzed concurrently never share a
// sequence.
type Generator struct {
	campaign model.CampaignConfig
	cfg      config.EngineConfig
	printer  *message.Printer
	counter  int
}

// New creates a Generator for the given campaign and engine rules.
func New(campaign model.CampaignConfig, cfg config.EngineConfig) *Generator {
	return &Generator{
		campaign: campaign,
		cfg:      cfg,
		printer:  message.NewPrinter(language.English),
	}
}

// Generate produces recommendations for all issues, sorted by priority and
// then by expected recovery descending.
func (g *Generator) Generate(issues []model.PerformanceIssue) []model.ActionableRecommendation {
	var recs []model.ActionableRecommendation
	for _, issue := range issues {
		recs = append(recs, g.forIssue(issue)...)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority < recs[j].Priority
		}
		return recs[i].ExpectedRevenueRecovery > recs[j].ExpectedRevenueRecovery
	})

	zap.L().Debug("recommend: recommendations generated",
		zap.String("campaign_id", g.campaign.CampaignID),
		zap.Int("issues", len(issues)),
		zap.Int("recommendations", len(recs)),
	)

	return recs
}

func (g *Generator) forIssue(issue model.PerformanceIssue) []model.ActionableRecommendation {
	switch issue.Kind {
	case model.IssueLowConversion:
		return g.forConversion(issue)
	case model.IssueHighDropOff:
		return g.forDropOff(issue)
	case model.IssueEscalationSpike:
		return g.forEscalation(issue)
	case model.IssueComplianceRisk:
		return g.forCompliance(issue)
	case model.IssueTechnicalError:
		return g.forTechnical(issue)
	}
	return nil
}

func (g *Generator) forConversion(issue model.PerformanceIssue) []model.ActionableRecommendation {
	recs := []model.ActionableRecommendation{
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             g.priority(issue, 0.70),
			Action:               "A/B test an improved value proposition and pitch script",
			ExpectedImpact:       g.recoveryImpact(issue.RevenueImpact*0.40, "40% of lost revenue"),
			ImplementationEffort: model.EffortMedium,
			Steps: []string{
				"Analyze top 20 successful calls to identify winning patterns",
				"Rewrite pitch focusing on customer pain points mentioned in successful calls",
				"Create 2-3 variations of the pitch with different value propositions",
				"Run A/B test with 20% traffic for 3 days",
				"Roll out winning variant to 100% traffic",
			},
			ResourcesNeeded: []string{
				"Copywriter or script optimization specialist",
				"Access to call recordings and transcripts",
				"A/B testing capability in bot platform",
			},
			EstimatedTime:           "3-5 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.40,
			ExpectedConversionLift:  0.25,
			ConfidenceScore:         0.70,
		},
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             g.priority(issue, 0.65),
			Action:               "Enhance objection handling with dynamic responses",
			ExpectedImpact:       g.recoveryImpact(issue.RevenueImpact*0.30, "30% of lost revenue"),
			ImplementationEffort: model.EffortMedium,
			Steps: []string{
				"Identify top 10 objections from call transcripts",
				"Create compelling responses for each objection with proof points",
				"Train bot to recognize objection patterns and respond appropriately",
				"Add fallback responses for unexpected objections",
				"Test with sample calls before deploying",
			},
			ResourcesNeeded: []string{
				"Sales expert to craft objection responses",
				"Bot training capability",
				"Sample objection scenarios for testing",
			},
			EstimatedTime:           "4-6 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.30,
			ExpectedConversionLift:  0.20,
			ConfidenceScore:         0.65,
		},
	}

	if issue.Severity == model.SeverityCritical || issue.Severity == model.SeverityHigh {
		recs = append(recs, model.ActionableRecommendation{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             g.priority(issue, 0.55),
			Action:               "Integrate social proof and urgency elements into script",
			ExpectedImpact:       g.recoveryImpact(issue.RevenueImpact*0.25, "25% of lost revenue"),
			ImplementationEffort: model.EffortLow,
			Steps: []string{
				"Gather customer testimonials and success metrics",
				"Add specific numbers (e.g., '500+ customers', '97% satisfaction')",
				"Incorporate limited-time offers or scarcity elements",
				"Place social proof strategically before objection handling phase",
				"Test and measure impact on conversion",
			},
			ResourcesNeeded: []string{
				"Customer success data and testimonials",
				"Marketing copy guidelines",
				"Script modification access",
			},
			EstimatedTime:           "2-3 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.25,
			ExpectedConversionLift:  0.15,
			ConfidenceScore:         0.55,
		})
	}

	return recs
}

func (g *Generator) forDropOff(issue model.PerformanceIssue) []model.ActionableRecommendation {
	var recs []model.ActionableRecommendation

	switch issue.ProblematicStage {
	case model.StageIntro:
		recs = append(recs, model.ActionableRecommendation{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             1,
			Action:               "Shorten and personalize the introduction",
			ExpectedImpact:       g.printer.Sprintf("Reduce intro drop-off by 50%%, recover $%.0f", issue.RevenueImpact*0.50),
			ImplementationEffort: model.EffortLow,
			Steps: []string{
				"Cut intro to 15 seconds maximum",
				"Lead with value, not company background",
				"Personalize greeting using available lead data",
				"Get to the reason for call within first 10 seconds",
				"Add pattern interrupt or intriguing question",
			},
			ResourcesNeeded: []string{
				"Script editor access",
				"Lead data integration (name, company, etc.)",
			},
			EstimatedTime:           "1-2 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.50,
			ExpectedConversionLift:  0.30,
			ConfidenceScore:         0.80,
		})

	case model.StagePitch:
		recs = append(recs, model.ActionableRecommendation{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             1,
			Action:               "Restructure pitch to be more conversational and benefit-focused",
			ExpectedImpact:       g.printer.Sprintf("Reduce pitch drop-off by 40%%, recover $%.0f", issue.RevenueImpact*0.45),
			ImplementationEffort: model.EffortMedium,
			Steps: []string{
				"Break monologue into dialogue with confirmation questions",
				"Focus on benefits not features",
				"Use storytelling framework (problem-solution-outcome)",
				"Add pauses for engagement checks",
				"Reduce pitch length by 30%",
			},
			ResourcesNeeded: []string{
				"Sales methodology expert",
				"Call flow redesign capability",
			},
			EstimatedTime:           "3-5 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.45,
			ExpectedConversionLift:  0.35,
			ConfidenceScore:         0.75,
		})

	case model.StageObjectionHandling:
		recs = append(recs, model.ActionableRecommendation{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             1,
			Action:               "Improve objection detection and response quality",
			ExpectedImpact:       g.printer.Sprintf("Reduce objection-phase drop-off by 45%%, recover $%.0f", issue.RevenueImpact*0.50),
			ImplementationEffort: model.EffortHigh,
			Steps: []string{
				"Analyze all objections from dropped calls",
				"Train bot NLU to better recognize objection patterns",
				"Create empathetic, non-defensive response frameworks",
				"Add confirmation loop to ensure objection is addressed",
				"Implement graceful transition after objection handling",
			},
			ResourcesNeeded: []string{
				"NLU/ML engineer for bot training",
				"Sales psychology expert",
				"Call transcript analysis",
			},
			EstimatedTime:           "5-7 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.50,
			ExpectedConversionLift:  0.40,
			ConfidenceScore:         0.70,
		})
	}

	recs = append(recs, model.ActionableRecommendation{
		RecommendationID:     g.nextID(),
		IssueID:              issue.IssueID,
		Priority:             2,
		Action:               "Implement engagement monitoring and recovery mechanisms",
		ExpectedImpact:       g.printer.Sprintf("Catch and recover 20%% of at-risk calls, $%.0f", issue.RevenueImpact*0.20),
		ImplementationEffort: model.EffortMedium,
		Steps: []string{
			"Add sentiment detection to identify disengagement",
			"Create 'rescue' scripts when engagement drops",
			"Implement conversation pacing adjustments",
			"Add value-add interrupts when losing attention",
			"Create smooth exit options to avoid awkward hang-ups",
		},
		ResourcesNeeded: []string{
			"Sentiment analysis integration",
			"Dynamic scripting capability",
			"A/B testing for rescue scripts",
		},
		EstimatedTime:           "4-6 days",
		ExpectedRevenueRecovery: issue.RevenueImpact * 0.20,
		ExpectedConversionLift:  0.15,
		ConfidenceScore:         0.60,
	})

	return recs
}

func (g *Generator) forEscalation(issue model.PerformanceIssue) []model.ActionableRecommendation {
	topReason := evidenceString(issue, "top_reason")

	return []model.ActionableRecommendation{
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             2,
			Action:               fmt.Sprintf("Train bot to handle '%s' scenarios autonomously", topReason),
			ExpectedImpact:       g.printer.Sprintf("Reduce escalations by 40%%, save $%.0f in agent costs", issue.RevenueImpact*0.40),
			ImplementationEffort: model.EffortHigh,
			Steps: []string{
				fmt.Sprintf("Collect all '%s' escalation call recordings", topReason),
				"Identify what information or capability bot was missing",
				"Train bot with required knowledge and response patterns",
				"Create decision tree for complex scenarios",
				"Add confidence checks before escalating",
				"Test with similar scenarios before deployment",
			},
			ResourcesNeeded: []string{
				"ML engineer for bot training",
				"Domain knowledge expert",
				"Test scenario creation",
				"QA testing capability",
			},
			EstimatedTime:           "1-2 weeks",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.40,
			ExpectedConversionLift:  0,
			ConfidenceScore:         0.65,
		},
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             3,
			Action:               "Improve escalation qualification criteria",
			ExpectedImpact:       g.printer.Sprintf("Reduce unnecessary escalations by 25%%, save $%.0f", issue.RevenueImpact*0.25),
			ImplementationEffort: model.EffortLow,
			Steps: []string{
				"Review escalated calls to identify premature escalations",
				"Set stricter criteria for when to escalate",
				"Add bot confidence scoring before escalation",
				"Create intermediate 'retry' step before escalating",
				"Train bot to attempt resolution at least twice",
			},
			ResourcesNeeded: []string{
				"Escalation log analysis",
				"Bot logic configuration access",
			},
			EstimatedTime:           "2-3 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.25,
			ExpectedConversionLift:  0,
			ConfidenceScore:         0.70,
		},
	}
}

func (g *Generator) forCompliance(issue model.PerformanceIssue) []model.ActionableRecommendation {
	topViolation := evidenceString(issue, "top_violation")

	// Compliance fixes always go to the front of the queue.
	return []model.ActionableRecommendation{
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             1,
			Action:               fmt.Sprintf("Immediately fix '%s' compliance violation in script", topViolation),
			ExpectedImpact:       g.printer.Sprintf("Eliminate 80%% of violations, avoid $%.0f in fines/risk", issue.RevenueImpact*0.80),
			ImplementationEffort: model.EffortLow,
			Steps: []string{
				"Pause campaign immediately if risk is critical",
				fmt.Sprintf("Review all instances of '%s' in current scripts", topViolation),
				"Consult legal/compliance team for approved language",
				"Update scripts with compliant alternatives",
				"Add automated compliance checks before call deployment",
				"Implement kill-switch for detecting violations in real-time",
			},
			ResourcesNeeded: []string{
				"Legal/compliance review",
				"Script update access",
				"Real-time monitoring capability",
			},
			EstimatedTime:           "1-2 days (urgent)",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.80,
			ExpectedConversionLift:  0,
			ConfidenceScore:         0.95,
		},
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             1,
			Action:               "Implement pre-call compliance validation system",
			ExpectedImpact:       "Prevent future violations, ensure 99%+ compliance rate",
			ImplementationEffort: model.EffortMedium,
			Steps: []string{
				"Create compliance rule engine",
				"Build pre-flight checks for all outbound calls",
				"Implement real-time transcript monitoring",
				"Auto-terminate calls that violate rules",
				"Generate compliance reports for auditing",
			},
			ResourcesNeeded: []string{
				"Engineering team for rule engine",
				"Compliance rule documentation",
				"Monitoring infrastructure",
			},
			EstimatedTime:           "1 week",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.90,
			ExpectedConversionLift:  0,
			ConfidenceScore:         0.90,
		},
	}
}

func (g *Generator) forTechnical(issue model.PerformanceIssue) []model.ActionableRecommendation {
	return []model.ActionableRecommendation{
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             1,
			Action:               "Investigate and fix technical infrastructure issues",
			ExpectedImpact:       g.printer.Sprintf("Eliminate 90%% of failures, recover $%.0f", issue.RevenueImpact*0.90),
			ImplementationEffort: model.EffortHigh,
			Steps: []string{
				"Review error logs for failure patterns",
				"Check API uptime and latency metrics",
				"Verify telephony provider stability",
				"Test database connection pooling",
				"Implement retry logic for transient failures",
				"Add circuit breakers for dependent services",
				"Set up proactive alerting for failures",
			},
			ResourcesNeeded: []string{
				"DevOps/SRE engineer",
				"Access to infrastructure logs",
				"Monitoring tools (APM, logging)",
				"Testing environment",
			},
			EstimatedTime:           "3-5 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.90,
			ExpectedConversionLift:  0,
			ConfidenceScore:         0.85,
		},
		{
			RecommendationID:     g.nextID(),
			IssueID:              issue.IssueID,
			Priority:             2,
			Action:               "Implement graceful degradation and fallback mechanisms",
			ExpectedImpact:       "Reduce future failure impact by 60%",
			ImplementationEffort: model.EffortMedium,
			Steps: []string{
				"Design fallback flows for common failure scenarios",
				"Implement queue-based retry system",
				"Add ability to fall back to human agents automatically",
				"Create cached responses for critical paths",
				"Build health check endpoints for all dependencies",
			},
			ResourcesNeeded: []string{
				"Backend engineer",
				"Queueing system (e.g., Redis, RabbitMQ)",
				"Caching layer",
			},
			EstimatedTime:           "5-7 days",
			ExpectedRevenueRecovery: issue.RevenueImpact * 0.60,
			ExpectedConversionLift:  0,
			ConfidenceScore:         0.75,
		},
	}
}

// priority maps severity, confidence and impact to a 1-5 priority, 1 highest.
func (g *Generator) priority(issue model.PerformanceIssue, confidence float64) int {
	var base int
	switch issue.Severity {
	case model.SeverityCritical:
		base = 1
	case model.SeverityHigh:
		base = 2
	case model.SeverityMedium:
		base = 3
	default:
		base = 4
	}

	if confidence < 0.50 {
		base++
	} else if confidence > 0.80 && base > 1 {
		base--
	}

	if issue.RevenueImpact > 50000 && base > 1 {
		base--
	}

	if base > 5 {
		return 5
	}
	if base < 1 {
		return 1
	}
	return base
}

func (g *Generator) recoveryImpact(amount float64, share string) string {
	return g.printer.Sprintf("Potential to recover $%.0f", amount) + " (" + share + ")"
}

func (g *Generator) nextID() string {
	g.counter++
	return fmt.Sprintf("REC_%s_%04d", g.campaign.CampaignID, g.counter)
}

func evidenceString(issue model.PerformanceIssue, key string) string {
	if v, ok := issue.Evidence[key].(string); ok && v != "" {
		return v
	}
	return "Unknown"
}
