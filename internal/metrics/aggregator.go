// Package metrics reduces a period's call records to a PerformanceMetrics
// snapshot. Aggregation is a pure function of its input.
package metrics

import (
	"time"

	"github.com/sells-group/campaign-intel/internal/model"
)

// Aggregate computes a metrics snapshot over records. An empty collection
// yields a zeroed snapshot anchored at now, not an error.
func Aggregate(campaignID string, records []model.CallRecord) model.PerformanceMetrics {
	if len(records) == 0 {
		now := time.Now().UTC()
		return model.PerformanceMetrics{
			CampaignID:     campaignID,
			PeriodStart:    now,
			PeriodEnd:      now,
			DropOffByStage: map[model.DropOffStage]int{},
		}
	}

	m := model.PerformanceMetrics{
		CampaignID:     campaignID,
		PeriodStart:    records[0].Timestamp,
		PeriodEnd:      records[0].Timestamp,
		DropOffByStage: map[model.DropOffStage]int{},
	}

	var durationSum, sentimentSum float64
	for _, r := range records {
		m.TotalCalls++
		switch r.Status {
		case model.StatusCompleted:
			m.CompletedCalls++
		case model.StatusDropped:
			m.DroppedCalls++
		case model.StatusEscalated:
			m.EscalatedCalls++
		case model.StatusFailed:
			m.FailedCalls++
		case model.StatusComplianceViolation:
			m.ComplianceViolations++
		}

		if r.Converted() {
			m.Conversions++
		}
		m.TotalRevenue += r.ActualRevenue
		m.ExpectedRevenue += r.ConversionValue

		durationSum += float64(r.DurationSeconds)
		sentimentSum += r.SentimentScore

		if r.DropOffStage != "" {
			m.DropOffByStage[r.DropOffStage]++
		}

		if r.Timestamp.Before(m.PeriodStart) {
			m.PeriodStart = r.Timestamp
		}
		if r.Timestamp.After(m.PeriodEnd) {
			m.PeriodEnd = r.Timestamp
		}
	}

	m.ConversionRate = float64(m.Conversions) / float64(m.TotalCalls)
	m.RevenueLeakage = m.ExpectedRevenue - m.TotalRevenue
	if m.ExpectedRevenue > 0 {
		m.RevenueLeakagePercentage = m.RevenueLeakage / m.ExpectedRevenue * 100
	}
	m.AvgCallDuration = durationSum / float64(m.TotalCalls)
	m.AvgSentimentScore = sentimentSum / float64(m.TotalCalls)

	return m
}
