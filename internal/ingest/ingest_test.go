package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/campaign-intel/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCallsCSV(t *testing.T) {
	t.Parallel()

	csv := "Call ID,Campaign,Date,Duration,Call Status,Dropoff Stage,Revenue,Sentiment,Compliance Flags\n" +
		"call_001,camp_q3,2026-08-10 09:30:00,240,COMPLETED,,5000,0.4,\n" +
		"call_002,camp_q3,2026-08-10,90,Dropped,PITCH,,-0.3,\n" +
		",,,,,,,,\n" +
		"call_003,camp_q3,2026-08-11T14:00:00,120,compliance_violation,,,,missing_disclosure; recording_consent\n"

	records, err := LoadCalls(writeFile(t, "calls.csv", csv))
	require.NoError(t, err)
	require.Len(t, records, 3, "blank rows are skipped")

	first := records[0]
	assert.Equal(t, "call_001", first.CallID)
	assert.Equal(t, "camp_q3", first.CampaignID)
	assert.Equal(t, time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 240, first.DurationSeconds)
	assert.Equal(t, model.StatusCompleted, first.Status, "status is lowercased")
	assert.InDelta(t, 5000.0, first.ActualRevenue, 0.001)
	assert.InDelta(t, 0.4, first.SentimentScore, 0.001)

	assert.Equal(t, model.StagePitch, records[1].DropOffStage)
	assert.Equal(t, []string{"missing_disclosure", "recording_consent"}, records[2].ComplianceFlags)
}

func TestLoadCallsCSVRowError(t *testing.T) {
	t.Parallel()

	csv := "call_id,status,duration_seconds\n" +
		"call_001,completed,240\n" +
		"call_002,completed,not_a_number\n"

	_, err := LoadCalls(writeFile(t, "calls.csv", csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3", "row numbers are 1-based and count the header")
	assert.Contains(t, err.Error(), `column "duration_seconds"`)
}

func TestLoadCallsCSVValidationError(t *testing.T) {
	t.Parallel()

	csv := "call_id,status,sentiment_score\n" +
		"call_001,completed,1.7\n"

	_, err := LoadCalls(writeFile(t, "calls.csv", csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "invalid sentiment score")
}

func TestLoadCallsMissingRequiredColumn(t *testing.T) {
	t.Parallel()

	csv := "call_id,duration_seconds\ncall_001,240\n"

	_, err := LoadCalls(writeFile(t, "calls.csv", csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "status"`)
}

func TestLoadCallsEmptyFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCalls(writeFile(t, "calls.csv", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file is empty")
}

func TestLoadCallsJSON(t *testing.T) {
	t.Parallel()

	data := `[
		{"call_id": "call_001", "campaign_id": "camp_q3", "status": "completed", "duration_seconds": 240, "actual_revenue": 5000},
		{"call_id": "call_002", "campaign_id": "camp_q3", "status": "escalated", "escalation_reason": "pricing_question"}
	]`

	records, err := LoadCalls(writeFile(t, "calls.json", data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.StatusEscalated, records[1].Status)
	assert.Equal(t, "pricing_question", records[1].EscalationReason)
}

func TestLoadCallsJSONValidation(t *testing.T) {
	t.Parallel()

	data := `[{"call_id": "call_001", "status": "completed", "duration_seconds": 99999}]`

	_, err := LoadCalls(writeFile(t, "calls.json", data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadCallsXLSX(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("calls")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, col := range []string{"call_id", "status", "duration_seconds", "actual_revenue"} {
		header.AddCell().SetString(col)
	}
	row := sheet.AddRow()
	row.AddCell().SetString("call_001")
	row.AddCell().SetString("completed")
	row.AddCell().SetString("240")
	row.AddCell().SetString("5000")

	path := filepath.Join(t.TempDir(), "calls.xlsx")
	require.NoError(t, f.Save(path))

	records, err := LoadCalls(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "call_001", records[0].CallID)
	assert.Equal(t, 240, records[0].DurationSeconds)
	assert.InDelta(t, 5000.0, records[0].ActualRevenue, 0.001)
}

func TestLoadCallsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := LoadCalls(writeFile(t, "calls.txt", "whatever"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file type ".txt"`)
}

func TestLoadCampaign(t *testing.T) {
	t.Parallel()

	yml := `campaign_id: camp_q3
campaign_name: Q3 Outbound
target_calls_per_day: 200
target_conversion_rate: 0.15
target_revenue_per_call: 750
avg_deal_value: 5000
compliance_rules:
  - state_disclosure
`

	campaign, err := LoadCampaign(writeFile(t, "campaign.yaml", yml))
	require.NoError(t, err)
	assert.Equal(t, "camp_q3", campaign.CampaignID)
	assert.Equal(t, "Q3 Outbound", campaign.CampaignName)
	assert.Equal(t, 200, campaign.TargetCallsPerDay)
	assert.InDelta(t, 0.15, campaign.TargetConversionRate, 1e-9)
	assert.Equal(t, []string{"state_disclosure"}, campaign.ComplianceRules)
}

func TestLoadCampaignMissingID(t *testing.T) {
	t.Parallel()

	_, err := LoadCampaign(writeFile(t, "campaign.yaml", "campaign_name: nameless\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing campaign_id")
}
