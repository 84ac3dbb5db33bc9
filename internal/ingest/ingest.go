// Package ingest loads call logs and campaign configuration from disk.
// Call logs may arrive as XLSX exports, CSV dumps, or JSON arrays; column
// headers are matched case-insensitively with a small alias table.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/campaign-intel/internal/model"
)

// Column aliases map normalized header names onto canonical field names.
var columnAliases = map[string]string{
	"call_id":           "call_id",
	"id":                "call_id",
	"campaign_id":       "campaign_id",
	"campaign":          "campaign_id",
	"timestamp":         "timestamp",
	"call_time":         "timestamp",
	"date":              "timestamp",
	"duration_seconds":  "duration_seconds",
	"duration":          "duration_seconds",
	"status":            "status",
	"call_status":       "status",
	"drop_off_stage":    "drop_off_stage",
	"dropoff_stage":     "drop_off_stage",
	"escalation_reason": "escalation_reason",
	"compliance_flags":  "compliance_flags",
	"conversion_value":  "conversion_value",
	"actual_revenue":    "actual_revenue",
	"revenue":           "actual_revenue",
	"sentiment_score":   "sentiment_score",
	"sentiment":         "sentiment_score",
	"script_version":    "script_version",
	"agent_id":          "agent_id",
}

// Timestamp layouts accepted in call logs, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadCalls reads call records from path, dispatching on file extension.
// Records are validated as they are parsed; the first invalid row aborts
// the load with the row number in the error.
func LoadCalls(path string) ([]model.CallRecord, error) {
	var (
		records []model.CallRecord
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		records, err = loadXLSX(path)
	case ".csv":
		records, err = loadCSV(path)
	case ".json":
		records, err = loadJSON(path)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("ingest: call log loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)

	return records, nil
}

func loadXLSX(path string) ([]model.CallRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}

	return rowsToRecords(rows)
}

func loadCSV(path string) ([]model.CallRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		rows = append(rows, record)
	}

	return rowsToRecords(rows)
}

func loadJSON(path string) ([]model.CallRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read json")
	}

	var records []model.CallRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "ingest: parse json")
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, eris.Wrapf(err, "ingest: record %d", i+1)
		}
	}

	return records, nil
}

// rowsToRecords maps a header row plus data rows onto call records. Row
// numbers in errors are 1-based and include the header.
func rowsToRecords(rows [][]string) ([]model.CallRecord, error) {
	if len(rows) == 0 {
		return nil, eris.New("ingest: file is empty")
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]model.CallRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isEmptyRow(row) {
			continue
		}

		record, err := parseRow(row, columns)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: row %d", rowNum)
		}
		if err := record.Validate(); err != nil {
			return nil, eris.Wrapf(err, "ingest: row %d", rowNum)
		}

		records = append(records, record)
	}

	return records, nil
}

// mapHeader resolves header cells to canonical field names by position.
// Unknown columns are ignored; call_id and status are required.
func mapHeader(header []string) (map[int]string, error) {
	columns := map[int]string{}
	seen := map[string]bool{}

	for i, cell := range header {
		normalized := normalizeHeader(cell)
		if field, ok := columnAliases[normalized]; ok && !seen[field] {
			columns[i] = field
			seen[field] = true
		}
	}

	for _, required := range []string{"call_id", "status"} {
		if !seen[required] {
			return nil, eris.Errorf("ingest: missing required column %q", required)
		}
	}

	return columns, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func parseRow(row []string, columns map[int]string) (model.CallRecord, error) {
	var record model.CallRecord

	for i, field := range columns {
		if i >= len(row) || row[i] == "" {
			continue
		}
		value := row[i]

		var err error
		switch field {
		case "call_id":
			record.CallID = value
		case "campaign_id":
			record.CampaignID = value
		case "timestamp":
			record.Timestamp, err = parseTime(value)
		case "duration_seconds":
			record.DurationSeconds, err = strconv.Atoi(value)
		case "status":
			record.Status = model.CallStatus(strings.ToLower(value))
		case "drop_off_stage":
			record.DropOffStage = model.DropOffStage(strings.ToLower(value))
		case "escalation_reason":
			record.EscalationReason = value
		case "compliance_flags":
			record.ComplianceFlags = splitFlags(value)
		case "conversion_value":
			record.ConversionValue, err = strconv.ParseFloat(value, 64)
		case "actual_revenue":
			record.ActualRevenue, err = strconv.ParseFloat(value, 64)
		case "sentiment_score":
			record.SentimentScore, err = strconv.ParseFloat(value, 64)
		case "script_version":
			record.ScriptVersion = value
		case "agent_id":
			record.AgentID = value
		}
		if err != nil {
			return model.CallRecord{}, eris.Wrapf(err, "column %q", field)
		}
	}

	return record, nil
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognized timestamp %q", value)
}

func splitFlags(value string) []string {
	var flags []string
	for _, f := range strings.Split(value, ";") {
		if f = strings.TrimSpace(f); f != "" {
			flags = append(flags, f)
		}
	}
	return flags
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// LoadCampaign reads a campaign configuration from a YAML file.
func LoadCampaign(path string) (model.CampaignConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CampaignConfig{}, eris.Wrap(err, "ingest: read campaign config")
	}

	var campaign model.CampaignConfig
	if err := yaml.Unmarshal(data, &campaign); err != nil {
		return model.CampaignConfig{}, eris.Wrap(err, "ingest: parse campaign config")
	}

	if campaign.CampaignID == "" {
		return model.CampaignConfig{}, eris.New("ingest: campaign config missing campaign_id")
	}

	return campaign, nil
}
