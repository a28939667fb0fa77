package mcp

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"roadmap-mcp/internal/timeline"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: text},
		},
	}
}

func jsonResult(data any) (*sdk.CallToolResult, any, error) {
	text, err := formatJSON(data)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func formatJSON(data any) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// canonicalRecords collapses the index's alias spellings into one sorted
// record list.
func canonicalRecords(index timeline.IterationIndex) []timeline.IterationRecord {
	seen := make(map[string]bool)
	var records []timeline.IterationRecord
	for _, record := range index {
		if seen[record.Path] {
			continue
		}
		seen[record.Path] = true
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Start.Equal(records[j].Start) {
			return records[i].Start.Before(records[j].Start)
		}
		return records[i].Path < records[j].Path
	})
	return records
}
