package visuals

import (
	"fmt"
	"strings"

	"roadmap-mcp/internal/timeline"
)

// maxTasksPerSection caps the rows emitted per value stream so the text
// chart stays readable in tool output.
const maxTasksPerSection = 20

// GenerateRoadmapGantt creates a Mermaid gantt chart of the roadmap: one
// section per value stream, one bar per root with its resolved iteration
// span. Descendants are not drawn; the chart is a root-level overview.
func GenerateRoadmapGantt(streams []timeline.ValueStream) string {
	if len(streams) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("gantt\n")
	sb.WriteString("    title Roadmap\n")
	sb.WriteString("    dateFormat YYYY-MM-DD\n")
	sb.WriteString("    axisFormat %b %Y\n")

	for _, stream := range streams {
		sb.WriteString(fmt.Sprintf("    section %s\n", sanitizeLabel(stream.Name)))

		limit := len(stream.WorkItems)
		if limit > maxTasksPerSection {
			limit = maxTasksPerSection
		}
		for i := 0; i < limit; i++ {
			item := stream.WorkItems[i]
			label := fmt.Sprintf("%s (%d/%d)", sanitizeLabel(item.Title), item.CompletedChildCount, item.ChildCount)
			sb.WriteString(fmt.Sprintf("    %s :%s, %s, %s\n",
				label,
				taskTag(item),
				item.IterationStart.Format("2006-01-02"),
				item.IterationEnd.Format("2006-01-02")))
		}
	}

	sb.WriteString("```")
	return sb.String()
}

// taskTag maps completion to a Mermaid task state.
func taskTag(item *timeline.WorkItemNode) string {
	if item.ChildCount > 0 && item.CompletedChildCount == item.ChildCount {
		return "done"
	}
	return "active"
}

// sanitizeLabel strips the characters Mermaid's gantt parser treats as
// syntax (colons and commas delimit task metadata).
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, ":", " ")
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "#", " ")
	return strings.Join(strings.Fields(s), " ")
}
