package timeline

import (
	"fmt"
	"strings"
)

// BuildTreeQuery produces a single link-traversal query selecting every
// work item reachable via forward hierarchy links from matching roots.
// The iteration filter restricts roots only; descendants inherit
// visibility from their root. With no explicit path set, roots with an
// empty iteration path are filtered out before execution since they carry
// no placement information.
func BuildTreeQuery(project string, rootType RootType, iterationPaths []string) string {
	var sb strings.Builder

	sb.WriteString("SELECT [System.Id] FROM workitemLinks WHERE (")
	sb.WriteString(fmt.Sprintf("[Source].[System.TeamProject] = '%s'", escapeWiql(project)))
	sb.WriteString(fmt.Sprintf(" AND [Source].[System.WorkItemType] = '%s'", escapeWiql(string(rootType))))
	sb.WriteString(" AND [Source].[System.State] <> 'Closed'")
	sb.WriteString(" AND [Source].[System.State] <> 'Removed'")

	if len(iterationPaths) > 0 {
		clauses := make([]string, len(iterationPaths))
		for i, path := range iterationPaths {
			clauses[i] = fmt.Sprintf("[Source].[System.IterationPath] = '%s'", escapeWiql(path))
		}
		sb.WriteString(" AND (")
		sb.WriteString(strings.Join(clauses, " OR "))
		sb.WriteString(")")
	} else {
		sb.WriteString(" AND [Source].[System.IterationPath] <> ''")
	}

	sb.WriteString(") AND ([System.Links.LinkType] = 'System.LinkTypes.Hierarchy-Forward')")
	sb.WriteString(fmt.Sprintf(" AND ([Target].[System.TeamProject] = '%s')", escapeWiql(project)))
	sb.WriteString(" MODE (Recursive)")

	return sb.String()
}

// escapeWiql doubles single quotes inside string literals.
func escapeWiql(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
