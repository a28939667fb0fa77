package timeline

import (
	"strings"

	"roadmap-mcp/internal/azdo"

	"github.com/rs/zerolog/log"
)

// BuildIterationIndex walks the classification-node tree depth-first and
// registers every dated node under three spellings: its full path, the
// path with the org-scope prefix stripped, and the bare node name. Later
// lookups then tolerate all conventions client data uses. Malformed input
// yields an empty index; "no match" is the normal failure path, never an
// error.
func BuildIterationIndex(root *azdo.IterationNode, orgScopeName string) IterationIndex {
	index := make(IterationIndex)
	if root == nil {
		return index
	}
	indexNode(index, *root, "", orgScopeName)
	log.Debug().Int("spellings", len(index)).Str("scope", orgScopeName).Msg("Iteration index built")
	return index
}

func indexNode(index IterationIndex, node azdo.IterationNode, parentPath, orgScopeName string) {
	fullPath := node.Name
	if parentPath != "" {
		fullPath = parentPath + "\\" + node.Name
	}

	if node.StartDate != nil && node.FinishDate != nil {
		record := IterationRecord{
			Path:  fullPath,
			Start: *node.StartDate,
			End:   *node.FinishDate,
		}
		index[fullPath] = record
		if stripped, ok := stripScopePrefix(fullPath, orgScopeName); ok {
			index[stripped] = record
		}
		index[node.Name] = record
	}

	for _, child := range node.Children {
		indexNode(index, child, fullPath, orgScopeName)
	}
}

// NormalizeIterationPath produces the candidate spellings for a raw
// iteration path, in probe order: the raw path itself, then the
// scope-prefixed form when the prefix is missing, or the stripped form
// when it is present.
func NormalizeIterationPath(rawPath, orgScopeName string) []string {
	candidates := []string{rawPath}

	if stripped, ok := stripScopePrefix(rawPath, orgScopeName); ok {
		candidates = append(candidates, stripped)
	} else if orgScopeName != "" && rawPath != "" {
		candidates = append(candidates, orgScopeName+"\\"+rawPath)
	}

	return candidates
}

// ResolveIterationDates probes the index with each candidate spelling and
// returns the first hit. The second return is false when no spelling
// matches; callers drop the affected node silently.
func ResolveIterationDates(rawPath, orgScopeName string, index IterationIndex) (IterationRecord, bool) {
	if rawPath == "" {
		return IterationRecord{}, false
	}
	for _, candidate := range NormalizeIterationPath(rawPath, orgScopeName) {
		if record, ok := index[candidate]; ok {
			return record, true
		}
	}
	return IterationRecord{}, false
}

func stripScopePrefix(path, orgScopeName string) (string, bool) {
	if orgScopeName == "" {
		return "", false
	}
	if path == orgScopeName {
		return "", false
	}
	prefix := orgScopeName + "\\"
	if strings.HasPrefix(path, prefix) {
		return strings.TrimPrefix(path, prefix), true
	}
	return "", false
}
