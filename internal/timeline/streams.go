package timeline

import (
	"strings"
	"unicode"
)

// GroupByValueStream converts each root and buckets the survivors by area
// path. Roots whose iteration dates fail to resolve are silently dropped;
// a bucket that ends up empty is never emitted.
func GroupByValueStream(roots []*Item, tree map[int]*Item, index IterationIndex, orgScope string) []ValueStream {
	var order []string
	buckets := make(map[string][]*WorkItemNode)

	for _, root := range roots {
		node := ConvertNode(root, tree, index, orgScope)
		if node == nil {
			continue
		}
		if _, seen := buckets[root.AreaPath]; !seen {
			order = append(order, root.AreaPath)
		}
		buckets[root.AreaPath] = append(buckets[root.AreaPath], node)
	}

	streams := make([]ValueStream, 0, len(order))
	for _, areaPath := range order {
		streams = append(streams, ValueStream{
			ID:        streamID(areaPath),
			Name:      streamName(areaPath),
			WorkItems: buckets[areaPath],
		})
	}
	return streams
}

// streamID derives a stable identifier from an area path by replacing
// every non-alphanumeric character with a hyphen.
func streamID(areaPath string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, areaPath)
}

// streamName is the last backslash-delimited segment of the area path, or
// the full path when no separator is present.
func streamName(areaPath string) string {
	if idx := strings.LastIndex(areaPath, "\\"); idx != -1 {
		return areaPath[idx+1:]
	}
	return areaPath
}
