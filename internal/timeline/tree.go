package timeline

import (
	"sort"

	"roadmap-mcp/internal/azdo"

	"github.com/rs/zerolog/log"
)

// AssembleTree converts the flat relation list plus work-item details into
// an arena of items keyed by id. Relations whose source or target is not a
// known item are skipped, as are self-referential relations (a backend
// quirk where a root appears as its own query match).
func AssembleTree(relations []azdo.WorkItemLink, details []azdo.WorkItem) map[int]*Item {
	tree := make(map[int]*Item, len(details))
	for _, d := range details {
		tree[d.ID] = &Item{
			ID:            d.ID,
			Title:         d.Title,
			State:         d.State,
			WorkItemType:  d.WorkItemType,
			IterationPath: d.IterationPath,
			AreaPath:      d.AreaPath,
		}
	}

	for _, rel := range relations {
		if rel.SourceID == rel.TargetID {
			continue
		}
		parent, ok := tree[rel.SourceID]
		if !ok {
			continue
		}
		if _, ok := tree[rel.TargetID]; !ok {
			continue
		}
		parent.ChildIDs = append(parent.ChildIDs, rel.TargetID)
	}

	return tree
}

// FindRoots returns the items that anchor the output tree: items whose id
// never appears as a retained relation target and whose type matches the
// requested root type. A root-typed item that is some other item's child
// is excluded, so no item can be counted twice.
//
// When an explicit calendar range is supplied, a root is kept only if its
// resolved iteration overlaps the range (inclusive on both ends). Roots
// whose iteration cannot be resolved are dropped here only for range
// filtering; otherwise resolution is deferred to conversion.
func FindRoots(tree map[int]*Item, rootType RootType, index IterationIndex, orgScope string, dateRange *DateRange) []*Item {
	isTarget := make(map[int]bool)
	for _, item := range tree {
		for _, childID := range item.ChildIDs {
			isTarget[childID] = true
		}
	}

	var roots []*Item
	for _, item := range tree {
		if isTarget[item.ID] {
			continue
		}
		if item.WorkItemType != string(rootType) {
			continue
		}
		if dateRange != nil {
			record, ok := ResolveIterationDates(item.IterationPath, orgScope, index)
			if !ok {
				log.Debug().Int("id", item.ID).Str("path", item.IterationPath).Msg("Dropping root with unresolvable iteration")
				continue
			}
			if record.End.Before(dateRange.Start) || record.Start.After(dateRange.End) {
				continue
			}
		}
		roots = append(roots, item)
	}

	// Map iteration order is random; keep cycles structurally identical.
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots
}

// Progress is the one-level completion count for an item. Total always
// equals the direct child count, never a recursive count.
type Progress struct {
	ChildType string
	Total     int
	Completed int
}

// CalculateNodeProgress counts direct children, marking each completed by
// its own type's completed-state set. A leaf counts itself.
func CalculateNodeProgress(item *Item, tree map[int]*Item) Progress {
	if len(item.ChildIDs) == 0 {
		p := Progress{ChildType: item.WorkItemType, Total: 1}
		if IsCompleted(item.WorkItemType, item.State) {
			p.Completed = 1
		}
		return p
	}

	p := Progress{ChildType: ChildTypeName(item.WorkItemType)}
	for _, childID := range item.ChildIDs {
		child, ok := tree[childID]
		if !ok {
			continue
		}
		p.Total++
		if IsCompleted(child.WorkItemType, child.State) {
			p.Completed++
		}
	}
	return p
}

// ConvertNode resolves an item's iteration dates and recursively converts
// its children. Returns nil when the item's iteration is empty or
// unresolvable: such nodes are dropped entirely rather than rendered
// dateless. Children that fail conversion are dropped from the child list
// but still count toward progress.
func ConvertNode(item *Item, tree map[int]*Item, index IterationIndex, orgScope string) *WorkItemNode {
	record, ok := ResolveIterationDates(item.IterationPath, orgScope, index)
	if !ok {
		log.Debug().Int("id", item.ID).Str("path", item.IterationPath).Msg("Excluding work item with unresolvable iteration")
		return nil
	}

	progress := CalculateNodeProgress(item, tree)
	node := &WorkItemNode{
		ID:                  item.ID,
		Title:               item.Title,
		State:               item.State,
		WorkItemType:        item.WorkItemType,
		IterationStart:      record.Start,
		IterationEnd:        record.End,
		ChildType:           progress.ChildType,
		ChildCount:          progress.Total,
		CompletedChildCount: progress.Completed,
	}

	for _, childID := range item.ChildIDs {
		child, ok := tree[childID]
		if !ok {
			continue
		}
		if converted := ConvertNode(child, tree, index, orgScope); converted != nil {
			node.Children = append(node.Children, converted)
		}
	}

	return node
}
