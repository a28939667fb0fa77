package azdo

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// MapIterationNode transforms a classification-node DTO into the domain tree.
// Nodes with malformed or one-sided date attributes are kept as undated
// container nodes so their children still contribute iterations.
func MapIterationNode(dto ClassificationNodeDTO) IterationNode {
	node := IterationNode{Name: dto.Name}

	if dto.Attributes != nil && dto.Attributes.StartDate != "" && dto.Attributes.FinishDate != "" {
		start, errStart := ParseDate(dto.Attributes.StartDate)
		finish, errFinish := ParseDate(dto.Attributes.FinishDate)
		if errStart == nil && errFinish == nil {
			node.StartDate = &start
			node.FinishDate = &finish
		} else {
			log.Debug().Str("node", dto.Name).Msg("Ignoring unparseable iteration dates")
		}
	}

	for _, child := range dto.Children {
		node.Children = append(node.Children, MapIterationNode(child))
	}

	return node
}

// MapWorkItem extracts the known roadmap fields from a work-item field bag.
// Every other field survives in Extra for callers that need raw access.
func MapWorkItem(dto WorkItemDTO) WorkItem {
	item := WorkItem{
		ID:            dto.ID,
		Title:         fieldString(dto.Fields, "System.Title"),
		State:         fieldString(dto.Fields, "System.State"),
		WorkItemType:  fieldString(dto.Fields, "System.WorkItemType"),
		IterationPath: fieldString(dto.Fields, "System.IterationPath"),
		AreaPath:      fieldString(dto.Fields, "System.AreaPath"),
		Project:       fieldString(dto.Fields, "System.TeamProject"),
	}

	known := map[string]bool{
		"System.Title": true, "System.State": true, "System.WorkItemType": true,
		"System.IterationPath": true, "System.AreaPath": true,
		"System.TeamProject": true, "System.Id": true,
	}
	for k, v := range dto.Fields {
		if known[k] {
			continue
		}
		if item.Extra == nil {
			item.Extra = make(map[string]any)
		}
		item.Extra[k] = v
	}

	return item
}

// MapRelations flattens the query result into edges, dropping entries where
// neither side carries an id.
func MapRelations(dtos []WorkItemRelationDTO) []WorkItemLink {
	var links []WorkItemLink
	for _, rel := range dtos {
		link := WorkItemLink{}
		if rel.Source != nil {
			link.SourceID = rel.Source.ID
		}
		if rel.Target != nil {
			link.TargetID = rel.Target.ID
		}
		if link.SourceID == 0 && link.TargetID == 0 {
			continue
		}
		links = append(links, link)
	}
	return links
}

func fieldString(fields map[string]any, key string) string {
	val, ok := fields[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", val)
}
