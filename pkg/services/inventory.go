package services

import (
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/montanaflynn/stats"

	"github.com/ekaya-inc/assessment-console/pkg/models"
)

// UnknownObjectName labels edge endpoints missing from the loaded object set.
const UnknownObjectName = "Unknown"

// ObjectIndex looks objects up by id.
type ObjectIndex struct {
	byID map[models.ID]*models.ExtractedObject
}

// NewObjectIndex indexes objects. Later duplicates of an id win.
func NewObjectIndex(objects []models.ExtractedObject) *ObjectIndex {
	byID := make(map[models.ID]*models.ExtractedObject, len(objects))
	for i := range objects {
		byID[objects[i].ID] = &objects[i]
	}
	return &ObjectIndex{byID: byID}
}

// Get returns the object with id, if loaded.
func (ix *ObjectIndex) Get(id models.ID) (*models.ExtractedObject, bool) {
	obj, ok := ix.byID[id]
	return obj, ok
}

// NameOf returns the object's name, or UnknownObjectName.
func (ix *ObjectIndex) NameOf(id models.ID) string {
	if obj, ok := ix.byID[id]; ok && obj.Name != "" {
		return obj.Name
	}
	return UnknownObjectName
}

// ResolvedEdge is a relationship with both endpoint names filled in.
type ResolvedEdge struct {
	models.ObjectRelationship
	SourceName string
	TargetName string
}

// ResolveEdges names the endpoints of every relationship.
func (ix *ObjectIndex) ResolveEdges(relationships []models.ObjectRelationship) []ResolvedEdge {
	edges := make([]ResolvedEdge, 0, len(relationships))
	for _, rel := range relationships {
		edges = append(edges, ResolvedEdge{
			ObjectRelationship: rel,
			SourceName:         ix.NameOf(rel.SourceObjectID),
			TargetName:         ix.NameOf(rel.TargetObjectID),
		})
	}
	return edges
}

// TypeCount is the number of objects of one object_type.
type TypeCount struct {
	Type  string
	Label string
	Count int
}

// ScoreStats describes the distribution of complexity scores.
type ScoreStats struct {
	Scored int
	Mean   float64
	Median float64
	P90    float64
	Max    float64
}

// InventorySummary condenses an object graph for display.
type InventorySummary struct {
	TotalObjects       int
	TotalRelationships int
	ByType             []TypeCount
	Complexity         models.ComplexityBuckets
	Unrated            int
	Scores             ScoreStats
}

// TypeLabel turns an object_type tag into a display noun, pluralized for
// counts other than one: "calculated_field", 3 -> "calculated fields".
func TypeLabel(objectType string, count int) string {
	label := strings.TrimSpace(strings.ReplaceAll(objectType, "_", " "))
	if label == "" {
		label = "object"
	}
	if count == 1 {
		return inflection.Singular(label)
	}
	return inflection.Plural(label)
}

// Summarize counts objects per type and complexity bucket and computes score
// statistics. ByType is ordered by descending count, then type.
func Summarize(graph *ObjectGraph) InventorySummary {
	var summary InventorySummary
	if graph == nil {
		return summary
	}

	summary.TotalObjects = len(graph.Objects)
	summary.TotalRelationships = len(graph.Relationships)

	counts := make(map[string]int)
	var scores stats.Float64Data
	for i := range graph.Objects {
		obj := &graph.Objects[i]
		counts[obj.ObjectType]++

		level := ""
		if obj.ComplexityLevel != nil {
			level = strings.ToLower(*obj.ComplexityLevel)
		}
		switch level {
		case models.ComplexityLow:
			summary.Complexity.Low++
		case models.ComplexityMedium:
			summary.Complexity.Medium++
		case models.ComplexityHigh:
			summary.Complexity.High++
		case models.ComplexityCritical:
			summary.Complexity.Critical++
		default:
			summary.Unrated++
		}

		if obj.ComplexityScore != nil {
			scores = append(scores, *obj.ComplexityScore)
		}
	}

	for objectType, n := range counts {
		summary.ByType = append(summary.ByType, TypeCount{
			Type:  objectType,
			Label: TypeLabel(objectType, n),
			Count: n,
		})
	}
	sort.Slice(summary.ByType, func(i, j int) bool {
		if summary.ByType[i].Count != summary.ByType[j].Count {
			return summary.ByType[i].Count > summary.ByType[j].Count
		}
		return summary.ByType[i].Type < summary.ByType[j].Type
	})

	summary.Scores = scoreStats(scores)
	return summary
}

func scoreStats(scores stats.Float64Data) ScoreStats {
	out := ScoreStats{Scored: len(scores)}
	if len(scores) == 0 {
		return out
	}
	// Errors only occur on empty input, excluded above.
	out.Mean, _ = stats.Mean(scores)
	out.Median, _ = stats.Median(scores)
	out.P90, _ = stats.Percentile(scores, 90)
	out.Max, _ = stats.Max(scores)
	return out
}
