package models

import "encoding/json"

// ComplexityBuckets counts items per complexity bucket.
type ComplexityBuckets struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Total returns the sum over all buckets.
func (b ComplexityBuckets) Total() int {
	return b.Low + b.Medium + b.High + b.Critical
}

// BreakdownSection aggregates one object category of the report.
type BreakdownSection struct {
	TotalCount int                `json:"total_count"`
	Complexity *ComplexityBuckets `json:"complexity,omitempty"`
	Items      []map[string]any   `json:"items"`
}

// AssessmentReport is the composite results snapshot for one assessment.
// It is always fetched whole. Cross-cutting analyses whose shape the console
// does not interpret are kept as raw JSON.
type AssessmentReport struct {
	AssessmentID ID         `json:"assessment_id"`
	Version      string     `json:"version"`
	GeneratedAt  *Timestamp `json:"generated_at,omitempty"`

	Visualizations        *BreakdownSection `json:"visualizations,omitempty"`
	Dashboards            *BreakdownSection `json:"dashboards,omitempty"`
	Reports               *BreakdownSection `json:"reports,omitempty"`
	Packages              *BreakdownSection `json:"packages,omitempty"`
	DataSourceConnections *BreakdownSection `json:"data_source_connections,omitempty"`
	CalculatedFields      *BreakdownSection `json:"calculated_fields,omitempty"`
	Filters               *BreakdownSection `json:"filters,omitempty"`
	Parameters            *BreakdownSection `json:"parameters,omitempty"`
	Sorts                 *BreakdownSection `json:"sorts,omitempty"`
	Prompts               *BreakdownSection `json:"prompts,omitempty"`
	DataModules           *BreakdownSection `json:"data_modules,omitempty"`
	Queries               *BreakdownSection `json:"queries,omitempty"`
	Measures              *BreakdownSection `json:"measures,omitempty"`
	Dimensions            *BreakdownSection `json:"dimensions,omitempty"`

	ComplexityAnalysis *ComplexityBuckets `json:"complexity_analysis,omitempty"`
	KeyFindings        json.RawMessage    `json:"key_findings,omitempty"`
	Inventory          json.RawMessage    `json:"inventory,omitempty"`
	Challenges         json.RawMessage    `json:"challenges,omitempty"`
	Appendix           json.RawMessage    `json:"appendix,omitempty"`
}

// NamedSection pairs a breakdown section with its report key.
type NamedSection struct {
	Key     string
	Section *BreakdownSection
}

// Sections returns the present breakdown sections in display order.
func (r *AssessmentReport) Sections() []NamedSection {
	all := []NamedSection{
		{"visualizations", r.Visualizations},
		{"dashboards", r.Dashboards},
		{"reports", r.Reports},
		{"packages", r.Packages},
		{"data_source_connections", r.DataSourceConnections},
		{"calculated_fields", r.CalculatedFields},
		{"filters", r.Filters},
		{"parameters", r.Parameters},
		{"sorts", r.Sorts},
		{"prompts", r.Prompts},
		{"data_modules", r.DataModules},
		{"queries", r.Queries},
		{"measures", r.Measures},
		{"dimensions", r.Dimensions},
	}
	present := make([]NamedSection, 0, len(all))
	for _, s := range all {
		if s.Section != nil {
			present = append(present, s)
		}
	}
	return present
}
