// Package export writes assessment results to an Excel workbook.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

// Sheet names, in workbook order.
const (
	SheetSummary       = "Summary"
	SheetObjects       = "Objects"
	SheetRelationships = "Relationships"
	SheetParseErrors   = "Parse Errors"
)

// Workbook is everything one export contains. ParseErrors may be empty.
type Workbook struct {
	Assessment  *models.Assessment
	Graph       *services.ObjectGraph
	ParseErrors []models.ParseError
}

// WriteXLSX renders wb to path, replacing any existing file.
func WriteXLSX(path string, wb Workbook) error {
	if wb.Assessment == nil {
		return errors.New("export requires an assessment")
	}
	graph := wb.Graph
	if graph == nil {
		graph = &services.ObjectGraph{}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for _, sheet := range []string{SheetObjects, SheetRelationships, SheetParseErrors} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	index := services.NewObjectIndex(graph.Objects)
	steps := []struct {
		sheet  string
		header []string
		rows   [][]any
	}{
		{SheetSummary, []string{"Field", "Value"}, summaryRows(wb.Assessment, services.Summarize(graph))},
		{SheetObjects, []string{"ID", "Type", "Name", "Path", "Complexity", "Score"}, objectRows(graph.Objects)},
		{SheetRelationships, []string{"ID", "Source ID", "Source", "Type", "Target ID", "Target"}, relationshipRows(index.ResolveEdges(graph.Relationships))},
		{SheetParseErrors, []string{"ID", "File ID", "Type", "Message", "Location"}, parseErrorRows(wb.ParseErrors)},
	}
	for _, s := range steps {
		if err := writeTable(f, s.sheet, s.header, s.rows); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sheet, r+1, err)
			}
		}
	}
	return nil
}

func summaryRows(a *models.Assessment, s services.InventorySummary) [][]any {
	rows := [][]any{
		{"Assessment ID", a.ID.String()},
		{"Name", a.Name},
		{"BI tool", a.BITool},
		{"Status", string(a.Status)},
		{"Objects", s.TotalObjects},
		{"Relationships", s.TotalRelationships},
		{"Complexity: low", s.Complexity.Low},
		{"Complexity: medium", s.Complexity.Medium},
		{"Complexity: high", s.Complexity.High},
		{"Complexity: critical", s.Complexity.Critical},
		{"Unrated", s.Unrated},
	}
	if s.Scores.Scored > 0 {
		rows = append(rows,
			[]any{"Score: mean", s.Scores.Mean},
			[]any{"Score: median", s.Scores.Median},
			[]any{"Score: p90", s.Scores.P90},
			[]any{"Score: max", s.Scores.Max},
		)
	}
	for _, tc := range s.ByType {
		rows = append(rows, []any{"Type: " + tc.Label, tc.Count})
	}
	return rows
}

func objectRows(objects []models.ExtractedObject) [][]any {
	rows := make([][]any, 0, len(objects))
	for _, o := range objects {
		rows = append(rows, []any{
			o.ID.String(),
			o.ObjectType,
			o.Name,
			deref(o.Path),
			deref(o.ComplexityLevel),
			scoreCell(o.ComplexityScore),
		})
	}
	return rows
}

func relationshipRows(edges []services.ResolvedEdge) [][]any {
	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{
			e.ID.String(),
			e.SourceObjectID.String(),
			e.SourceName,
			e.RelationshipType,
			e.TargetObjectID.String(),
			e.TargetName,
		})
	}
	return rows
}

func parseErrorRows(parseErrors []models.ParseError) [][]any {
	rows := make([][]any, 0, len(parseErrors))
	for _, pe := range parseErrors {
		fileID := ""
		if pe.FileID != nil {
			fileID = pe.FileID.String()
		}
		rows = append(rows, []any{pe.ID.String(), fileID, pe.ErrorType, pe.Message, deref(pe.Location)})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// scoreCell leaves unscored objects blank rather than 0.
func scoreCell(score *float64) any {
	if score == nil {
		return ""
	}
	return *score
}
