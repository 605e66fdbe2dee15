package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/assessment-console/pkg/export"
	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

// maxPrintedRows bounds table output; the full set is available via export.
const maxPrintedRows = 200

func newObjectsCmd(a *app) *cobra.Command {
	var filter services.ObjectFilter
	var all bool

	cmd := &cobra.Command{
		Use:   "objects <assessment-id>",
		Short: "Summarize and list the extracted objects of an assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.graphLoader().Load(cmd.Context(), args[0], filter)
			if err != nil {
				return a.apiError(err)
			}

			printSummary(a.out, services.Summarize(graph))

			limit := maxPrintedRows
			if all {
				limit = len(graph.Objects)
			}
			fmt.Fprintln(a.out)
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tNAME\tCOMPLEXITY")
			for i, obj := range graph.Objects {
				if i >= limit {
					break
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", obj.ID, obj.ObjectType, obj.Name, complexityOf(&obj))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(graph.Objects) > limit {
				fmt.Fprintf(a.out, "... %d more (use --all or export)\n", len(graph.Objects)-limit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Type, "type", "", "Only objects of this object_type")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Only objects whose name matches")
	cmd.Flags().StringVar(&filter.RelationshipType, "relationship-type", "", "Only relationships of this type")
	cmd.Flags().BoolVar(&all, "all", false, "Print every object instead of the first rows")
	return cmd
}

func newObjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "object <assessment-id> <object-id>",
		Short: "Show one extracted object with its relationships",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.api.GetObject(cmd.Context(), args[0], args[1])
			if err != nil {
				return a.apiError(err)
			}

			obj := &detail.ExtractedObject
			fmt.Fprintf(a.out, "Object:     %s\n", obj.ID)
			fmt.Fprintf(a.out, "Name:       %s\n", obj.Name)
			fmt.Fprintf(a.out, "Type:       %s\n", obj.ObjectType)
			if obj.Path != nil {
				fmt.Fprintf(a.out, "Path:       %s\n", *obj.Path)
			}
			fmt.Fprintf(a.out, "Complexity: %s\n", complexityOf(obj))
			if expr := obj.Property("expression"); expr != "" {
				fmt.Fprintf(a.out, "Expression: %s\n", expr)
			}

			fmt.Fprintf(a.out, "Outgoing:   %d\n", len(detail.OutgoingRelationships))
			for _, r := range detail.OutgoingRelationships {
				fmt.Fprintf(a.out, "  -[%s]-> %s\n", r.RelationshipType, r.TargetObjectID)
			}
			fmt.Fprintf(a.out, "Incoming:   %d\n", len(detail.IncomingRelationships))
			for _, r := range detail.IncomingRelationships {
				fmt.Fprintf(a.out, "  <-[%s]- %s\n", r.RelationshipType, r.SourceObjectID)
			}
			return nil
		},
	}
}

func newGraphCmd(a *app) *cobra.Command {
	var filter services.ObjectFilter

	cmd := &cobra.Command{
		Use:   "graph <assessment-id>",
		Short: "Print the relationship graph with resolved object names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.graphLoader().Load(cmd.Context(), args[0], filter)
			if err != nil {
				return a.apiError(err)
			}

			edges := services.NewObjectIndex(graph.Objects).ResolveEdges(graph.Relationships)
			fmt.Fprintf(a.out, "%d objects, %d relationships\n", len(graph.Objects), len(edges))
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tTYPE\tTARGET")
			for i, e := range edges {
				if i >= maxPrintedRows {
					break
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.SourceName, e.RelationshipType, e.TargetName)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(edges) > maxPrintedRows {
				fmt.Fprintf(a.out, "... %d more (use export)\n", len(edges)-maxPrintedRows)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Type, "type", "", "Only objects of this object_type")
	cmd.Flags().StringVar(&filter.RelationshipType, "relationship-type", "", "Only relationships of this type")
	return cmd
}

func newErrorsCmd(a *app) *cobra.Command {
	var errorType string

	cmd := &cobra.Command{
		Use:   "errors <assessment-id>",
		Short: "List parse errors recorded for an assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parseErrors, err := a.parseErrorLoader().Load(cmd.Context(), args[0], errorType)
			if err != nil {
				return a.apiError(err)
			}
			if len(parseErrors) == 0 {
				fmt.Fprintln(a.out, "No parse errors.")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tLOCATION\tMESSAGE")
			for _, pe := range parseErrors {
				location := ""
				if pe.Location != nil {
					location = *pe.Location
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", pe.ErrorType, location, pe.Message)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&errorType, "type", "", "Only errors of this error_type")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report <assessment-id>",
		Short: "Print the assessment report summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := services.NewReportLoader(a.api, args[0], a.logger)
			defer loader.Close()

			if err := loader.Load(cmd.Context()); err != nil {
				return err
			}

			report := loader.Report()
			fmt.Fprintf(a.out, "Report for %s (version %s)\n", report.AssessmentID, report.Version)
			if c := report.ComplexityAnalysis; c != nil {
				fmt.Fprintf(a.out, "Complexity: %d low, %d medium, %d high, %d critical\n", c.Low, c.Medium, c.High, c.Critical)
			}

			fmt.Fprintln(a.out)
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tTOTAL\tLOW\tMEDIUM\tHIGH\tCRITICAL")
			for _, s := range report.Sections() {
				c := models.ComplexityBuckets{}
				if s.Section.Complexity != nil {
					c = *s.Section.Complexity
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Key, s.Section.TotalCount, c.Low, c.Medium, c.High, c.Critical)
			}
			return tw.Flush()
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <assessment-id>",
		Short: "Write objects, relationships and parse errors to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if output == "" {
				output = fmt.Sprintf("assessment-%s.xlsx", id)
			}
			if !strings.EqualFold(filepath.Ext(output), ".xlsx") {
				return errors.New("--output must end in .xlsx")
			}

			var wb export.Workbook
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				as, err := a.api.GetAssessment(ctx, id)
				wb.Assessment = as
				return err
			})
			g.Go(func() error {
				graph, err := a.graphLoader().Load(ctx, id, services.ObjectFilter{})
				wb.Graph = graph
				return err
			})
			g.Go(func() error {
				parseErrors, err := a.parseErrorLoader().Load(ctx, id, "")
				wb.ParseErrors = parseErrors
				return err
			})
			if err := g.Wait(); err != nil {
				return a.apiError(err)
			}

			if err := export.WriteXLSX(output, wb); err != nil {
				return err
			}
			a.logger.Info("Exported assessment",
				zap.String("assessment_id", id),
				zap.String("path", output),
				zap.Int("objects", len(wb.Graph.Objects)))
			fmt.Fprintf(a.out, "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Workbook path (default assessment-<id>.xlsx)")
	return cmd
}

func (a *app) graphLoader() *services.ObjectGraphLoader {
	return services.NewObjectGraphLoader(a.api, a.cfg.Loader.ObjectPageSize, a.cfg.Loader.RelationshipLimit, a.logger)
}

func (a *app) parseErrorLoader() *services.ParseErrorLoader {
	return services.NewParseErrorLoader(a.api, a.cfg.Loader.ErrorPageSize, a.logger)
}

// apiError swaps transport errors the user can act on for their display message.
func (a *app) apiError(err error) error {
	re := services.ClassifyReportError(err, a.api.BaseURL())
	switch re.Category {
	case services.CategoryUnreachable, services.CategoryUnauthorized:
		return re
	}
	return err
}

func printSummary(w io.Writer, s services.InventorySummary) {
	fmt.Fprintf(w, "Objects:       %d\n", s.TotalObjects)
	fmt.Fprintf(w, "Relationships: %d\n", s.TotalRelationships)
	for _, tc := range s.ByType {
		fmt.Fprintf(w, "  %6d %s\n", tc.Count, tc.Label)
	}
	c := s.Complexity
	fmt.Fprintf(w, "Complexity:    %d low, %d medium, %d high, %d critical, %d unrated\n",
		c.Low, c.Medium, c.High, c.Critical, s.Unrated)
	if s.Scores.Scored > 0 {
		fmt.Fprintf(w, "Scores:        mean %.1f, median %.1f, p90 %.1f, max %.1f\n",
			s.Scores.Mean, s.Scores.Median, s.Scores.P90, s.Scores.Max)
	}
}

func complexityOf(obj *models.ExtractedObject) string {
	switch {
	case obj.ComplexityLevel != nil && obj.ComplexityScore != nil:
		return fmt.Sprintf("%s (%.1f)", *obj.ComplexityLevel, *obj.ComplexityScore)
	case obj.ComplexityLevel != nil:
		return *obj.ComplexityLevel
	default:
		return "-"
	}
}
