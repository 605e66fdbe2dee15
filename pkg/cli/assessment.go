package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apiclient"
	"github.com/ekaya-inc/assessment-console/pkg/models"
	"github.com/ekaya-inc/assessment-console/pkg/retry"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

func newCreateCmd(a *app) *cobra.Command {
	var name, biTool string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an assessment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return errors.New("--name is required")
			}

			created, err := a.api.CreateAssessment(cmd.Context(), models.CreateAssessmentRequest{
				Name:   name,
				BITool: biTool,
			})
			if err != nil {
				return a.apiError(err)
			}
			fmt.Fprintf(a.out, "Created assessment %s (%s)\n", created.ID, created.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Assessment name")
	cmd.Flags().StringVar(&biTool, "bi-tool", "tableau", "BI tool the exports come from")
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <assessment-id> <file>...",
		Short: "Upload BI export files (.zip, .xml, .json) to an assessment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, paths := args[0], args[1:]

			var progress apiclient.ProgressFunc
			if !quiet {
				last := -10
				progress = func(sent, total int64) {
					if total <= 0 {
						return
					}
					pct := int(sent * 100 / total)
					if pct/10 != last/10 {
						last = pct
						fmt.Fprintf(cmd.ErrOrStderr(), "\rUploading... %3d%%", pct)
					}
				}
			}

			files, err := a.api.UploadFiles(cmd.Context(), id, paths, progress)
			if !quiet {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return a.apiError(err)
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tSIZE\tPARSE STATUS")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.ID, f.Filename, f.FileSize, f.ParseStatus)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print upload progress")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <assessment-id>",
		Short: "Show an assessment with its files and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := a.assessmentLoader(args[0])
			defer loader.Close()

			if err := loader.Load(cmd.Context()); err != nil {
				return a.apiError(err)
			}
			a.printSnapshot(loader.Snapshot())
			return nil
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <assessment-id>",
		Short: "Start the analysis run of an assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			loader := a.assessmentLoader(id)
			defer loader.Close()

			if err := loader.Load(ctx); err != nil {
				return a.apiError(err)
			}
			if !loader.CanRunAnalysis() {
				snap := loader.Snapshot()
				return fmt.Errorf("analysis cannot start (status %s, %d files)", snap.Assessment.Status, len(snap.Files))
			}
			before := loader.Snapshot().Assessment
			if !loader.RunAnalysis(ctx) {
				return errors.New("the backend rejected the run request")
			}
			fmt.Fprintf(a.out, "Analysis started for %s\n", id)

			if !wait {
				return nil
			}

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			poller := services.NewPoller(a.api, a.pollConfig(), a.logger)
			final, err := poller.WaitForTerminal(ctx, id, func(as *models.Assessment) {
				fmt.Fprintf(a.out, "Status: %s\n", as.Status)
			}, services.SinceRun(before))
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("analysis of %s did not finish within %s; it keeps running on the backend", id, timeout)
			}
			if err != nil {
				return a.apiError(err)
			}
			if final.Status == models.AssessmentStatusFailed {
				return fmt.Errorf("analysis of %s failed", id)
			}
			a.logger.Info("Analysis run finished",
				zap.String("assessment_id", id),
				zap.String("status", string(final.Status)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the run completes or fails")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Give up waiting after this long (0 waits forever)")
	return cmd
}

func (a *app) assessmentLoader(id string) *services.AssessmentLoader {
	return services.NewAssessmentLoader(a.api, id, a.cfg.Loader.RunRefetchDelay, a.logger)
}

func (a *app) pollConfig() *retry.Config {
	return &retry.Config{
		InitialDelay: a.cfg.Loader.PollInterval,
		MaxDelay:     a.cfg.Loader.PollMaxInterval,
		Multiplier:   1.5,
		JitterFactor: 0.1,
	}
}

func (a *app) printSnapshot(snap services.AssessmentSnapshot) {
	as := snap.Assessment
	fmt.Fprintf(a.out, "Assessment:  %s\n", as.ID)
	fmt.Fprintf(a.out, "Name:        %s\n", as.Name)
	fmt.Fprintf(a.out, "BI tool:     %s\n", as.BITool)
	fmt.Fprintf(a.out, "Status:      %s\n", as.Status)
	if !as.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Created:     %s\n", as.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "Can run:     %t\n", services.CanRunAnalysis(as, len(snap.Files)))

	if len(snap.Files) > 0 {
		fmt.Fprintln(a.out)
		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tTYPE\tSIZE\tPARSE STATUS")
		for _, f := range snap.Files {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.Filename, f.FileType, f.FileSize, f.ParseStatus)
		}
		_ = tw.Flush()
	}

	if st := snap.Stats; st != nil {
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Objects:       %d\n", st.TotalObjects)
		fmt.Fprintf(a.out, "Relationships: %d\n", st.TotalRelationships)
		fmt.Fprintf(a.out, "Parse errors:  %d\n", st.TotalErrors)
		fmt.Fprintf(a.out, "Parse success: %.1f%%\n", st.ParseSuccessRate)
	}
}
