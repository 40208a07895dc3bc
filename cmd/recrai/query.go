package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	service "github.com/okian/recrai/internal/app"
	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/pkg/logger"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// withService runs fn against a started service and stops it afterwards.
func withService(ctx context.Context, o *rootOptions, fn func(*service.Service) error) error {
	svc, err := newService(o.cfg, o.log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := svc.Stop(context.WithoutCancel(ctx)); err != nil {
			o.log.Warn(ctx, "service stop failed", logger.Error(err))
		}
	}()
	return fn(svc)
}

func addOutputFlag(cmd *cobra.Command, out *string) {
	cmd.Flags().StringVarP(out, "output", "o", outputTable, "output format: table or json")
}

func checkOutput(out string) error {
	if out != outputTable && out != outputJSON {
		return fmt.Errorf("unknown output %q, want table or json", out)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRankCmd(o *rootOptions) *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "rank <job-id>",
		Short: "Rank candidates for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return withService(cmd.Context(), o, func(svc *service.Service) error {
				job, ranks, err := svc.RankForJob(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if output == outputJSON {
					return printJSON(w, map[string]any{"job": job, "ranking": ranks})
				}
				fmt.Fprintf(w, "%s (%s): %s\n", job.Title, job.ID, strings.Join(job.Requirements, ", "))
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tCANDIDATE\tNAME\tFIT\tSCORE\tRANK")
				for i, r := range ranks {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n",
						i+1, r.Candidate.ID, r.Candidate.Name, r.Fit, r.NormalizedScore, r.Combined)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "how many candidates to show (default from config)")
	addOutputFlag(cmd, &output)
	return cmd
}

func newSuggestCmd(o *rootOptions) *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "suggest <candidate-id>",
		Short: "Suggest jobs for a candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return withService(cmd.Context(), o, func(svc *service.Service) error {
				cand, sugg, err := svc.SuggestForCandidate(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if output == outputJSON {
					return printJSON(w, map[string]any{"candidate": cand, "suggestions": sugg})
				}
				fmt.Fprintf(w, "%s (%s): %s\n", cand.Name, cand.ID, strings.Join(cand.Skills, ", "))
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tJOB\tTITLE\tFIT\tSCORE\tRANK")
				for i, s := range sugg {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n",
						i+1, s.Job.ID, s.Job.Title, s.Fit, s.NormalizedScore, s.Combined)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "how many jobs to show (default from config)")
	addOutputFlag(cmd, &output)
	return cmd
}

func newFitCmd(o *rootOptions) *cobra.Command {
	var (
		requirements []string
		jobID        string
		candidateID  string
		skills       []string
		summary      string
		area         string
		score        string
		output       string
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Explain how a candidate covers a list of requirements",
		Example: `  recrai fit --requirements React,Node.js,SQL --skills react,nodejs,postgresql --score 8
  recrai fit --job fullstack --candidate cv-42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			if jobID == "" && len(requirements) == 0 {
				return fmt.Errorf("either --job or --requirements is required")
			}
			return withService(cmd.Context(), o, func(svc *service.Service) error {
				ctx := cmd.Context()
				reqs := requirements
				if jobID != "" {
					job, err := svc.Job(ctx, jobID)
					if err != nil {
						return err
					}
					reqs = job.Requirements
				}
				cand := model.Candidate{Skills: skills, Summary: summary, Area: area}
				if score != "" {
					cand.Score = score
				}
				if candidateID != "" {
					c, err := svc.Candidate(ctx, candidateID)
					if err != nil {
						return err
					}
					cand = c
				}

				res := svc.Fit(ctx, reqs, cand)
				w := cmd.OutOrStdout()
				if output == outputJSON {
					return printJSON(w, res)
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "REQUIREMENT\tCANONICAL\tHIT\tMATCHED")
				for _, r := range res.Requirements {
					fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", r.Requirement, r.Canonical, r.Hit, r.CandidateToken)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(w, "fit %d (%d/%d)  score %d  rank %d\n",
					res.Fit, res.Hits, res.Total, res.NormalizedScore, res.Combined)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&requirements, "requirements", "r", nil, "comma separated requirements")
	f.StringVar(&jobID, "job", "", "take requirements from this job")
	f.StringVar(&candidateID, "candidate", "", "score this stored candidate")
	f.StringSliceVar(&skills, "skills", nil, "comma separated skills of an ad-hoc candidate")
	f.StringVar(&summary, "summary", "", "summary of an ad-hoc candidate")
	f.StringVar(&area, "area", "", "area of an ad-hoc candidate")
	f.StringVar(&score, "score", "", "CV score of an ad-hoc candidate, 0-10 or 0-100")
	cmd.MarkFlagsMutuallyExclusive("job", "requirements")
	cmd.MarkFlagsMutuallyExclusive("candidate", "skills")
	addOutputFlag(cmd, &output)
	return cmd
}
