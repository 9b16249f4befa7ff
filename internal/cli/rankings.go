package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/medeuamangeldi/quiz-maker-api/internal/config"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	"github.com/spf13/cobra"
)

// NewRankingsCmd prints the global leaderboard, or a test's top performers.
func NewRankingsCmd(configPath *string) *cobra.Command {
	var (
		testID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Print the global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRankings(cmd.Context(), cmd.OutOrStdout(), *configPath, testID, limit)
		},
	}
	cmd.Flags().StringVar(&testID, "test", "", "show top performers of this test instead")
	cmd.Flags().IntVar(&limit, "limit", 0, "top performers limit (0 uses ranking.top_limit)")
	return cmd
}

func runRankings(ctx context.Context, out io.Writer, configPath, testID string, limit int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if testID != "" {
		performers, err := svc.rankings.TopPerformers(ctx, testID, limit)
		if err != nil {
			return err
		}
		return printTopPerformers(out, performers)
	}

	ranking, err := svc.rankings.GlobalRanking(ctx)
	if err != nil {
		return err
	}
	return printRanking(out, ranking)
}

func printRanking(out io.Writer, ranking []domain.RankingEntry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tEARNED\tPOSSIBLE\tAVERAGE")
	for i, entry := range ranking {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.2f\n", i+1, entry.Username, entry.TotalEarned, entry.TotalPossible, entry.AverageScore)
	}
	return tw.Flush()
}

func printTopPerformers(out io.Writer, performers []domain.TopPerformer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tEARNED\tTOTAL\tSUBMITTED")
	for i, p := range performers {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, p.Username, p.EarnedPoints, p.TotalPoints, p.SubmittedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
