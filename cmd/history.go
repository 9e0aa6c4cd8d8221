package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facepill/internal/store"
	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "List recorded rounds and win/lose totals",
	Annotations: map[string]string{dbAnnotation: dbRequired},
	Run: func(cmd *cobra.Command, args []string) {
		runHistory(cmd.Context())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of rounds to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(ctx context.Context) {
	rounds, err := DB.ListRounds(ctx, historyLimit)
	if err != nil {
		utils.Die("Failed to list rounds", err, nil)
	}
	stats, err := DB.Stats(ctx)
	if err != nil {
		utils.Die("Failed to count rounds", err, nil)
	}

	if len(rounds) == 0 {
		fmt.Println("No rounds recorded yet.")
		return
	}
	printRounds(os.Stdout, rounds, stats)
}

func printRounds(out io.Writer, rounds []store.Round, stats store.Stats) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSESSION\tROUND\tRESULT\tOPENNESS\tFACES\tJUDGED")
	fmt.Fprintln(w, "--\t-------\t-----\t------\t--------\t-----\t------")

	for _, r := range rounds {
		openness := "-"
		if r.Openness != nil {
			openness = fmt.Sprintf("%.1f", *r.Openness)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.SessionID.String()[:8],
			r.Round,
			r.Result,
			openness,
			r.Faces,
			r.JudgedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\n🏆 %d wins / %d losses (%d rounds)\n", stats.Wins, stats.Losses, stats.Total())
}
