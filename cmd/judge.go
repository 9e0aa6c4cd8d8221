package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/facepill/internal/config"
	"github.com/andresmejia3/facepill/internal/detect"
	"github.com/andresmejia3/facepill/internal/game"
	"github.com/andresmejia3/facepill/internal/types"
	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/spf13/cobra"
)

var judgeManual bool

var judgeCmd = &cobra.Command{
	Use:   "judge <image_path>",
	Short: "Judge a single JPEG the way a round is judged",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runJudge(cmd.Context(), args[0], cfg)
	},
}

func init() {
	addDetectorFlags(judgeCmd)
	judgeCmd.Flags().BoolVarP(&judgeManual, "strict", "s", false, "Use the stricter manual detection threshold")
	rootCmd.AddCommand(judgeCmd)
}

func runJudge(ctx context.Context, imagePath string, opts config.Options) error {
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		utils.ShowError("Input file does not exist", err, nil)
		return err
	}
	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		utils.ShowError("Failed to read image file", err, nil)
		return err
	}

	det, err := newDetector(ctx, opts, Log)
	if err != nil {
		utils.ShowError("Failed to start landmark detector", err, nil)
		return err
	}
	defer det.Close()

	dopts := detect.DefaultConfig().Auto
	if judgeManual {
		dopts = detect.DefaultConfig().Manual
	}

	fmt.Fprintln(os.Stderr, "🔍 Analyzing face...")
	faces, err := det.Detect(ctx, imgData, dopts)
	if err != nil {
		showDetectorError("AI processing failed", err, det)
		return err
	}

	fmt.Println(verdict(game.Judge(&types.Snapshot{Faces: faces})))
	return nil
}

// verdict formats a judgment for the terminal.
func verdict(j game.Judgment) string {
	var b strings.Builder
	if j.Faces == 0 {
		b.WriteString("❌ No faces detected in the provided image.\n")
	} else {
		if j.Faces > 1 {
			fmt.Fprintf(&b, "⚠️  Multiple faces detected (%d). Only the first one counts.\n", j.Faces)
		}
		if j.Openness < 0 {
			b.WriteString("⚠️  Mouth landmarks incomplete.\n")
		} else {
			fmt.Fprintf(&b, "👄 Mouth openness: %.1f px (needs more than %.0f)\n", j.Openness, game.MouthOpenThreshold)
		}
	}
	if j.Result == game.ResultWin {
		fmt.Fprintf(&b, "✅ %s: %s", game.WinLabel, game.WinFlavor)
	} else {
		fmt.Fprintf(&b, "❌ %s: %s", game.LoseLabel, game.LoseFlavor)
	}
	return b.String()
}
