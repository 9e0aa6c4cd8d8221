package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/facepill/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetLogs bool
	resetYes  bool
)

var resetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Drop recorded round history",
	Long:        "Drops the round history table. With --logs it also deletes the log file and its rotated backups.",
	Annotations: map[string]string{dbAnnotation: dbRequired},
	Run: func(cmd *cobra.Command, args []string) {
		reader := bufio.NewReader(os.Stdin)

		if resetYes || confirm(os.Stdout, reader, "⚠️  Are you sure you want to DROP all recorded rounds?") {
			fmt.Println("🗑️  Clearing Database...")
			if err := DB.Reset(cmd.Context()); err != nil {
				utils.Die("Failed to reset database", err, nil)
			}
		}

		if resetLogs && cfg.LogFile != "" {
			if resetYes || confirm(os.Stdout, reader, "⚠️  Are you sure you want to delete the log files?") {
				fmt.Println("🗑️  Clearing Logs...")
				removeLogs(cfg.LogFile)
			}
		}

		fmt.Println("✨ Reset Complete.")
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetLogs, "logs", false, "Also delete log files")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func confirm(out io.Writer, r *bufio.Reader, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

// removeLogs deletes the log file and the backups lumberjack rotated next to it.
func removeLogs(file string) {
	for _, m := range logFiles(file) {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", m, err)
		}
	}
}

// logFiles matches "facepill.log" and rotated names like "facepill-2026-01-02T03-04-05.000.log.gz".
func logFiles(file string) []string {
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	matches, _ := filepath.Glob(base + "*" + ext + "*")
	return matches
}
