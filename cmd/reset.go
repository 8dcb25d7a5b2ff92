package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/attend/internal/notify"
	"github.com/spf13/cobra"
)

var (
	resetPreviews bool
	resetLogs     bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove kiosk artifacts (preview image, log files)",
	Long:  "Clears local state. By default, it resets everything. Use flags to clear specific components.",
	Run: func(cmd *cobra.Command, args []string) {
		// If no flags are set, default to clearing EVERYTHING
		if !resetPreviews && !resetLogs {
			resetPreviews = true
			resetLogs = true
		}

		reader := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		if resetPreviews && Cfg.PreviewDir != "" {
			if confirm(reader, out, "⚠️  Are you sure you want to delete the annotated preview?") {
				fmt.Fprintln(out, "🗑️  Clearing Preview...")
				removePath(filepath.Join(Cfg.PreviewDir, notify.PreviewFile))
			}
		}

		if resetLogs && Cfg.LogFile != "" {
			if confirm(reader, out, "⚠️  Are you sure you want to delete all log files?") {
				fmt.Fprintln(out, "🗑️  Clearing Logs...")
				for _, path := range logFiles(Cfg.LogFile) {
					removePath(path)
				}
			}
		}

		fmt.Fprintln(out, "✨ Reset Complete.")
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetPreviews, "previews", false, "Clear the annotated preview")
	resetCmd.Flags().BoolVar(&resetLogs, "logs", false, "Clear the log file and its rotated backups")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

// logFiles returns the log file and the backups lumberjack rotated next to
// it (name-<timestamp>.ext, optionally .gz).
func logFiles(file string) []string {
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	matches, _ := filepath.Glob(base + "-*" + ext + "*")
	return append([]string{file}, matches...)
}

func removePath(path string) {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
