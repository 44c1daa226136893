package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	"github.com/ariel-frischer/webhook-notifier/internal/logging"
)

// DefaultLogLines is how many entries logs prints without -n.
const DefaultLogLines = 50

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent log entries",
	Long: `Show entries from the newest log file in the configured log directory.

Use --errors to read errors.log, which collects error entries across all
days. With --follow, new entries are printed as they are written until
interrupted.`,
	Example: `  # Last 50 entries
  webhook-notifier logs

  # Last 200 warnings and errors
  webhook-notifier logs -n 200 -l warn

  # Watch deliveries as they happen
  webhook-notifier logs -f`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.GroupID = shared.GroupDiagnostics
	logsCmd.Flags().IntP("lines", "n", DefaultLogLines, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringP("level", "l", "", "Minimum level to show (debug, info, warn, error)")
	logsCmd.Flags().BoolP("follow", "f", false, "Keep printing new entries")
	logsCmd.Flags().Bool("errors", false, "Read errors.log instead of the newest log file")
}

// LogsOptions selects what runLogs prints.
type LogsOptions struct {
	Lines  int
	Level  string
	Follow bool
	Errors bool
}

func runLogs(cmd *cobra.Command, args []string) error {
	lines, _ := cmd.Flags().GetInt("lines")
	level, _ := cmd.Flags().GetString("level")
	follow, _ := cmd.Flags().GetBool("follow")
	errorsOnly, _ := cmd.Flags().GetBool("errors")

	m, err := shared.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return ShowLogs(ctx, cmd.OutOrStdout(), m.Config().Logging.Directory, LogsOptions{
		Lines:  lines,
		Level:  level,
		Follow: follow,
		Errors: errorsOnly,
	})
}

// ShowLogs prints entries from dir to out according to opts.
func ShowLogs(ctx context.Context, out io.Writer, dir string, opts LogsOptions) error {
	path, err := logPath(dir, opts.Errors)
	if err != nil {
		if errors.Is(err, logging.ErrNoLogs) {
			fmt.Fprintf(out, "No log files in %s\n", dir)
			return nil
		}
		return err
	}

	entries, err := logging.ReadFile(path)
	if err != nil {
		return err
	}
	entries, err = logging.FilterLevel(entries, opts.Level)
	if err != nil {
		return err
	}
	for _, e := range logging.Tail(entries, opts.Lines) {
		fmt.Fprintln(out, FormatEntry(e))
	}

	if !opts.Follow {
		return nil
	}
	return logging.Follow(ctx, path, func(e logging.Entry) {
		if kept, _ := logging.FilterLevel([]logging.Entry{e}, opts.Level); len(kept) == 1 {
			fmt.Fprintln(out, FormatEntry(e))
		}
	})
}

func logPath(dir string, errorsOnly bool) (string, error) {
	if !errorsOnly {
		return logging.LatestFile(dir)
	}
	path := filepath.Join(dir, logging.ErrorFileName)
	if _, err := os.Stat(path); err != nil {
		return "", logging.ErrNoLogs
	}
	return path, nil
}

// FormatEntry renders one entry as "timestamp LEVEL message key=value...".
// Unparsed lines are printed as-is.
func FormatEntry(e logging.Entry) string {
	if e.Message == "" && e.Level == "" {
		return e.Raw
	}

	var b strings.Builder
	if e.Timestamp != "" {
		b.WriteString(color.New(color.Faint).Sprint(e.Timestamp))
		b.WriteByte(' ')
	}
	b.WriteString(levelColor(e.Level).Sprintf("%-5s", strings.ToUpper(e.Level)))
	b.WriteByte(' ')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

func levelColor(level string) *color.Color {
	switch level {
	case "error", "dpanic", "panic", "fatal":
		return color.New(color.FgRed)
	case "warn":
		return color.New(color.FgYellow)
	case "debug":
		return color.New(color.Faint)
	default:
		return color.New(color.FgCyan)
	}
}
