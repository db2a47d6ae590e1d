package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/studypulse-backend/internal/app"
	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/calendar"
	"github.com/yungbote/studypulse-backend/internal/modules/study/grades"
	"github.com/yungbote/studypulse-backend/internal/platform/pdftext"
)

var (
	userFlag    string
	recordsFlag bool
)

var rootCmd = &cobra.Command{
	Use:          "studypulse",
	Short:        "studypulse - study progress backend",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the rollover scheduler",
	RunE:  runServe,
}

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Recompute every user's progress once and exit",
	RunE:  runRollover,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse an export file and print the result as JSON",
}

var importICSCmd = &cobra.Command{
	Use:   "ics <file>",
	Short: "Parse an iCalendar file into deadlines and personal events",
	Args:  cobra.ExactArgs(1),
	RunE:  importRunner("ics"),
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Parse a grade export (comma or semicolon separated)",
	Args:  cobra.ExactArgs(1),
	RunE:  importRunner("csv"),
}

var importPDFCmd = &cobra.Command{
	Use:   "pdf <file>",
	Short: "Parse a progress summary PDF, or its extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  importRunner("pdf"),
}

func init() {
	importCmd.PersistentFlags().StringVar(&userFlag, "user", "", "user id stamped on the records (default nil uuid)")
	importCmd.PersistentFlags().BoolVar(&recordsFlag, "records", false, "print the records an import would store")
	importCmd.AddCommand(importICSCmd, importCSVCmd, importPDFCmd)
	rootCmd.AddCommand(serveCmd, rolloverCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(); err != nil {
		return err
	}
	return a.Run(ctx)
}

func runRollover(cmd *cobra.Command, args []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Rollover.RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d users\n", n)
	return nil
}

func importRunner(format string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		userID := uuid.Nil
		if userFlag != "" {
			id, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			userID = id
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return runImport(cmd.OutOrStdout(), format, data, userID, recordsFlag, time.Now())
	}
}

// runImport parses data with the pure parsers and writes indented JSON to
// w. A parser error is printed and also returned so the exit code is set.
func runImport(w io.Writer, format string, data []byte, userID uuid.UUID, withRecords bool, now time.Time) error {
	var (
		out    map[string]any
		impErr *study.ImportError
	)
	switch format {
	case "ics":
		res := calendar.Parse(string(data), now)
		out = map[string]any{"events": res.Events, "debug": res.Debug}
		impErr = res.Error
		if withRecords && impErr == nil {
			deadlines, events := calendar.ToRecords(userID, res.Events, now)
			out["deadlines"], out["personal_events"] = deadlines, events
		}
	case "csv":
		items, mapping, ierr := grades.ImportCSV(userID, string(data))
		out = map[string]any{"mapping": mapping, "summaries": grades.CalculateGradeSummaries(items, 0)}
		impErr = ierr
		if withRecords {
			out["assessments"] = items
		}
	case "pdf":
		text := string(data)
		if bytes.HasPrefix(data, []byte("%PDF")) {
			extracted, err := pdftext.Extract(data)
			if err != nil {
				return fmt.Errorf("extract pdf text: %w", err)
			}
			text = extracted
		}
		res := grades.ParseProgressSummary(text)
		out = map[string]any{"rows": res.Rows, "warnings": res.Warnings}
		impErr = res.Error
		if withRecords && impErr == nil {
			out["assessments"] = grades.ToAssessments(userID, res.Rows)
		}
	default:
		return fmt.Errorf("unknown import format %q", format)
	}
	if impErr != nil {
		out["error"] = impErr
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if impErr != nil {
		return impErr
	}
	return nil
}
