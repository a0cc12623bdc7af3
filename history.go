package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pixbatch/failures"
	"pixbatch/runs"
	"pixbatch/store"
)

func newHistoryCmd(defaultDir string) *cobra.Command {
	var (
		dir       string
		failureOf string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, or the failures of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return errors.New("no history directory: pass --history-dir or set PIXBATCH_HISTORY_DIR")
			}
			db, err := store.Open(dir)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if failureOf != "" {
				records, err := failures.New(db).ListFailures(failureOf)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, map[string]interface{}{
						"run_id":   failureOf,
						"failures": records,
						"count":    len(records),
					})
				}
				return printFailures(out, records)
			}

			records, err := runs.New(db).ListRuns()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, map[string]interface{}{
					"runs":  records,
					"count": len(records),
				})
			}
			return printRuns(out, records)
		},
	}
	cmd.Flags().StringVar(&dir, "history-dir", defaultDir, "Pebble directory holding the run history")
	cmd.Flags().StringVar(&failureOf, "failures", "", "Show the failures recorded for this run id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRuns(w io.Writer, records []runs.RunRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tFILES\tWORKERS\tSEQUENTIAL MS\tPARALLEL MS\tIMPROVED\tFAILED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%t\t%d\n",
			r.RunID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Files, r.Workers,
			r.SequentialMs, r.ParallelMs, r.Improved, r.FailedFiles)
	}
	return tw.Flush()
}

func printFailures(w io.Writer, records []failures.FailureRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No failures recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PASS\tFILE\tHEIGHT\tKIND\tERROR")
	for _, r := range records {
		height := "-"
		if r.Height > 0 {
			height = fmt.Sprintf("%dp", r.Height)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Pass, r.File, height, r.Kind, strings.TrimSpace(r.Error))
	}
	return tw.Flush()
}
