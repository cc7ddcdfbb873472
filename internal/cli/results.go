package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/me/rota/internal/report"
	"github.com/me/rota/pkg/model"
	"github.com/spf13/cobra"
)

func newResultsCmd() *cobra.Command {
	var where string
	var csvFile string
	var failuresFile string

	cmd := &cobra.Command{
		Use:   "results <job_id>",
		Short: "Show the classified results of a succeeded job",
		Long:  "Fetch a job's classified assignment records in canonical order, optionally filtered by a row expression, and render them as a table or export them as CSV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			path := "/api/v1/jobs/" + id + "/results"
			if where != "" {
				path += "?where=" + url.QueryEscape(where)
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("get results: %w", err)
			}

			var data struct {
				Assignments []model.ClassifiedRecord  `json:"assignments"`
				Unassigned  []model.UnassignedSession `json:"unassigned"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if csvFile != "" {
				if err := writeFile(csvFile, func(f *os.File) error {
					return report.WriteSolutionCSV(f, data.Assignments)
				}); err != nil {
					return fmt.Errorf("write solution CSV: %w", err)
				}
				fmt.Printf("Wrote %d record(s) to %s\n", len(data.Assignments), csvFile)
			}

			if failuresFile != "" {
				if err := writeFile(failuresFile, func(f *os.File) error {
					return report.WriteFailuresCSV(f, data.Unassigned)
				}); err != nil {
					return fmt.Errorf("write failures CSV: %w", err)
				}
				fmt.Printf("Wrote %d unassigned session(s) to %s\n", len(data.Unassigned), failuresFile)
			}

			if csvFile != "" || failuresFile != "" {
				return nil
			}

			rep := &report.Report{
				Records:     data.Assignments,
				Unassigned:  data.Unassigned,
				GeneratedAt: time.Now().UTC(),
			}
			return report.Render(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVar(&where, "where", "", `Row filter expression, e.g. 'row.Students >= 200 && row.Day == "Mon"'`)
	cmd.Flags().StringVar(&csvFile, "csv", "", "Write the solution records to a CSV file")
	cmd.Flags().StringVar(&failuresFile, "failures", "", "Write the unassigned sessions to a CSV file")
	return cmd
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
