package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/me/rota/internal/bundle"
	"github.com/me/rota/internal/solver"
	"github.com/me/rota/pkg/model"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var manifestFile string
	var watch bool

	cmd := &cobra.Command{
		Use:   "submit [bundle-dir]",
		Short: "Submit an input bundle for scheduling",
		Long:  "Load the input tables from a directory of CSV files (or a YAML manifest) and submit them as a new scheduling job.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b *model.InputBundle
			var err error

			switch {
			case manifestFile != "":
				logger.Info("loading bundle", "manifest", manifestFile)
				b, err = bundle.LoadManifest(manifestFile)
			case len(args) == 1:
				logger.Info("loading bundle", "dir", args[0])
				b, err = bundle.Load(args[0])
			default:
				return fmt.Errorf("a bundle directory or --manifest is required")
			}
			if err != nil {
				return fmt.Errorf("load bundle: %w", err)
			}
			logger.Debug("bundle loaded", "tables", b.Len())

			resp, err := client.Post("/api/v1/jobs/", map[string]any{
				"tables": solver.TablesPayload(b),
			})
			if err != nil {
				return fmt.Errorf("submit job: %w", err)
			}

			var job model.Job
			if err := json.Unmarshal(resp.Data, &job); err != nil {
				return fmt.Errorf("parse job response: %w", err)
			}
			fmt.Printf("Job submitted: %s (status: %s)\n", job.ID, job.Status)

			if watch {
				return watchJob(job.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestFile, "manifest", "m", "", "YAML manifest naming the table CSV files")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll until the job finishes, printing phase changes")
	return cmd
}

// watchJob polls the job until it is terminal, printing each status or
// phase change once.
func watchJob(id string) error {
	lastLine := ""
	for {
		resp, err := client.Get("/api/v1/jobs/" + id)
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		var job model.Job
		if err := json.Unmarshal(resp.Data, &job); err != nil {
			return fmt.Errorf("parse job: %w", err)
		}

		line := string(job.Status)
		if job.Phase != "" {
			line += " / " + string(job.Phase)
		}
		if line != lastLine {
			fmt.Printf("  %s\n", line)
			lastLine = line
		}

		if job.Status.IsTerminal() {
			if job.Status == model.JobStatusFailed {
				return fmt.Errorf("job failed: %s (%s)", job.ErrorMessage, job.ErrorKind)
			}
			fmt.Printf("Done: %d assigned, %d unassigned, %d dropped\n",
				job.Assigned, job.Unassigned, job.Dropped)
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}
