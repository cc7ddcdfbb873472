package cli

import (
	"encoding/json"
	"fmt"

	"github.com/me/rota/pkg/model"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job_id>",
		Short: "Check the status of a scheduling job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			resp, err := client.Get("/api/v1/jobs/" + id)
			if err != nil {
				return fmt.Errorf("get job: %w", err)
			}

			var job model.Job
			if err := json.Unmarshal(resp.Data, &job); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Job: %s\n", job.ID)
			fmt.Printf("  Status:  %s\n", job.Status)
			if job.Phase != "" {
				fmt.Printf("  Phase:   %s\n", job.Phase)
			}
			if job.Status == model.JobStatusSucceeded {
				fmt.Printf("  Result:  %d assigned, %d unassigned, %d dropped\n",
					job.Assigned, job.Unassigned, job.Dropped)
			}
			if job.Status == model.JobStatusFailed {
				fmt.Printf("  Error:   %s (%s)\n", job.ErrorMessage, job.ErrorKind)
			}
			fmt.Printf("  Created: %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
			if job.FinishedAt != nil {
				fmt.Printf("  Finished: %s\n", job.FinishedAt.Format("2006-01-02 15:04:05"))
			}

			return nil
		},
	}
}
