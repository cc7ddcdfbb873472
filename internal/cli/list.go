package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/me/rota/pkg/model"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduling jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/jobs/"
			if status != "" {
				path += "?status=" + status
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}

			var jobs []model.Job
			if err := json.Unmarshal(resp.Data, &jobs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(jobs) == 0 {
				fmt.Println("No jobs found.")
				return nil
			}

			fmt.Printf("%-40s  %-12s  %-10s  %s\n", "ID", "STATUS", "ASSIGNED", "CREATED")
			fmt.Printf("%-40s  %-12s  %-10s  %s\n", "----", "------", "--------", "-------")
			for _, job := range jobs {
				assigned := "-"
				if job.Status == model.JobStatusSucceeded {
					assigned = fmt.Sprintf("%d", job.Assigned)
				}
				fmt.Printf("%-40s  %-12s  %-10s  %s\n",
					job.ID, job.Status, assigned, humanize.Time(job.CreatedAt))
			}

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Printf("\n(%d of %d shown)\n", len(jobs), resp.Pagination.Total)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by job status (RUNNING, SUCCEEDED, FAILED)")
	return cmd
}
