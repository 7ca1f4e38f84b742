package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"chronocopy/internal/model"

	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage copy jobs",
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/jobs"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var jobs []model.Job
		if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
			return err
		}

		if len(jobs) == 0 {
			fmt.Println("no jobs configured")
			return nil
		}

		fmt.Printf("%-4s %-24s %-8s %-30s %-8s %-30s\n", "ID", "NAME", "SRC", "SOURCE", "DST", "TARGET")
		for _, j := range jobs {
			fmt.Printf("%-4d %-24s %-8s %-30s %-8s %-30s\n",
				j.ID, j.Name, j.SourceType, j.Source, j.TargetType, j.Target)
		}

		return nil
	},
}

var jobRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, _ := http.NewRequest(http.MethodDelete, daemonURL("/jobs/"+args[0]), nil)
		req.Header.Set("X-Machine-Name", hostName())

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		fmt.Printf("job %s removed\n", args[0])
		return nil
	},
}

func hostName() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

func init() {
	jobCmd.AddCommand(jobListCmd, jobRemoveCmd)
	rootCmd.AddCommand(jobCmd)
}
