package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chronocopy/internal/model"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage schedules",
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/schedules"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var schedules []model.Schedule
		if err := json.NewDecoder(resp.Body).Decode(&schedules); err != nil {
			return err
		}

		if len(schedules) == 0 {
			fmt.Println("no schedules configured")
			return nil
		}

		fmt.Printf("%-4s %-24s %-6s %-8s\n", "ID", "NAME", "JOB", "STATE")
		for _, s := range schedules {
			state := "active"
			if s.Paused {
				state = "paused"
			}
			fmt.Printf("%-4d %-24s %-6d %-8s\n", s.ID, s.Name, s.JobID, state)
		}

		return nil
	},
}

var schedulePauseCmd = &cobra.Command{
	Use:   "pause [id]",
	Short: "Pause a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleSchedule(args[0], "pause")
	},
}

var scheduleResumeCmd = &cobra.Command{
	Use:   "resume [id]",
	Short: "Resume a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleSchedule(args[0], "resume")
	},
}

func toggleSchedule(id, action string) error {
	resp, err := http.Post(daemonURL("/schedules/"+id+"/"+action), "application/json", nil)
	if err != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var result map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("schedule %s: %s", id, result["error"])
	}

	fmt.Printf("schedule %s %sd\n", id, action)
	return nil
}

func init() {
	scheduleCmd.AddCommand(scheduleListCmd, schedulePauseCmd, scheduleResumeCmd)
	rootCmd.AddCommand(scheduleCmd)
}
