package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chronocopy/internal/model"

	"github.com/spf13/cobra"
)

var historyArchive string

var historyCmd = &cobra.Command{
	Use:   "history [jobId]",
	Short: "View run history for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := daemonURL("/jobs/" + args[0] + "/run-history")
		if historyArchive != "" {
			url += "?archive=" + historyArchive
		}

		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var records []model.RunRecord
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no runs yet")
			return nil
		}

		for _, r := range records {
			status := "✓"
			if r.Status == model.RunFailed || r.Status == model.RunMixed {
				status = "✗"
			}

			fmt.Printf("%s [%s] %-9s %-22s %s\n",
				status,
				r.Timestamp.Format("2006-01-02 15:04:05"),
				r.TriggerType,
				r.Status,
				r.Message,
			)

			for _, sub := range r.SubRuns {
				fmt.Printf("    %s %-22s %s\n", sub.Date, sub.Status, sub.Message)
			}
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyArchive, "archive", "", "archive partition to read (default: live history)")
	rootCmd.AddCommand(historyCmd)
}
