package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [jobId]",
	Short: "Trigger a job run now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, _ := http.NewRequest(http.MethodPost, daemonURL("/jobs/"+args[0]+"/run"), nil)
		req.Header.Set("X-Machine-Name", hostName())

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var result map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&result)

		if resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("run rejected: %v", result["error"])
		}

		fmt.Printf("run started: %v\n", result["runId"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
