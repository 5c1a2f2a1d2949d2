package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var dryRun bool

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(scoreboardCmd)
	rootCmd.AddCommand(livesCmd)
	rootCmd.AddCommand(createSeasonCmd)
	rootCmd.AddCommand(announceCmd)

	createSeasonCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip the slack announcement")
	announceCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the slack message instead of posting it")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/healthcheck", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var scoreboardCmd = &cobra.Command{
	Use:   "scoreboard <season id>",
	Short: "Show the ranked scoreboard of a season",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seasonID, err := parseSeasonArg(args[0])
		if err != nil {
			return err
		}
		return performRequest(http.MethodPost, "/whack-a-blob/scoreboard", map[string]int64{"season": seasonID})
	},
}

var livesCmd = &cobra.Command{
	Use:   "lives <season id>",
	Short: "Show today's remaining lives of the token's player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seasonID, err := parseSeasonArg(args[0])
		if err != nil {
			return err
		}
		return performRequest(http.MethodPost, "/whack-a-blob/player-lives", map[string]int64{"season": seasonID})
	},
}

var createSeasonCmd = &cobra.Command{
	Use:   "create-season <name>",
	Short: "Create a new season (admin token required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, withDryRun("/whack-a-blob/create-season"), map[string]string{"season": args[0]})
	},
}

var announceCmd = &cobra.Command{
	Use:   "announce <season id>",
	Short: "Post the season scoreboard to slack (admin token required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seasonID, err := parseSeasonArg(args[0])
		if err != nil {
			return err
		}
		return performRequest(http.MethodPost, withDryRun("/whack-a-blob/announce-scoreboard"), map[string]int64{"season": seasonID})
	},
}

func parseSeasonArg(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid season id %q", raw)
	}
	return id, nil
}

func withDryRun(endpoint string) string {
	if dryRun {
		return endpoint + "?dry_run=true"
	}
	return endpoint
}

func performRequest(method, endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
