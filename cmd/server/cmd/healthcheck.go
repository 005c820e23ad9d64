package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthcheckTimeout int
	healthcheckURL     string
)

func newHealthcheckCommand() *cobra.Command {
	healthcheck := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is ready",
		Long: `Performs a readiness check by calling the /readyz endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.

Exit codes:
  0 - Server is healthy
  1 - Server is unhealthy or unreachable
  2 - Invalid response from server`,
		RunE: runHealthcheck,
	}

	healthcheck.Flags().IntVar(&healthcheckTimeout, "timeout", 5, "timeout in seconds")
	healthcheck.Flags().StringVar(&healthcheckURL, "url", "", "readiness URL (default: http://localhost:{SERVER_PORT}/readyz)")
	return healthcheck
}

type readinessResponse struct {
	Status string `json:"status"`
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := healthcheckURL
	if url == "" {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		url = fmt.Sprintf("http://localhost:%s/readyz", port)
	}

	status, err := checkReadiness(url, time.Duration(healthcheckTimeout)*time.Second)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Health check failed: %v\n", err)
		os.Exit(1)
	}
	if status != "healthy" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Server status: %s\n", status)
		os.Exit(1)
	}
	return nil
}

func checkReadiness(url string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var readiness readinessResponse
	if err := json.NewDecoder(resp.Body).Decode(&readiness); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if readiness.Status == "" {
		return "", fmt.Errorf("unexpected response from %s", url)
	}
	return readiness.Status, nil
}
