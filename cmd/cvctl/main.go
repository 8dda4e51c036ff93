package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"qahiring/cv-analyzer/internal/client"
	"qahiring/cv-analyzer/internal/config"
)

var (
	apiURL     string
	jsonOutput bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "cvctl",
	Short: "Terminal client for the QA CV analyzer",
	Long:  `Uploads CVs for analysis, shows stored results and manages the evaluation criteria.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !isTerminal(os.Stdout) {
			color.NoColor = true
		}
	},
	SilenceUsage: true,
}

func init() {
	cfg := config.LoadWebQuiet()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", cfg.APIURL, "Backend API base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", cfg.APITimeout, "Per-request timeout")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(criteriaCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(apiURL, timeout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
