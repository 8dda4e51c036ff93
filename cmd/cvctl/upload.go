package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"qahiring/cv-analyzer/internal/client"
	"qahiring/cv-analyzer/internal/models"
)

var uploadCriteria string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a CV and print its analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadCriteria, "criteria", "", "Criteria override for this upload only")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var s *spinner.Spinner
	if isTerminal(os.Stderr) {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Analyzing CV..."
		s.Start()
	}

	result, err := uploadAndFetch(ctx, newClient(), args[0], uploadCriteria)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	printReport(os.Stdout, result)
	return nil
}

// uploadAndFetch validates path locally, uploads it and fetches the stored
// result, the same two steps the web upload page performs.
func uploadAndFetch(ctx context.Context, api *client.Client, path, criteria string) (*models.AnalysisResult, error) {
	name := filepath.Base(path)
	contentType := client.ContentTypeForFile(name)
	if err := client.ValidateUpload(name, contentType); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	id, err := api.Upload(ctx, client.UploadRequest{
		Filename:    name,
		ContentType: contentType,
		Content:     f,
		Criteria:    criteria,
	})
	if err != nil {
		return nil, err
	}

	return api.GetResult(ctx, id)
}

// readCriteriaArg returns the inline text, or the file's contents when file
// is set. "-" reads stdin.
func readCriteriaArg(args []string, file string, stdin io.Reader) (string, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("provide criteria text or --file")
	}
}
