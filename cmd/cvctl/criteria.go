package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/rubric"
)

var criteriaFile string

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Show or replace the evaluation criteria",
}

var criteriaGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored criteria",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := newClient().GetCriteria(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(models.CriteriaPayload{Criteria: text})
		}
		if text == "" {
			_, _ = color.New(color.FgHiBlack).Fprintln(os.Stderr, "No criteria saved; the default rubric is used.")
			return nil
		}
		fmt.Fprintln(os.Stdout, text)
		return nil
	},
}

var criteriaSetCmd = &cobra.Command{
	Use:   "set [text]",
	Short: "Replace the stored criteria",
	Long:  `Replaces the stored criteria with the given text, or with the contents of --file. An empty string clears them.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readCriteriaArg(args, criteriaFile, os.Stdin)
		if err != nil {
			return err
		}
		if err := newClient().SaveCriteria(cmd.Context(), text); err != nil {
			return err
		}
		_, _ = color.New(color.FgGreen).Fprintln(os.Stderr, "✓ Criteria saved")
		return nil
	},
}

var criteriaTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the reference criteria template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rb, err := rubric.Default()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, rb.Template)
		return nil
	},
}

func init() {
	criteriaSetCmd.Flags().StringVarP(&criteriaFile, "file", "f", "", "Read criteria from a file (- for stdin)")

	criteriaCmd.AddCommand(criteriaGetCmd)
	criteriaCmd.AddCommand(criteriaSetCmd)
	criteriaCmd.AddCommand(criteriaTemplateCmd)
}
