package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Sanitize and validate an analysis JSON document",
		Long: `Validate applies the same sanitizing and schema checks used on AI responses
to a JSON file (or stdin) and prints the cleaned result, or the violations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var raw any
			if err := json.NewDecoder(r).Decode(&raw); err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}
			v := analysis.Validate(analysis.Sanitize(raw))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(v); err != nil {
				return err
			}
			if !v.Valid {
				return fmt.Errorf("%s", v.Message())
			}
			return nil
		},
	}
}
