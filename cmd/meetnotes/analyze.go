package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/meeting-insights/internal/bootstrap"
	"github.com/bryanwahyu/meeting-insights/internal/logging"
)

const maxNotesLen = 100000

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze meeting notes from a file or stdin",
		Long: `Analyze reads meeting notes from file (or stdin when file is "-" or omitted)
and prints {"result": ..., "metadata": ...} as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}
	cmd.Flags().StringP("type", "t", "general", "meeting type: standup, sprint-planning, client-meeting, academic, leadership, general")
	cmd.Flags().Bool("compact", false, "print JSON on one line")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	notes, err := readNotes(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(notes) == "" {
		return fmt.Errorf("notes are empty")
	}
	if utf8.RuneCountInString(notes) > maxNotesLen {
		return fmt.Errorf("notes must be at most %d characters", maxNotesLen)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logging.New(newLogger(cmd))

	orch, backend, err := bootstrap.Orchestrator(cmd.Context(), cfg.AI, nil, log)
	if err != nil {
		return err
	}
	log.Debug().Str("analyzer", backend).Msg("analyzing")

	meetingType, _ := cmd.Flags().GetString("type")
	out, err := orch.AnalyzeMeeting(cmd.Context(), notes, meetingType)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if compact, _ := cmd.Flags().GetBool("compact"); !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func readNotes(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(io.LimitReader(r, 4*maxNotesLen+1))
	if err != nil {
		return "", fmt.Errorf("read notes: %w", err)
	}
	return string(b), nil
}
