package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srinivastls/AADIS/internal/logging"
	"github.com/srinivastls/AADIS/internal/orchestrator"
)

// NewAskCmd constructs the `aadis ask` command, which answers a single
// natural language question and prints the answer with its sources.
func NewAskCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the ingested documents",
		Long: `Ask a natural language question about the ingested documents.

The question is classified and routed to the matching retrieval agents
(text, table, image); their findings are synthesised into one answer.

Examples:
  aadis ask "what is the summary of chapter 2?"
  aadis ask "what is the total revenue in the sales table?"
  aadis ask --session review "show figure 3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			core, err := buildQACore(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer core.close()

			question := strings.Join(args, " ")
			resp := core.orch.Ask(ctx, question, session)
			printResponse(cmd, resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Session id for conversation history (default: \"default\")")

	return cmd
}

// printResponse renders a user response for terminal output.
func printResponse(cmd *cobra.Command, resp orchestrator.UserResponse) {
	cmd.Println(resp.Answer)

	if resp.Suggestion != "" {
		cmd.Println()
		cmd.Println(resp.Suggestion)
	}
	if resp.Error != "" {
		cmd.Println()
		cmd.Printf("Error: %s\n", resp.Error)
	}

	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, s := range resp.Sources {
			detail := s.Preview
			if s.Description != "" {
				detail = s.Description
			}
			if detail != "" {
				detail = " - " + detail
			}
			cmd.Printf("  %d. %s (page %d) [%s]%s\n", i+1, s.Document, s.Page, s.Type, detail)
		}
	}

	if resp.Confidence != "" {
		cmd.Println()
		cmd.Printf("Confidence: %s\n", resp.Confidence)
	}
}
