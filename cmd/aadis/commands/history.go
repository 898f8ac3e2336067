package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srinivastls/AADIS/internal/logging"
)

// NewHistoryCmd constructs the `aadis history` command, which lists or
// clears a session's conversation history.
func NewHistoryCmd() *cobra.Command {
	var session string
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear a session's conversation history",
		Long: `Show the recorded question/answer exchanges for a session, oldest first.

Examples:
  aadis history
  aadis history --session review
  aadis history --session review --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			core, err := buildQACore(ctx, log)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			defer core.close()

			if clear {
				if err := core.orch.Clear(ctx, session); err != nil {
					return fmt.Errorf("history: clear: %w", err)
				}
				cmd.Println("History cleared.")
				return nil
			}

			entries, err := core.orch.History(ctx, session)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if len(entries) == 0 {
				cmd.Println("No history for this session.")
				return nil
			}

			for _, e := range entries {
				cmd.Printf("[%s] Q: %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Question)
				cmd.Printf("            A: %s\n\n", e.Answer)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Session id (default: \"default\")")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the session's history instead of listing it")

	return cmd
}
