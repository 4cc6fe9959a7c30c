package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"perch/internal/agent"
	"perch/internal/app"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var sessionID string

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Play the configured conversation script through the agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if sessionID == "" {
			sessionID = fmt.Sprintf("run-%d", time.Now().UnixNano())
		}

		return play(ctx, a.Runner, sessionID, a.Config.Script, os.Stdout)
	},
}

// play submits each script query strictly sequentially, fully consuming the
// response stream before the next query, and prints every non-empty text
// fragment.
func play(ctx context.Context, r agent.Runner, sessionID string, script []string, out io.Writer) error {
	for i, query := range script {
		fmt.Fprintf(out, "\n=== Query %d: %s ===\n", i+1, query)
		fmt.Fprint(out, "AI: ")

		err := r.Run(ctx, sessionID, query, func(ev agent.Event) {
			if ev.Type == agent.EventToken {
				if s, ok := ev.Data.(string); ok && s != "" {
					fmt.Fprint(out, s)
				}
			}
		})
		if err != nil {
			return fmt.Errorf("query %d failed: %w", i+1, err)
		}

		fmt.Fprintln(out, "\n"+strings.Repeat("-", 80))
	}

	return nil
}

func init() {
	Cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id to run under (default: a fresh one)")
}
