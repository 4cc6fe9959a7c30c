package chat

import (
	"bufio"
	"fmt"
	"os"
	"perch/internal/agent"
	"perch/internal/app"
	"time"

	"github.com/spf13/cobra"
)

var sessionID string

var Cmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if sessionID == "" {
			sessionID = fmt.Sprintf("chat-%d", time.Now().Unix())
		}

		fmt.Printf("Chatting as session %s. Type 'exit' to quit.\n", sessionID)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := scanner.Text()
			if line == "" {
				continue
			}
			if line == "exit" {
				break
			}

			err := a.Runner.Run(ctx, sessionID, line, func(ev agent.Event) {
				if ev.Type == agent.EventToken {
					if s, ok := ev.Data.(string); ok {
						fmt.Print(s)
					}
				}
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Println()
		}

		return scanner.Err()
	},
}

func init() {
	Cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id to chat under (default: a fresh one)")
}
