package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"perch/internal/config"

	"github.com/spf13/cobra"
)

const template = `# perch configuration

default_llm = "gemini"

[llm.gemini]
model = "gemini-2.5-flash"
# api_key falls back to the GOOGLE_API_KEY environment variable

[toolbox]
# TODO(developer): update server_url to your toolbox endpoint
server_url = "http://127.0.0.1:5000"
# toolset = "my-toolset"

[agent]
name = "perch"
instruction = "You are a helpful AI assistant designed to provide accurate and useful information."

# Queries the run command plays, in order.
script = [
    "Find hotels in Basel with Basel in its name.",
    "Can you book the Hilton Basel for me?",
    "Oh wait, this is too expensive. Please cancel it and book the Hyatt Regency instead.",
    "My check in dates would be from April 10, 2024 to April 19, 2024.",
]

[gateway]
addr = ":8484"
# token = "change-me"

# [tools.web]
# brave_api_key = "..."

# [trace]
# enabled = true
# endpoint = "localhost:4318"
`

var Cmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(template), 0o600); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}
