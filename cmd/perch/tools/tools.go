package tools

import (
	"fmt"
	"perch/internal/config"
	"perch/internal/toolbox"

	"github.com/spf13/cobra"
)

var toolset string

var Cmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools served by the toolbox endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if toolset == "" {
			toolset = cfg.Toolbox.Toolset
		}

		client, err := toolbox.NewClient(cfg.Toolbox.ServerURL)
		if err != nil {
			return err
		}
		defer client.Close()

		loaded, err := client.LoadToolset(cmd.Context(), toolset)
		if err != nil {
			return err
		}

		fmt.Printf("%d tools at %s\n", len(loaded), client.ServerURL())
		for _, t := range loaded {
			fmt.Printf("\n%s\n  %s\n", t.Name(), t.Description())
			for _, p := range t.Parameters() {
				fmt.Printf("  - %s (%s): %s\n", p.Name, p.Type, p.Description)
			}
			if auth := t.AuthRequired(); len(auth) > 0 {
				fmt.Printf("  auth required: %v\n", auth)
			}
		}
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&toolset, "toolset", "t", "", "toolset to list (default: configured toolset)")
}
