package invoke

import (
	"bytes"
	"encoding/json"
	"fmt"
	"perch/internal/config"
	"perch/internal/toolbox"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "invoke <tool-name> [params]",
	Short: "Invoke a toolbox tool directly",
	Long: `Invoke a tool on the toolbox server without going through the agent.
Params must be a JSON object.
Example:
  perch invoke search-hotels-by-name '{"name": "Basel"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		client, err := toolbox.NewClient(cfg.Toolbox.ServerURL)
		if err != nil {
			return err
		}
		defer client.Close()

		tool, err := client.LoadTool(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		params := map[string]any{}
		if len(args) > 1 && args[1] != "" {
			if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
				return fmt.Errorf("params must be a valid JSON object: %w", err)
			}
		}

		result, err := tool.Invoke(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("invoking %s: %w", tool.Name(), err)
		}

		// Tool results are strings, usually JSON-encoded; pretty-print when
		// they are.
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, []byte(result), "", "  "); err == nil {
			fmt.Println(pretty.String())
		} else {
			fmt.Println(result)
		}
		return nil
	},
}
