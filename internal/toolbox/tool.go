package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a remote tool handle backed by a toolbox server. It satisfies
// agent.Tool, so loaded tools plug straight into the agent's registry.
type Tool struct {
	client   *Client
	name     string
	manifest ToolManifest
}

func newTool(c *Client, name string, tm ToolManifest) *Tool {
	return &Tool{client: c, name: name, manifest: tm}
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.manifest.Description }

// Parameters returns the tool's parameter manifest.
func (t *Tool) Parameters() []Parameter { return t.manifest.Parameters }

// AuthRequired lists auth services the server demands for invocation.
func (t *Tool) AuthRequired() []string { return t.manifest.AuthRequired }

// InputSchema is the JSON-Schema declaration handed to the model.
// Authenticated parameters are excluded; the server fills those in.
func (t *Tool) InputSchema() any {
	return schema(t.manifest.Parameters)
}

// Invoke executes the tool on the server with the given parameter values.
func (t *Tool) Invoke(ctx context.Context, params map[string]any) (string, error) {
	return t.client.invoke(ctx, t.name, params)
}

// Execute implements agent.Tool: the input is the model's JSON arguments.
func (t *Tool) Execute(ctx context.Context, input string) (string, error) {
	params := map[string]any{}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &params); err != nil {
			return "", fmt.Errorf("parsing %s input: %w", t.name, err)
		}
	}
	return t.Invoke(ctx, params)
}
