package toolbox

// Manifest is the body returned by the toolset and tool endpoints.
type Manifest struct {
	ServerVersion string                  `json:"serverVersion"`
	Tools         map[string]ToolManifest `json:"tools"`
}

// ToolManifest describes a single tool as served by the toolbox.
type ToolManifest struct {
	Description  string      `json:"description"`
	Parameters   []Parameter `json:"parameters"`
	AuthRequired []string    `json:"authRequired"`
}

// Parameter is one entry of a tool's parameter list.
type Parameter struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Description  string        `json:"description"`
	Required     *bool         `json:"required,omitempty"`
	Items        *Parameter    `json:"items,omitempty"`
	AuthServices []AuthService `json:"authSources,omitempty"`
}

// AuthService binds a parameter to a claim of a configured auth service.
// Such parameters are filled in server-side from the caller's token.
type AuthService struct {
	Name  string `json:"name"`
	Field string `json:"field"`
}

// required reports whether the parameter must be supplied by the caller.
// The manifest omits the field for required parameters.
func (p Parameter) required() bool {
	return p.Required == nil || *p.Required
}

// authenticated reports whether the parameter is resolved from auth claims.
// Authenticated parameters are hidden from the model's schema.
func (p Parameter) authenticated() bool {
	return len(p.AuthServices) > 0
}

// schema converts the parameter list into a JSON-Schema object suitable for
// a function tool declaration.
func schema(params []Parameter) map[string]any {
	properties := make(map[string]any)
	required := make([]string, 0, len(params))

	for _, p := range params {
		if p.authenticated() {
			continue
		}
		properties[p.Name] = p.schema()
		if p.required() {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func (p Parameter) schema() map[string]any {
	s := map[string]any{
		"type":        jsonType(p.Type),
		"description": p.Description,
	}
	if p.Type == "array" && p.Items != nil {
		s["items"] = p.Items.schema()
	}
	return s
}

func jsonType(t string) string {
	switch t {
	case "string", "integer", "boolean", "array", "object":
		return t
	case "float":
		return "number"
	default:
		return "string"
	}
}
