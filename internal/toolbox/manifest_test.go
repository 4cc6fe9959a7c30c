package toolbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestSchemaRequiredByDefault(t *testing.T) {
	s := schema([]Parameter{
		{Name: "id", Type: "integer", Description: "user ID"},
		{Name: "name", Type: "string", Description: "user name", Required: boolPtr(false)},
	})

	props := s["properties"].(map[string]any)
	require.Contains(t, props, "id")
	require.Contains(t, props, "name")
	assert.Equal(t, []string{"id"}, s["required"])
	assert.Equal(t, false, s["additionalProperties"])
}

func TestSchemaHidesAuthenticatedParameters(t *testing.T) {
	s := schema([]Parameter{
		{Name: "email", Type: "string", Description: "user email",
			AuthServices: []AuthService{{Name: "my-google-auth", Field: "email"}}},
		{Name: "id", Type: "integer", Description: "user ID"},
	})

	props := s["properties"].(map[string]any)
	assert.NotContains(t, props, "email")
	assert.Contains(t, props, "id")
	assert.Equal(t, []string{"id"}, s["required"])
}

func TestSchemaArrayItems(t *testing.T) {
	s := schema([]Parameter{
		{Name: "idArray", Type: "array", Description: "ID array",
			Items: &Parameter{Name: "id", Type: "integer", Description: "ID"}},
	})

	props := s["properties"].(map[string]any)
	arr := props["idArray"].(map[string]any)
	assert.Equal(t, "array", arr["type"])
	items := arr["items"].(map[string]any)
	assert.Equal(t, "integer", items["type"])
}

func TestSchemaTypeMapping(t *testing.T) {
	assert.Equal(t, "number", jsonType("float"))
	assert.Equal(t, "boolean", jsonType("boolean"))
	assert.Equal(t, "string", jsonType("something-new"))
}

func TestSchemaEmptyParameters(t *testing.T) {
	s := schema(nil)
	assert.Empty(t, s["properties"])
	assert.Empty(t, s["required"])
}
