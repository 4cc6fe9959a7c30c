package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name   string
	result string
	err    error
	calls  []string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake " + f.name }
func (f *fakeTool) InputSchema() any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (f *fakeTool) Execute(ctx context.Context, input string) (string, error) {
	f.calls = append(f.calls, input)
	return f.result, f.err
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "zeta"})
	r.Register(&fakeTool{name: "alpha"})
	r.Register(&fakeTool{name: "mid"})

	var names []string
	for _, tool := range r.All() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestRegistryReRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "a", result: "old"})
	r.Register(&fakeTool{name: "a", result: "new"})

	require.Len(t, r.All(), 1)
	got, ok := r.Get("a")
	require.True(t, ok)
	result, err := got.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "new", result)
}

func TestRegistryScope(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "a"})
	r.Register(&fakeTool{name: "b"})
	r.Register(&fakeTool{name: "c"})

	scoped := r.Scope([]string{"c", "a", "missing"})
	var names []string
	for _, tool := range scoped.All() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"c", "a"}, names)

	// Empty scope keeps everything.
	assert.Len(t, r.Scope(nil).All(), 3)
}
