package toolbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
	"serverVersion": "0.18.0",
	"tools": {
		"search-hotels-by-name": {
			"description": "Search for hotels based on name.",
			"parameters": [
				{"name": "name", "type": "string", "description": "The name of the hotel."}
			],
			"authRequired": []
		},
		"book-hotel": {
			"description": "Book a hotel by its ID.",
			"parameters": [
				{"name": "hotel_id", "type": "integer", "description": "The ID of the hotel to book."}
			],
			"authRequired": []
		}
	}
}`

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/toolset/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testManifest))
	})
	mux.HandleFunc("GET /api/toolset/my-toolset", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testManifest))
	})
	mux.HandleFunc("GET /api/tool/book-hotel/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"serverVersion": "0.18.0",
			"tools": {
				"book-hotel": {
					"description": "Book a hotel by its ID.",
					"parameters": [{"name": "hotel_id", "type": "integer", "description": "The ID of the hotel to book."}],
					"authRequired": []
				}
			}
		}`))
	})
	mux.HandleFunc("POST /api/tool/book-hotel/invoke", func(w http.ResponseWriter, r *http.Request) {
		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, float64(3), params["hotel_id"])
		w.Write([]byte(`{"result": "Hotel booked."}`))
	})
	mux.HandleFunc("POST /api/tool/missing-tool/invoke", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status": "404 Not Found", "error": "invalid tool name"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return srv, client
}

func TestNewClientServerURL(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:5000")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", client.ServerURL())
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("127.0.0.1:5000/nope")
	assert.Error(t, err)
}

func TestLoadToolset(t *testing.T) {
	_, client := newTestServer(t)

	tools, err := client.LoadToolset(context.Background(), "my-toolset")
	require.NoError(t, err)
	require.Len(t, tools, 2)

	// Sorted by name; manifest map order is undefined.
	assert.Equal(t, "book-hotel", tools[0].Name())
	assert.Equal(t, "search-hotels-by-name", tools[1].Name())
	assert.Equal(t, "Search for hotels based on name.", tools[1].Description())
	require.Len(t, tools[1].Parameters(), 1)
	assert.Equal(t, "name", tools[1].Parameters()[0].Name)
}

func TestLoadToolsetDefault(t *testing.T) {
	_, client := newTestServer(t)

	tools, err := client.LoadToolset(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, tools, 2)
}

func TestLoadTool(t *testing.T) {
	_, client := newTestServer(t)

	tool, err := client.LoadTool(context.Background(), "book-hotel")
	require.NoError(t, err)
	assert.Equal(t, "book-hotel", tool.Name())
	assert.Equal(t, "Book a hotel by its ID.", tool.Description())
}

func TestToolInvoke(t *testing.T) {
	_, client := newTestServer(t)

	tool, err := client.LoadTool(context.Background(), "book-hotel")
	require.NoError(t, err)

	result, err := tool.Invoke(context.Background(), map[string]any{"hotel_id": 3})
	require.NoError(t, err)
	assert.Equal(t, "Hotel booked.", result)
}

func TestToolExecuteParsesModelArguments(t *testing.T) {
	_, client := newTestServer(t)

	tool, err := client.LoadTool(context.Background(), "book-hotel")
	require.NoError(t, err)

	result, err := tool.Execute(context.Background(), `{"hotel_id": 3}`)
	require.NoError(t, err)
	assert.Equal(t, "Hotel booked.", result)

	_, err = tool.Execute(context.Background(), `not json`)
	assert.Error(t, err)
}

func TestServerErrorSurfacesStatusAndMessage(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.invoke(context.Background(), "missing-tool", nil)
	require.Error(t, err)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.StatusCode)
	assert.Equal(t, "invalid tool name", serverErr.Message)
}

func TestClientSendsConfiguredHeaders(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"serverVersion": "0.18.0", "tools": {}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithHeader("Authorization", "Bearer tok"))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.LoadToolset(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}
