package toolbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 30 * time.Second

// Client talks to a toolbox server over its HTTP API. It discovers tools
// from toolset manifests and invokes them on behalf of the agent.
type Client struct {
	serverURL string
	base      *url.URL
	client    *http.Client
	headers   map[string]string
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithHeader adds a header to every request, e.g. an auth token header.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

func NewClient(serverURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server URL must be absolute: %s", serverURL)
	}

	c := &Client{
		serverURL: serverURL,
		base:      base,
		headers:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return c, nil
}

// ServerURL returns the endpoint the client was constructed with, verbatim.
func (c *Client) ServerURL() string { return c.serverURL }

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() { c.client.CloseIdleConnections() }

// LoadToolset fetches the named toolset's manifest and returns its tools,
// sorted by name. An empty name loads the server's default toolset.
func (c *Client) LoadToolset(ctx context.Context, name string) ([]*Tool, error) {
	manifest, err := c.getManifest(ctx, "api/toolset/"+name)
	if err != nil {
		return nil, err
	}

	tools := make([]*Tool, 0, len(manifest.Tools))
	for toolName, tm := range manifest.Tools {
		tools = append(tools, newTool(c, toolName, tm))
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })

	slog.Debug("toolbox: toolset loaded",
		"toolset", name, "server_version", manifest.ServerVersion, "tools", len(tools))
	return tools, nil
}

// LoadTool fetches a single tool's manifest.
func (c *Client) LoadTool(ctx context.Context, name string) (*Tool, error) {
	manifest, err := c.getManifest(ctx, "api/tool/"+name+"/")
	if err != nil {
		return nil, err
	}

	tm, ok := manifest.Tools[name]
	if !ok {
		return nil, fmt.Errorf("tool %q missing from its own manifest", name)
	}
	return newTool(c, name, tm), nil
}

func (c *Client) getManifest(ctx context.Context, path string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &manifest, nil
}

// invoke executes a tool on the server and returns the raw result string.
func (c *Client) invoke(ctx context.Context, name string, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encoding parameters: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("api/tool/"+name+"/invoke"), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding invoke response: %w", err)
	}
	return resp.Result, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("toolbox request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newServerError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

// ServerError is a non-200 response from the toolbox server. The client does
// no retries; failures surface to the caller as-is.
type ServerError struct {
	StatusCode int
	Message    string
}

func newServerError(status int, body []byte) *ServerError {
	var parsed struct {
		Error  string `json:"error"`
		Status string `json:"status"`
	}
	msg := string(body)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		msg = parsed.Error
	}
	return &ServerError{StatusCode: status, Message: msg}
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("toolbox server: %d: %s", e.StatusCode, e.Message)
}
