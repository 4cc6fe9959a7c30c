// Package app assembles the pieces every subcommand needs: configuration,
// the model provider, the toolbox connection, the session store, and the
// agent runner built over the loaded tools.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"perch/internal/agent"
	"perch/internal/config"
	"perch/internal/db"
	"perch/internal/history"
	"perch/internal/llm"
	"perch/internal/toolbox"
	"perch/internal/tools"
	"perch/internal/trace"
)

type App struct {
	Config *config.Config
	Client *toolbox.Client
	Store  *history.Store
	Runner *agent.LoopRunner

	database      *db.DB
	traceShutdown func(context.Context) error
}

// New opens the toolbox connection, loads the toolset, and builds the agent.
// Close releases everything on all exit paths.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &App{Config: cfg}

	if cfg.Trace.Enabled {
		shutdown, err := trace.Init(ctx, trace.Config{
			Endpoint: cfg.Trace.Endpoint,
			URLPath:  cfg.Trace.URLPath,
			APIKey:   cfg.Trace.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing tracing: %w", err)
		}
		a.traceShutdown = shutdown
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	var opts []toolbox.Option
	for k, v := range cfg.Toolbox.Headers {
		opts = append(opts, toolbox.WithHeader(k, v))
	}
	client, err := toolbox.NewClient(cfg.Toolbox.ServerURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating toolbox client: %w", err)
	}
	a.Client = client

	remote, err := client.LoadToolset(ctx, cfg.Toolbox.Toolset)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("loading toolset %q from %s: %w",
			cfg.Toolbox.Toolset, cfg.Toolbox.ServerURL, err)
	}

	registry := agent.NewRegistry()
	for _, t := range remote {
		registry.Register(t)
	}
	if cfg.Tools.Web.BraveAPIKey != "" {
		registry.Register(tools.NewWeb(cfg.Tools.Web.BraveAPIKey))
	}
	registry = registry.Scope(cfg.Agent.Tools)

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.database = database
	if err := database.Migrate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	a.Store = history.NewStore(database)

	a.Runner = agent.NewLoopRunner(provider, a.Store, registry,
		agent.WithAgentName(cfg.Agent.Name),
		agent.WithInstruction(cfg.Agent.Instruction),
	)

	slog.Info("agent ready",
		"agent", cfg.Agent.Name,
		"model", cfg.LLM().Model,
		"toolbox", cfg.Toolbox.ServerURL,
		"tools", len(registry.All()),
	)
	return a, nil
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	lc := cfg.LLM()
	switch cfg.DefaultLLM {
	case "gemini":
		if lc.APIKey == "" {
			return nil, fmt.Errorf("gemini requires an API key (set GOOGLE_API_KEY)")
		}
		return llm.NewGemini(lc.APIKey, lc.Model), nil
	default:
		return llm.NewOpenAI(lc.BaseURL, lc.APIKey, lc.Model), nil
	}
}

func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
	if a.Client != nil {
		a.Client.Close()
	}
	if a.traceShutdown != nil {
		_ = a.traceShutdown(context.Background())
	}
}
