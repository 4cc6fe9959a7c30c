package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DefaultLLM string                `toml:"default_llm"`
	LLMs       map[string]*LLMConfig `toml:"llm"`

	Toolbox  ToolboxConfig             `toml:"toolbox"`
	Agent    AgentConfig               `toml:"agent"`
	Script   []string                  `toml:"script"`
	Gateway  GatewayConfig             `toml:"gateway"`
	Channels map[string]*ChannelConfig `toml:"channel"`
	DB       DBConfig                  `toml:"db"`
	Trace    TraceConfig               `toml:"trace"`
	Tools    ToolsConfig               `toml:"tools"`
}

type LLMConfig struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// ToolboxConfig points at the tool-serving endpoint tools are loaded from.
type ToolboxConfig struct {
	ServerURL string            `toml:"server_url"`
	Toolset   string            `toml:"toolset"` // empty = default toolset
	Headers   map[string]string `toml:"headers"`
}

type AgentConfig struct {
	Name        string   `toml:"name"`
	Instruction string   `toml:"instruction"`
	Tools       []string `toml:"tools"` // tool names; empty = all loaded tools
}

type GatewayConfig struct {
	Addr  string `toml:"addr"`
	Token string `toml:"token"`
}

type ChannelConfig struct {
	Enabled  bool              `toml:"enabled"`
	Type     string            `toml:"type"`
	Settings map[string]string `toml:"settings"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

type ToolsConfig struct {
	Web WebToolConfig `toml:"web"`
}

type WebToolConfig struct {
	BraveAPIKey string `toml:"brave_api_key"`
}

// DefaultInstruction matches the quickstart agent's system prompt.
const DefaultInstruction = "You are a helpful AI assistant designed to provide accurate and useful information."

// DefaultScript is the canned conversation the run command plays when the
// config file defines no script of its own.
var DefaultScript = []string{
	"Find hotels in Basel with Basel in its name.",
	"Can you book the Hilton Basel for me?",
	"Oh wait, this is too expensive. Please cancel it and book the Hyatt Regency instead.",
	"My check in dates would be from April 10, 2024 to April 19, 2024.",
}

func Load() (*Config, error) {
	cfg := &Config{
		DefaultLLM: "gemini",
		LLMs: map[string]*LLMConfig{
			"gemini": {
				Model: "gemini-2.5-flash",
			},
		},
		Toolbox: ToolboxConfig{
			ServerURL: "http://127.0.0.1:5000",
		},
		Agent: AgentConfig{
			Name:        "perch",
			Instruction: DefaultInstruction,
		},
		Gateway: GatewayConfig{
			Addr: ":8484",
		},
		DB: DBConfig{
			Path: defaultDBPath(),
		},
	}

	path := Path()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if len(cfg.Script) == 0 {
		cfg.Script = append([]string(nil), DefaultScript...)
	}

	return cfg, nil
}

// applyEnv fills credentials and endpoints from the environment when the
// file leaves them unset. GOOGLE_API_KEY authenticates Gemini model calls.
func (c *Config) applyEnv() {
	if gemini, ok := c.LLMs["gemini"]; ok && gemini.APIKey == "" {
		gemini.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if v := os.Getenv("TOOLBOX_URL"); v != "" {
		c.Toolbox.ServerURL = v
	}
}

// LLM returns the configuration of the active model provider.
func (c *Config) LLM() *LLMConfig {
	if llm, ok := c.LLMs[c.DefaultLLM]; ok {
		return llm
	}
	return &LLMConfig{}
}

func Path() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "perch", "config.toml")
}

func defaultDBPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, ".local", "share", "perch", "perch.db")
}
