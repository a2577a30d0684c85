package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LLMConfig 远程 completion 服务配置
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	// 同时向 completion 服务发起的最大请求数
	MaxConcurrent int `yaml:"max_concurrent"`
}

// IMAPConfig 邮箱来源配置
type IMAPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	IMAP   IMAPConfig   `yaml:"imap"`
}

// Load reads the YAML config file, applies env overrides and defaults.
// The result is loaded once at startup and read-only afterwards.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// 环境变量覆盖（优先级最高）
	OverrideServerFromEnv(&cfg.Server)
	OverrideLLMFromEnv(&cfg.LLM)
	OverrideIMAPFromEnv(&cfg.IMAP)

	cfg.applyDefaults()

	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key is required (set OPENROUTER_API_KEY)")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "meta-llama/llama-3.1-8b-instruct"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 100
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 90
	}
	if c.LLM.MaxConcurrent <= 0 {
		c.LLM.MaxConcurrent = 4
	}
	if c.IMAP.Port == "" {
		c.IMAP.Port = "993"
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideLLMFromEnv 从环境变量覆盖 completion 服务配置
func OverrideLLMFromEnv(cfg *LLMConfig) {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if model := os.Getenv("OPENROUTER_MODEL"); model != "" {
		cfg.Model = model
	}
	if url := os.Getenv("OPENROUTER_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	if n := os.Getenv("LLM_MAX_CONCURRENT"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			cfg.MaxConcurrent = v
		}
	}
}

// OverrideIMAPFromEnv 从环境变量覆盖邮箱配置
func OverrideIMAPFromEnv(cfg *IMAPConfig) {
	if host := os.Getenv("IMAP_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("IMAP_PORT"); port != "" {
		cfg.Port = port
	}
	if user := os.Getenv("IMAP_USERNAME"); user != "" {
		cfg.Username = user
	}
	if password := os.Getenv("IMAP_PASSWORD"); password != "" {
		cfg.Password = password
	}
}
