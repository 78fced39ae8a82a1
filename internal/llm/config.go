package llm

import (
	"strings"

	"github.com/openai/openai-go"

	"github.com/qiangli/dataworks/internal/api"
)

const (
	DefaultBaseUrl    = "https://api.openai.com/v1/"
	DefaultModel      = string(openai.ChatModelGPT4oMini)
	DefaultAudioModel = string(openai.AudioModelWhisper1)
)

// Config holds the credentials and models for the language-model endpoint.
type Config struct {
	ApiKey  string
	BaseUrl string

	Model      string
	AudioModel string

	DryRun        bool
	DryRunContent string
}

// Validate fills defaults and fails when no API key is configured.
// A dry run needs no key.
func (cfg *Config) Validate() error {
	if cfg.BaseUrl == "" {
		cfg.BaseUrl = DefaultBaseUrl
	}
	if !strings.HasSuffix(cfg.BaseUrl, "/") {
		cfg.BaseUrl += "/"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.AudioModel == "" {
		cfg.AudioModel = DefaultAudioModel
	}
	if cfg.ApiKey == "" && !cfg.DryRun {
		return api.NewConfigError("LLM API key is not set: use --api-key or set AIPROXY_TOKEN/OPENAI_API_KEY")
	}
	return nil
}
