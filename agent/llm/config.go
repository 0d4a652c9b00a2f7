// Package llm maps stage types to chat-model configuration. The router and
// FAQ stages default to the fast model; the contract specialists get the main
// one. Everything can be overridden per stage from the environment.
package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	openrouterx "github.com/assessor-ai/assessor/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	FastModel          string        `envconfig:"FAST_MODEL" split_words:"true"`
	EmbeddingModel     string        `envconfig:"EMBEDDING_MODEL" split_words:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel          string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	FinancialModel       string  `envconfig:"FINANCIAL_MODEL" split_words:"true"`
	AgendaModel          string  `envconfig:"AGENDA_MODEL" split_words:"true"`
	FAQModel             string  `envconfig:"FAQ_MODEL" split_words:"true"`
	RouterTemperature    float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	FinancialTemperature float32 `envconfig:"FINANCIAL_TEMPERATURE" split_words:"true" default:"-1"`
	AgendaTemperature    float32 `envconfig:"AGENDA_TEMPERATURE" split_words:"true" default:"-1"`
	FAQTemperature       float32 `envconfig:"FAQ_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) fastModel() string {
	if v := strings.TrimSpace(c.FastModel); v != "" {
		return v
	}
	return strings.TrimSpace(c.Model)
}

func (c Config) OpenRouterFor(stage contractx.StageType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch stage {
	case contractx.StageRouter:
		modelName = c.fastModel()
		if v := strings.TrimSpace(c.RouterModel); v != "" {
			modelName = v
		}
		if c.RouterTemperature >= 0 {
			temp = c.RouterTemperature
		}
	case contractx.StageFinancial:
		if v := strings.TrimSpace(c.FinancialModel); v != "" {
			modelName = v
		}
		if c.FinancialTemperature >= 0 {
			temp = c.FinancialTemperature
		}
	case contractx.StageAgenda:
		if v := strings.TrimSpace(c.AgendaModel); v != "" {
			modelName = v
		}
		if c.AgendaTemperature >= 0 {
			temp = c.AgendaTemperature
		}
	case contractx.StageFAQ:
		modelName = c.fastModel()
		if v := strings.TrimSpace(c.FAQModel); v != "" {
			modelName = v
		}
		if c.FAQTemperature >= 0 {
			temp = c.FAQTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
