package llm

import (
	"testing"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	openrouterx "github.com/assessor-ai/assessor/pkg/openrouter"
)

func testConfig() Config {
	return Config{
		BaseURL:     "https://openrouter.ai/api/v1",
		APIKey:      "sk-test",
		Model:       "google/gemini-2.5-pro",
		FastModel:   "google/gemini-2.5-flash",
		Temperature: 0.5,
	}
}

func TestOpenRouterForStageModels(t *testing.T) {
	t.Parallel()

	cfg := testConfig()

	cases := []struct {
		stage contractx.StageType
		want  string
	}{
		{contractx.StageRouter, "google/gemini-2.5-flash"},
		{contractx.StageFAQ, "google/gemini-2.5-flash"},
		{contractx.StageFinancial, "google/gemini-2.5-pro"},
		{contractx.StageAgenda, "google/gemini-2.5-pro"},
	}
	for _, tc := range cases {
		stageCfg := cfg.OpenRouterFor(tc.stage)
		if stageCfg.Model != tc.want {
			t.Fatalf("OpenRouterFor(%s).Model = %q, want %q", tc.stage, stageCfg.Model, tc.want)
		}
		// The registry hands each stage config to the model builder.
		var _ openrouterx.LLMBuilder = &stageCfg
	}
}

func TestOpenRouterForOverrides(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RouterModel = "x-ai/grok-4.1-fast"
	cfg.RouterTemperature = 0

	routerCfg := cfg.OpenRouterFor(contractx.StageRouter)
	if routerCfg.Model != "x-ai/grok-4.1-fast" {
		t.Fatalf("router model = %q, want the per-stage override", routerCfg.Model)
	}
	if routerCfg.Temperature != 0 {
		t.Fatalf("router temperature = %v, want override 0", routerCfg.Temperature)
	}

	agendaCfg := cfg.OpenRouterFor(contractx.StageAgenda)
	if agendaCfg.Temperature != 0.5 {
		t.Fatalf("agenda temperature = %v, want shared default 0.5", agendaCfg.Temperature)
	}
}

func TestValidateRequiresKeyAndModel(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.APIKey = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank api key")
	}

	cfg = testConfig()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank model")
	}
}
