// Package agents assembles the conversation stages into the registry the
// engine runs against.
package agents

import (
	"context"
	"fmt"

	"github.com/assessor-ai/assessor/agent/agents/router"
	"github.com/assessor-ai/assessor/agent/agents/specialist"
	contractx "github.com/assessor-ai/assessor/agent/contract"
	llmx "github.com/assessor-ai/assessor/agent/llm"
	promptx "github.com/assessor-ai/assessor/agent/prompt"
	toolx "github.com/assessor-ai/assessor/agent/tool"
)

type registryImpl struct {
	router    contractx.Router
	financial contractx.Specialist
	agenda    contractx.Specialist
	faq       contractx.ProseSpecialist
}

func (r *registryImpl) Router() contractx.Router {
	return r.router
}

func (r *registryImpl) Financial() contractx.Specialist {
	return r.financial
}

func (r *registryImpl) Agenda() contractx.Specialist {
	return r.agenda
}

func (r *registryImpl) FAQ() contractx.ProseSpecialist {
	return r.faq
}

// NewRegistry builds the models per stage and wires the four stages. The
// gateway runs planned financial tools; the retriever backs the FAQ stage.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	gateway contractx.ToolGateway,
	retriever contractx.Retriever,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	routerCfg := cfg.OpenRouterFor(contractx.StageRouter)
	routerModel, err := routerCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create router model: %v", contractx.ErrUpstreamUnavailable, err)
	}
	financialCfg := cfg.OpenRouterFor(contractx.StageFinancial)
	financialModel, err := financialCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create financial model: %v", contractx.ErrUpstreamUnavailable, err)
	}
	agendaCfg := cfg.OpenRouterFor(contractx.StageAgenda)
	agendaModel, err := agendaCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create agenda model: %v", contractx.ErrUpstreamUnavailable, err)
	}
	faqCfg := cfg.OpenRouterFor(contractx.StageFAQ)
	faqModel, err := faqCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create faq model: %v", contractx.ErrUpstreamUnavailable, err)
	}

	routerStage, err := router.New(ctx, routerModel, prompts.Router)
	if err != nil {
		return nil, err
	}

	financial, err := specialist.New(ctx, financialModel, specialist.Config{
		Domain:       contractx.DomainFinancial,
		SystemPrompt: prompts.Financial,
		Shots:        promptx.FinancialShots(),
		Tools:        toolx.InfosForDomain(contractx.DomainFinancial),
		Gateway:      gateway,
	})
	if err != nil {
		return nil, err
	}

	agenda, err := specialist.New(ctx, agendaModel, specialist.Config{
		Domain:       contractx.DomainAgenda,
		SystemPrompt: prompts.Agenda,
		Shots:        promptx.AgendaShots(),
		Tools:        toolx.InfosForDomain(contractx.DomainAgenda),
		Gateway:      gateway,
	})
	if err != nil {
		return nil, err
	}

	faq, err := specialist.NewFAQ(ctx, faqModel, prompts.FAQ, retriever)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		router:    routerStage,
		financial: financial,
		agenda:    agenda,
		faq:       faq,
	}, nil
}
