// Package specialist implements the domain stages a routed turn lands on:
// the financial and agenda specialists that speak the JSON contract, and the
// retrieval-backed FAQ stage that answers in prose.
package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	codecx "github.com/assessor-ai/assessor/agent/codec"
	contractx "github.com/assessor-ai/assessor/agent/contract"
	promptx "github.com/assessor-ai/assessor/agent/prompt"
	logx "github.com/assessor-ai/assessor/pkg/logger"
)

// Config wires one contract specialist.
type Config struct {
	Domain       contractx.Domain
	SystemPrompt string
	Shots        []*schema.Message
	Tools        []*schema.ToolInfo
	Gateway      contractx.ToolGateway
}

type specialistImpl struct {
	domain         contractx.Domain
	shots          []*schema.Message
	gateway        contractx.ToolGateway
	planningRunner compose.Runnable[map[string]any, *schema.Message]
	finalizeRunner compose.Runnable[map[string]any, *schema.Message]
	log            zerolog.Logger
}

var _ contractx.Specialist = (*specialistImpl)(nil)

// New compiles the specialist graphs. When the domain has tools bound, every
// turn runs one planning round against the tool-calling model before the
// finalize call that produces the JSON contract.
func New(ctx context.Context, chatModel einomodel.ToolCallingChatModel, cfg Config) (contractx.Specialist, error) {
	if !cfg.Domain.Known() || cfg.Domain == contractx.DomainFAQ {
		return nil, fmt.Errorf("%w: domain %q has no contract specialist", contractx.ErrValidation, cfg.Domain)
	}
	if len(cfg.Tools) > 0 && cfg.Gateway == nil {
		return nil, fmt.Errorf("%w: tool gateway is required when tools are bound", contractx.ErrValidation)
	}

	s := &specialistImpl{
		domain:  cfg.Domain,
		shots:   cfg.Shots,
		gateway: cfg.Gateway,
		log:     logx.Stage("specialist." + string(cfg.Domain)),
	}

	if len(cfg.Tools) > 0 {
		toolModel, err := chatModel.WithTools(cfg.Tools)
		if err != nil {
			return nil, fmt.Errorf("bind tools for %s: %w", cfg.Domain, err)
		}
		s.planningRunner, err = compileModelGraph(ctx, toolModel, cfg.SystemPrompt, string(cfg.Domain)+".tool_planning_graph")
		if err != nil {
			return nil, err
		}
	}

	finalizeRunner, err := compileModelGraph(ctx, chatModel, cfg.SystemPrompt, string(cfg.Domain)+".finalize_graph")
	if err != nil {
		return nil, err
	}
	s.finalizeRunner = finalizeRunner

	return s, nil
}

func (s *specialistImpl) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResult, error) {
	if req.Directive.Domain != s.domain {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: directive for %q reached the %q specialist", contractx.ErrValidation, req.Directive.Domain, s.domain)
	}

	input := codecx.EncodeDirective(req.Directive)

	var results []contractx.ToolResult
	if s.planningRunner != nil {
		planned, err := s.plan(ctx, req, input)
		if err != nil {
			return contractx.SpecialistResult{}, err
		}
		if len(planned) > 0 {
			results, err = s.gateway.Execute(ctx, s.domain, planned)
			if err != nil {
				return contractx.SpecialistResult{}, fmt.Errorf("execute tools: %w", err)
			}
			s.log.Debug().Int("planned", len(planned)).Int("results", len(results)).Msg("tool round complete")
		}
	}

	raw, err := s.finalize(ctx, req, input, results)
	if err != nil {
		return contractx.SpecialistResult{}, err
	}

	out, err := codecx.DecodeResult(raw, s.domain)
	if err != nil {
		return contractx.SpecialistResult{}, err
	}
	return out, nil
}

// plan runs the tool-calling round and converts the model's tool calls into
// gateway requests. A reply without tool calls means the model decided it can
// answer directly.
func (s *specialistImpl) plan(ctx context.Context, req contractx.SpecialistRequest, input string) ([]contractx.ToolRequest, error) {
	msg, err := s.planningRunner.Invoke(ctx, map[string]any{
		"today":        req.Today,
		"shots":        s.shots,
		"chat_history": promptx.HistoryMessages(req.History),
		"input":        input,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s tool planning: %v", contractx.ErrUpstreamUnavailable, s.domain, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: %s tool planning returned nil", contractx.ErrUpstreamUnavailable, s.domain)
	}
	return toToolRequests(msg.ToolCalls)
}

func (s *specialistImpl) finalize(ctx context.Context, req contractx.SpecialistRequest, input string, results []contractx.ToolResult) (string, error) {
	if len(results) > 0 {
		encoded, err := json.Marshal(results)
		if err != nil {
			return "", fmt.Errorf("%w: marshal tool results: %v", contractx.ErrValidation, err)
		}
		input = input + "\n\nRESULTADOS_DAS_TOOLS:\n" + string(encoded)
	}

	msg, err := s.finalizeRunner.Invoke(ctx, map[string]any{
		"today":        req.Today,
		"shots":        s.shots,
		"chat_history": promptx.HistoryMessages(req.History),
		"input":        input,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s finalize: %v", contractx.ErrUpstreamUnavailable, s.domain, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: %s finalize returned empty content", contractx.ErrUpstreamUnavailable, s.domain)
	}
	return msg.Content, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			continue
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: tool %s arguments: %v", contractx.ErrMalformedContract, name, err)
			}
		}
		reqs = append(reqs, contractx.ToolRequest{Tool: name, Args: args})
	}
	return reqs, nil
}

func compileModelGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("shots", true),
		schema.MessagesPlaceholder("chat_history", true),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", graphName, err)
	}
	return runner, nil
}
