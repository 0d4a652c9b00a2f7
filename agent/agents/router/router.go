// Package router implements the conversation front door: one fast model call
// that either answers small talk directly or forwards the turn to a
// specialist via the plain-text protocol.
package router

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	promptx "github.com/assessor-ai/assessor/agent/prompt"
)

type routerImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
	shots  []*schema.Message
}

var _ contractx.Router = (*routerImpl)(nil)

// New compiles the router graph against the given chat model. The system
// prompt keeps the {today} variable; it is filled on every turn.
func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (contractx.Router, error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("shots", true),
		schema.MessagesPlaceholder("chat_history", true),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add router prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add router model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add router edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add router edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add router edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("router.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile router graph: %w", err)
	}

	return &routerImpl{runner: runner, shots: promptx.RouterShots()}, nil
}

func (r *routerImpl) Route(ctx context.Context, req contractx.RouterRequest) (string, error) {
	if strings.TrimSpace(req.Input) == "" {
		return "", fmt.Errorf("%w: empty user input", contractx.ErrValidation)
	}

	msg, err := r.runner.Invoke(ctx, map[string]any{
		"today":        req.Today,
		"shots":        r.shots,
		"chat_history": promptx.HistoryMessages(req.History),
		"input":        req.Input,
	})
	if err != nil {
		return "", fmt.Errorf("%w: router invoke: %v", contractx.ErrUpstreamUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: router returned empty content", contractx.ErrUpstreamUnavailable)
	}
	return strings.TrimSpace(msg.Content), nil
}
