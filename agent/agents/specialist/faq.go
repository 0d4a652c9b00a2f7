package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	retrievalx "github.com/assessor-ai/assessor/agent/retrieval"
)

const faqUserTemplate = "Pergunta do usuário:\n{question}\n\nCONTEXTO (trechos do documento):\n{context}\n\nResponda com base APENAS no CONTEXTO."

type faqImpl struct {
	retriever contractx.Retriever
	runner    compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.ProseSpecialist = (*faqImpl)(nil)

// NewFAQ compiles the FAQ stage. It answers in prose straight to the user,
// grounded on the top passages the retriever returns for the question.
func NewFAQ(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string, retriever contractx.Retriever) (contractx.ProseSpecialist, error) {
	if retriever == nil {
		return nil, fmt.Errorf("%w: faq retriever is required", contractx.ErrValidation)
	}

	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("chat_history", true),
		schema.UserMessage(faqUserTemplate),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add faq prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add faq model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add faq edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add faq edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add faq edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("faq.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile faq graph: %w", err)
	}

	return &faqImpl{retriever: retriever, runner: runner}, nil
}

func (f *faqImpl) Answer(ctx context.Context, req contractx.SpecialistRequest) (string, error) {
	question := strings.TrimSpace(req.Directive.OriginalQuestion)
	if question == "" {
		return "", fmt.Errorf("%w: empty faq question", contractx.ErrValidation)
	}

	passages, err := f.retriever.Search(ctx, question, retrievalx.DefaultTopK)
	if err != nil {
		return "", fmt.Errorf("faq retrieval: %w", err)
	}

	msg, err := f.runner.Invoke(ctx, map[string]any{
		"today":        req.Today,
		"chat_history": []*schema.Message{},
		"question":     question,
		"context":      contextBlock(passages),
	})
	if err != nil {
		return "", fmt.Errorf("%w: faq invoke: %v", contractx.ErrUpstreamUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: faq returned empty content", contractx.ErrUpstreamUnavailable)
	}
	return strings.TrimSpace(msg.Content), nil
}

func contextBlock(passages []contractx.Passage) string {
	if len(passages) == 0 {
		return "(nenhum trecho encontrado)"
	}
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, strings.TrimSpace(p.Text))
	}
	return strings.Join(parts, "\n---\n")
}
