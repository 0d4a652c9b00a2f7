package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	toolx "github.com/assessor-ai/assessor/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type fakeGateway struct {
	seenDomain contractx.Domain
	seenReqs   []contractx.ToolRequest
	results    []contractx.ToolResult
	err        error
}

func (g *fakeGateway) Execute(ctx context.Context, domain contractx.Domain, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	g.seenDomain = domain
	g.seenReqs = reqs
	if g.err != nil {
		return nil, g.err
	}
	return g.results, nil
}

func financialDirective(question string) contractx.RouteDirective {
	return contractx.RouteDirective{
		Domain:           contractx.DomainFinancial,
		OriginalQuestion: question,
		Persona:          "assessor objetivo",
	}
}

func TestSpecialistToolRoundThenContract(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{
		{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{{
				Function: schema.FunctionCall{
					Name:      toolx.ToolTransactionsQuery,
					Arguments: `{"text":"mercado","date_from":"2025-08-01","date_to":"2025-08-31"}`,
				},
			}},
		},
		{
			Role:    schema.Assistant,
			Content: `{"dominio":"financeiro","intencao":"consultar","resposta":"Você gastou R$ 842,75 com mercado no mês passado.","recomendacao":"Quer detalhar por estabelecimento?"}`,
		},
	}}
	gateway := &fakeGateway{results: []contractx.ToolResult{{
		Tool:   toolx.ToolTransactionsQuery,
		Result: map[string]any{"status": "ok", "total": 842.75},
	}}}

	spec, err := New(context.Background(), fake, Config{
		Domain:       contractx.DomainFinancial,
		SystemPrompt: "prompt {today}",
		Tools:        toolx.InfosForDomain(contractx.DomainFinancial),
		Gateway:      gateway,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		Directive: financialDirective("Quanto gastei com mercado no mês passado?"),
		Today:     "2025-09-28",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if gateway.seenDomain != contractx.DomainFinancial {
		t.Fatalf("gateway domain = %q", gateway.seenDomain)
	}
	if len(gateway.seenReqs) != 1 || gateway.seenReqs[0].Tool != toolx.ToolTransactionsQuery {
		t.Fatalf("unexpected tool requests: %#v", gateway.seenReqs)
	}
	if gateway.seenReqs[0].Args["text"] != "mercado" {
		t.Fatalf("tool args not decoded: %#v", gateway.seenReqs[0].Args)
	}
	if out.Intent != "consultar" {
		t.Fatalf("intent = %q, want consultar", out.Intent)
	}
	if out.Reply != "Você gastou R$ 842,75 com mercado no mês passado." {
		t.Fatalf("unexpected reply: %q", out.Reply)
	}
}

func TestSpecialistNoToolCallsSkipsGateway(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "posso responder direto"},
		{Role: schema.Assistant, Content: `{"dominio":"financeiro","intencao":"resumo","resposta":"Preciso do período para seguir.","recomendacao":"","esclarecer":"Qual período considerar?"}`},
	}}
	gateway := &fakeGateway{err: errors.New("must not be called")}

	spec, err := New(context.Background(), fake, Config{
		Domain:       contractx.DomainFinancial,
		SystemPrompt: "prompt {today}",
		Tools:        toolx.InfosForDomain(contractx.DomainFinancial),
		Gateway:      gateway,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		Directive: financialDirective("Quero um resumo dos gastos"),
		Today:     "2025-09-28",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gateway.seenReqs != nil {
		t.Fatalf("gateway was called with %#v", gateway.seenReqs)
	}
	if out.Clarify == "" {
		t.Fatal("expected esclarecer to survive decoding")
	}
}

func TestSpecialistWithoutToolsSingleCall(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: `{"dominio":"agenda","intencao":"criar","resposta":"Posso criar 'Reunião com João' amanhã 09:00-10:00.","recomendacao":"Confirmo o envio do convite?"}`},
	}}

	spec, err := New(context.Background(), fake, Config{
		Domain:       contractx.DomainAgenda,
		SystemPrompt: "prompt {today}",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		Directive: contractx.RouteDirective{
			Domain:           contractx.DomainAgenda,
			OriginalQuestion: "Marcar reunião com João amanhã às 9h",
		},
		Today: "2025-09-28",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fake.idx != 1 {
		t.Fatalf("model called %d times, want 1", fake.idx)
	}
	if out.Domain != contractx.DomainAgenda || out.Intent != "criar" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestSpecialistMalformedContract(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "Você gastou R$ 100,00 ontem."},
	}}

	spec, err := New(context.Background(), fake, Config{
		Domain:       contractx.DomainAgenda,
		SystemPrompt: "prompt {today}",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{
		Directive: contractx.RouteDirective{
			Domain:           contractx.DomainAgenda,
			OriginalQuestion: "Tenho reunião amanhã?",
		},
		Today: "2025-09-28",
	})
	if !errors.Is(err, contractx.ErrMalformedContract) {
		t.Fatalf("expected ErrMalformedContract, got %v", err)
	}
}

func TestSpecialistDomainMismatch(t *testing.T) {
	t.Parallel()

	spec, err := New(context.Background(), &fakeToolCallingModel{}, Config{
		Domain:       contractx.DomainAgenda,
		SystemPrompt: "prompt {today}",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{
		Directive: financialDirective("Quanto gastei?"),
	})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSpecialistModelFailure(t *testing.T) {
	t.Parallel()

	spec, err := New(context.Background(), &fakeToolCallingModel{err: errors.New("gateway timeout")}, Config{
		Domain:       contractx.DomainAgenda,
		SystemPrompt: "prompt {today}",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{
		Directive: contractx.RouteDirective{
			Domain:           contractx.DomainAgenda,
			OriginalQuestion: "Tenho reunião amanhã?",
		},
	})
	if !errors.Is(err, contractx.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

type fakeRetriever struct {
	passages []contractx.Passage
	err      error
	seenK    int
	seenQ    string
}

func (f *fakeRetriever) Search(ctx context.Context, query string, k int) ([]contractx.Passage, error) {
	f.seenQ, f.seenK = query, k
	return f.passages, f.err
}

type promptCapturingModel struct {
	fakeToolCallingModel
	seen []*schema.Message
}

func (m *promptCapturingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.seen = input
	return m.fakeToolCallingModel.Generate(ctx, input, opts...)
}

func TestFAQAnswerGroundedOnPassages(t *testing.T) {
	t.Parallel()

	model := &promptCapturingModel{fakeToolCallingModel: fakeToolCallingModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "O plano premium inclui relatórios mensais."},
	}}}
	retriever := &fakeRetriever{passages: []contractx.Passage{
		{ID: "chunk-0", Text: "O plano premium inclui relatórios mensais e suporte dedicado."},
		{ID: "chunk-3", Text: "O suporte atende em horário comercial."},
	}}

	faq, err := NewFAQ(context.Background(), model, "faq prompt {today}", retriever)
	if err != nil {
		t.Fatalf("NewFAQ() error = %v", err)
	}

	out, err := faq.Answer(context.Background(), contractx.SpecialistRequest{
		Directive: contractx.RouteDirective{
			Domain:           contractx.DomainFAQ,
			OriginalQuestion: "O que inclui o plano premium?",
		},
		Today: "2025-09-28",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if out != "O plano premium inclui relatórios mensais." {
		t.Fatalf("unexpected answer: %q", out)
	}
	if retriever.seenK != 6 {
		t.Fatalf("retriever k = %d, want 6", retriever.seenK)
	}

	last := model.seen[len(model.seen)-1]
	if !strings.Contains(last.Content, "suporte dedicado") {
		t.Fatalf("retrieved passage missing from prompt: %q", last.Content)
	}
	if !strings.Contains(last.Content, "O que inclui o plano premium?") {
		t.Fatalf("question missing from prompt: %q", last.Content)
	}
}

func TestFAQEmptyQuestion(t *testing.T) {
	t.Parallel()

	faq, err := NewFAQ(context.Background(), &fakeToolCallingModel{}, "faq prompt {today}", &fakeRetriever{})
	if err != nil {
		t.Fatalf("NewFAQ() error = %v", err)
	}
	_, err = faq.Answer(context.Background(), contractx.SpecialistRequest{})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFAQRetrieverFailure(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{err: errors.New("index offline")}
	faq, err := NewFAQ(context.Background(), &fakeToolCallingModel{}, "faq prompt {today}", retriever)
	if err != nil {
		t.Fatalf("NewFAQ() error = %v", err)
	}
	_, err = faq.Answer(context.Background(), contractx.SpecialistRequest{
		Directive: contractx.RouteDirective{OriginalQuestion: "Qual o horário?"},
	})
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}
