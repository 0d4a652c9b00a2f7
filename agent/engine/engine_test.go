package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	sessionx "github.com/assessor-ai/assessor/agent/session"
)

type fakeRouter struct {
	out  string
	err  error
	seen *contractx.RouterRequest
}

func (f *fakeRouter) Route(ctx context.Context, req contractx.RouterRequest) (string, error) {
	f.seen = &req
	return f.out, f.err
}

type fakeSpecialist struct {
	result contractx.SpecialistResult
	err    error
	calls  int
}

func (f *fakeSpecialist) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeFAQ struct {
	answer string
	err    error
	calls  int
}

func (f *fakeFAQ) Answer(ctx context.Context, req contractx.SpecialistRequest) (string, error) {
	f.calls++
	return f.answer, f.err
}

type fakeRegistry struct {
	router    contractx.Router
	financial contractx.Specialist
	agenda    contractx.Specialist
	faq       contractx.ProseSpecialist
}

func (r *fakeRegistry) Router() contractx.Router       { return r.router }
func (r *fakeRegistry) Financial() contractx.Specialist { return r.financial }
func (r *fakeRegistry) Agenda() contractx.Specialist   { return r.agenda }
func (r *fakeRegistry) FAQ() contractx.ProseSpecialist { return r.faq }

func newTestEngine(t *testing.T, reg contractx.Registry) (*Engine, *sessionx.MemoryStore) {
	t.Helper()
	store := sessionx.NewMemoryStore()
	e, err := New(context.Background(), store, reg, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e, store
}

func TestTurnDirectReplySkipsSpecialists(t *testing.T) {
	t.Parallel()

	financial := &fakeSpecialist{}
	faq := &fakeFAQ{}
	reg := &fakeRegistry{
		router:    &fakeRouter{out: "Olá! Posso te ajudar com finanças ou agenda; por onde quer começar?"},
		financial: financial,
		agenda:    &fakeSpecialist{},
		faq:       faq,
	}
	e, store := newTestEngine(t, reg)

	out, err := e.RunTurn(context.Background(), "s1", "Oi, tudo bem?")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if out != "Olá! Posso te ajudar com finanças ou agenda; por onde quer começar?" {
		t.Fatalf("unexpected reply: %q", out)
	}
	if financial.calls != 0 || faq.calls != 0 {
		t.Fatal("specialists must not run on a direct reply")
	}

	history, err := store.History(context.Background(), "s1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != sessionx.RoleUser || history[0].Text != "Oi, tudo bem?" {
		t.Fatalf("unexpected first entry: %+v", history[0])
	}
	if history[1].Role != sessionx.RoleAssistant || history[1].Text != out {
		t.Fatalf("unexpected second entry: %+v", history[1])
	}
}

func TestTurnFinancialRendersContract(t *testing.T) {
	t.Parallel()

	financial := &fakeSpecialist{result: contractx.SpecialistResult{
		Domain:         contractx.DomainFinancial,
		Intent:         "consultar",
		Reply:          "Você gastou R$ 842,75 com 'comida' no mês passado.",
		Recommendation: "Quer detalhar por estabelecimento?",
	}}
	reg := &fakeRegistry{
		router: &fakeRouter{out: "ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quanto gastei com mercado no mês passado?\nPERSONA=assessor objetivo\nCLARIFY="},
		financial: financial,
		agenda:    &fakeSpecialist{},
		faq:       &fakeFAQ{},
	}
	e, _ := newTestEngine(t, reg)

	out, err := e.RunTurn(context.Background(), "s1", "Quanto gastei com mercado no mês passado?")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}

	want := "Você gastou R$ 842,75 com 'comida' no mês passado.\n- *Recomendação*:\nQuer detalhar por estabelecimento?"
	if out != want {
		t.Fatalf("RunTurn() =\n%q\nwant\n%q", out, want)
	}
	if financial.calls != 1 {
		t.Fatalf("financial specialist calls = %d, want 1", financial.calls)
	}
}

func TestTurnClarifySection(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		router: &fakeRouter{out: "ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quero um resumo dos gastos\nPERSONA=p\nCLARIFY="},
		financial: &fakeSpecialist{result: contractx.SpecialistResult{
			Domain:         contractx.DomainFinancial,
			Intent:         "resumo",
			Reply:          "Preciso do período para seguir.",
			Recommendation: "",
			Clarify:        "Qual período considerar?",
		}},
		agenda: &fakeSpecialist{},
		faq:    &fakeFAQ{},
	}
	e, _ := newTestEngine(t, reg)

	out, err := e.RunTurn(context.Background(), "s1", "Quero um resumo dos gastos")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	want := "Preciso do período para seguir.\n- *Acompanhamento* (opcional):\nQual período considerar?"
	if out != want {
		t.Fatalf("RunTurn() =\n%q\nwant\n%q", out, want)
	}
	if strings.Contains(out, "Recomendação") {
		t.Fatal("no recommendation section expected")
	}
}

func TestTurnFAQBypassesRenderer(t *testing.T) {
	t.Parallel()

	faq := &fakeFAQ{answer: "O plano premium inclui relatórios mensais."}
	reg := &fakeRegistry{
		router: &fakeRouter{out: "ROUTE=faq\nPERGUNTA_ORIGINAL=O que inclui o plano premium?\nPERSONA=p\nCLARIFY="},
		financial: &fakeSpecialist{},
		agenda:    &fakeSpecialist{},
		faq:       faq,
	}
	e, _ := newTestEngine(t, reg)

	out, err := e.RunTurn(context.Background(), "s1", "O que inclui o plano premium?")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if out != "O plano premium inclui relatórios mensais." {
		t.Fatalf("unexpected answer: %q", out)
	}
	if faq.calls != 1 {
		t.Fatalf("faq calls = %d, want 1", faq.calls)
	}
}

func TestTurnUnknownDomainIsMalformedDirective(t *testing.T) {
	t.Parallel()

	financial := &fakeSpecialist{}
	reg := &fakeRegistry{
		router:    &fakeRouter{out: "ROUTE=viagem\nPERGUNTA_ORIGINAL=Reserva um voo\nPERSONA=p\nCLARIFY="},
		financial: financial,
		agenda:    &fakeSpecialist{},
		faq:       &fakeFAQ{},
	}
	e, _ := newTestEngine(t, reg)

	_, err := e.RunTurn(context.Background(), "s1", "Reserva um voo")
	if !errors.Is(err, contractx.ErrMalformedDirective) {
		t.Fatalf("expected ErrMalformedDirective, got %v", err)
	}
	if financial.calls != 0 {
		t.Fatal("no specialist may run on a malformed directive")
	}
}

func TestTurnNilSpecialistIsUnknownRoute(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		router: &fakeRouter{out: "ROUTE=agenda\nPERGUNTA_ORIGINAL=Tenho reunião amanhã?\nPERSONA=p\nCLARIFY="},
		faq:    &fakeFAQ{},
	}
	e, _ := newTestEngine(t, reg)

	_, err := e.RunTurn(context.Background(), "s1", "Tenho reunião amanhã?")
	if !errors.Is(err, contractx.ErrUnknownRoute) {
		t.Fatalf("expected ErrUnknownRoute, got %v", err)
	}
}

func TestTurnMalformedContractKeepsUserMessage(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		router: &fakeRouter{out: "ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quanto gastei?\nPERSONA=p\nCLARIFY="},
		financial: &fakeSpecialist{err: malformedContractErr()},
		agenda:    &fakeSpecialist{},
		faq:       &fakeFAQ{},
	}
	e, store := newTestEngine(t, reg)

	_, err := e.RunTurn(context.Background(), "s1", "Quanto gastei?")
	if !errors.Is(err, contractx.ErrMalformedContract) {
		t.Fatalf("expected ErrMalformedContract, got %v", err)
	}

	history, err := store.History(context.Background(), "s1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0].Text != "Quanto gastei?" {
		t.Fatalf("user message missing from history: %+v", history)
	}
}

func TestTurnRouterFailure(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		router:    &fakeRouter{err: errUpstream()},
		financial: &fakeSpecialist{},
		agenda:    &fakeSpecialist{},
		faq:       &fakeFAQ{},
	}
	e, _ := newTestEngine(t, reg)

	_, err := e.RunTurn(context.Background(), "s1", "Oi")
	if !errors.Is(err, contractx.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestTurnHistoryWindowedForPrompt(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: "tudo certo"}
	reg := &fakeRegistry{
		router:    router,
		financial: &fakeSpecialist{},
		agenda:    &fakeSpecialist{},
		faq:       &fakeFAQ{},
	}
	store := sessionx.NewMemoryStore()
	e, err := New(context.Background(), store, reg, Config{HistoryWindow: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, text := range []string{"um", "dois", "três"} {
		if err := store.Append(context.Background(), "s1", sessionx.UserMessage(text)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	if _, err := e.RunTurn(context.Background(), "s1", "quatro"); err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if router.seen == nil {
		t.Fatal("router was not invoked")
	}
	if len(router.seen.History) != 2 {
		t.Fatalf("prompt history length = %d, want 2", len(router.seen.History))
	}
	if router.seen.History[0].Text != "dois" || router.seen.History[1].Text != "três" {
		t.Fatalf("unexpected window: %+v", router.seen.History)
	}
	if router.seen.Today == "" {
		t.Fatal("today anchor missing from router request")
	}
}

func TestTurnEmptySessionOrInput(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		router:    &fakeRouter{out: "ok"},
		financial: &fakeSpecialist{},
		agenda:    &fakeSpecialist{},
		faq:       &fakeFAQ{},
	}
	e, _ := newTestEngine(t, reg)

	if _, err := e.RunTurn(context.Background(), "  ", "Oi"); !errors.Is(err, sessionx.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := e.RunTurn(context.Background(), "s1", "  "); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTranslateTaxonomy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{errUpstream(), "instabilidade"},
		{malformedContractErr(), "resposta inválida"},
		{wrapped(contractx.ErrMalformedDirective), "encaminhar"},
		{wrapped(contractx.ErrUnknownRoute), "esse tipo de pedido"},
		{wrapped(sessionx.ErrInvalidSession), "sessão"},
		{errors.New("boom"), "não consegui processar"},
	}
	for _, tc := range cases {
		got := Translate(tc.err)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("Translate(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
	if Translate(nil) != "" {
		t.Fatal("Translate(nil) must be empty")
	}
}

func errUpstream() error {
	return wrapped(contractx.ErrUpstreamUnavailable)
}

func malformedContractErr() error {
	return wrapped(contractx.ErrMalformedContract)
}

func wrapped(sentinel error) error {
	return fmt.Errorf("%w: test", sentinel)
}
