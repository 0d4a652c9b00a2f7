package contract

import (
	sessionx "github.com/assessor-ai/assessor/agent/session"
)

// Domain is the route a turn is forwarded to.
type Domain string

const (
	DomainFinancial Domain = "financeiro"
	DomainAgenda    Domain = "agenda"
	DomainFAQ       Domain = "faq"
)

func (d Domain) Known() bool {
	switch d {
	case DomainFinancial, DomainAgenda, DomainFAQ:
		return true
	}
	return false
}

// StageType selects per-stage model configuration.
type StageType string

const (
	StageRouter    StageType = "router"
	StageFinancial StageType = "financial"
	StageAgenda    StageType = "agenda"
	StageFAQ       StageType = "faq"
)

// RouteDirective is the parsed form of the router's forwarding protocol.
type RouteDirective struct {
	Domain           Domain
	OriginalQuestion string
	Persona          string
	Clarify          string
}

// SpecialistResult is the JSON contract a financial/agenda specialist emits.
// Recommendation may be empty but is mandatory on the wire; decoding enforces
// its presence.
type SpecialistResult struct {
	Domain         Domain             `json:"dominio"`
	Intent         string             `json:"intencao"`
	Reply          string             `json:"resposta"`
	Recommendation string             `json:"recomendacao"`
	FollowUp       string             `json:"acompanhamento,omitempty"`
	Clarify        string             `json:"esclarecer,omitempty"`
	TimeWindow     *TimeWindow        `json:"janela_tempo,omitempty"`
	Event          *Event             `json:"evento,omitempty"`
	Write          *WriteOp           `json:"escrita,omitempty"`
	Indicators     map[string]float64 `json:"indicadores,omitempty"`
}

type TimeWindow struct {
	From  string `json:"de"`
	Until string `json:"ate"`
	Label string `json:"rotulo"`
}

type Event struct {
	Title        string   `json:"titulo"`
	Date         string   `json:"data"`
	Start        string   `json:"inicio"`
	End          string   `json:"fim"`
	Location     string   `json:"local,omitempty"`
	Participants []string `json:"participantes,omitempty"`
}

type WriteOp struct {
	Operation string `json:"operacao"`
	ID        int64  `json:"id"`
}

// FinancialIntents and AgendaIntents enumerate the valid intencao values per
// domain.
var (
	FinancialIntents = []string{"consultar", "inserir", "atualizar", "deletar", "resumo"}
	AgendaIntents    = []string{"consultar", "criar", "atualizar", "cancelar", "listar", "disponibilidade", "conflitos"}
)

func IntentsFor(d Domain) []string {
	switch d {
	case DomainFinancial:
		return FinancialIntents
	case DomainAgenda:
		return AgendaIntents
	}
	return nil
}

// RouterRequest carries everything the router stage needs for one decision.
// History is the windowed conversation before the current input.
type RouterRequest struct {
	SessionID string
	Input     string
	Today     string
	History   []sessionx.Message
}

// SpecialistRequest is the forwarded work unit for a specialist stage.
type SpecialistRequest struct {
	Directive RouteDirective
	Today     string
	History   []sessionx.Message
}

// ToolRequest is one domain tool invocation planned by a specialist.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult is the outcome of one tool invocation. Collaborator failures are
// carried in Error (a status:error result), never as a Go error: the
// specialist is expected to explain the failure in its resposta.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Passage is one retrieved FAQ snippet.
type Passage struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
}
