// Package engine runs one conversation turn end to end: router decision,
// specialist dispatch, deterministic rendering, session history bookkeeping.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	"github.com/assessor-ai/assessor/agent/agents/orchestrator"
	codecx "github.com/assessor-ai/assessor/agent/codec"
	contractx "github.com/assessor-ai/assessor/agent/contract"
	sessionx "github.com/assessor-ai/assessor/agent/session"
	logx "github.com/assessor-ai/assessor/pkg/logger"
)

const (
	DefaultHistoryWindow = 12
	DefaultTimezone      = "America/Sao_Paulo"
)

// Config tunes turn execution. HistoryWindow caps how many stored messages
// reach the prompts; the store itself keeps the full history.
type Config struct {
	HistoryWindow int    `envconfig:"HISTORY_WINDOW" split_words:"true" default:"12"`
	Timezone      string `envconfig:"TIMEZONE" split_words:"true" default:"America/Sao_Paulo"`
}

type turnInput struct {
	SessionID string
	Input     string
}

type turnState struct {
	SessionID string
	Input     string
	Today     string
	History   []sessionx.Message

	RouterOut string
	Directive contractx.RouteDirective
	Result    contractx.SpecialistResult
}

// Engine is the per-turn state machine. Turns for different sessions may run
// concurrently; turns for the same session must be serialized by the caller,
// history appends are not idempotent.
type Engine struct {
	store    sessionx.Store
	registry contractx.Registry

	runner compose.Runnable[turnInput, string]

	historyWindow int
	loc           *time.Location
	now           func() time.Time
	log           zerolog.Logger
}

// New compiles the turn graph. A nil store or registry is refused; an
// unknown timezone falls back to UTC.
func New(ctx context.Context, store sessionx.Store, registry contractx.Registry, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: session store is required", contractx.ErrValidation)
	}
	if registry == nil || registry.Router() == nil {
		return nil, fmt.Errorf("%w: stage registry with a router is required", contractx.ErrValidation)
	}

	window := cfg.HistoryWindow
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	e := &Engine{
		store:         store,
		registry:      registry,
		historyWindow: window,
		loc:           loc,
		now:           time.Now,
		log:           logx.Stage("engine"),
	}

	runner, err := e.compileTurnGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	e.runner = runner
	return e, nil
}

// RunTurn executes one turn and returns the final user-facing text. Errors
// carry the taxonomy sentinels; Translate converts them for display.
func (e *Engine) RunTurn(ctx context.Context, sessionID, input string) (string, error) {
	return e.runner.Invoke(ctx, turnInput{SessionID: sessionID, Input: input})
}

// Today returns the turn's date anchor in the engine's timezone.
func (e *Engine) Today() string {
	return e.now().In(e.loc).Format("2006-01-02")
}

func (e *Engine) compileTurnGraph(ctx context.Context) (compose.Runnable[turnInput, string], error) {
	graph := compose.NewGraph[turnInput, string]()

	if err := graph.AddLambdaNode("prepare_turn",
		compose.InvokableLambda(func(ctx context.Context, in turnInput) (*turnState, error) {
			return e.prepareTurn(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add prepare node: %w", err)
	}

	if err := graph.AddLambdaNode("run_router",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (*turnState, error) {
			out, err := e.registry.Router().Route(ctx, contractx.RouterRequest{
				SessionID: st.SessionID,
				Input:     st.Input,
				Today:     st.Today,
				History:   st.History,
			})
			if err != nil {
				return nil, err
			}
			st.RouterOut = out
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add router node: %w", err)
	}

	if err := graph.AddLambdaNode("direct_reply",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (string, error) {
			return e.finishTurn(ctx, st, st.RouterOut), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add direct reply node: %w", err)
	}

	if err := graph.AddLambdaNode("decode_directive",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (*turnState, error) {
			directive, err := codecx.DecodeDirective(st.RouterOut)
			if err != nil {
				return nil, err
			}
			st.Directive = directive
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add decode node: %w", err)
	}

	if err := graph.AddLambdaNode("run_faq",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (string, error) {
			faq := e.registry.FAQ()
			if faq == nil {
				return "", fmt.Errorf("%w: no faq specialist registered", contractx.ErrUnknownRoute)
			}
			answer, err := faq.Answer(ctx, specialistRequest(st))
			if err != nil {
				return "", err
			}
			return e.finishTurn(ctx, st, answer), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add faq node: %w", err)
	}

	if err := graph.AddLambdaNode("run_specialist",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (*turnState, error) {
			spec := e.specialistFor(st.Directive.Domain)
			if spec == nil {
				return nil, fmt.Errorf("%w: no specialist registered for %q", contractx.ErrUnknownRoute, st.Directive.Domain)
			}
			result, err := spec.Run(ctx, specialistRequest(st))
			if err != nil {
				return nil, err
			}
			st.Result = result
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add specialist node: %w", err)
	}

	if err := graph.AddLambdaNode("format_reply",
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (string, error) {
			rendered, err := orchestrator.Render(st.Result)
			if err != nil {
				return "", err
			}
			return e.finishTurn(ctx, st, rendered), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add format node: %w", err)
	}

	routerBranch := compose.NewGraphBranch(
		func(ctx context.Context, st *turnState) (string, error) {
			if codecx.IsDirective(st.RouterOut) {
				return "decode_directive", nil
			}
			return "direct_reply", nil
		},
		map[string]bool{
			"decode_directive": true,
			"direct_reply":     true,
		},
	)

	dispatchBranch := compose.NewGraphBranch(
		func(ctx context.Context, st *turnState) (string, error) {
			if st.Directive.Domain == contractx.DomainFAQ {
				return "run_faq", nil
			}
			return "run_specialist", nil
		},
		map[string]bool{
			"run_faq":        true,
			"run_specialist": true,
		},
	)

	if err := graph.AddEdge(compose.START, "prepare_turn"); err != nil {
		return nil, fmt.Errorf("add edge start->prepare: %w", err)
	}
	if err := graph.AddEdge("prepare_turn", "run_router"); err != nil {
		return nil, fmt.Errorf("add edge prepare->router: %w", err)
	}
	if err := graph.AddBranch("run_router", routerBranch); err != nil {
		return nil, fmt.Errorf("add router branch: %w", err)
	}
	if err := graph.AddBranch("decode_directive", dispatchBranch); err != nil {
		return nil, fmt.Errorf("add dispatch branch: %w", err)
	}
	if err := graph.AddEdge("run_specialist", "format_reply"); err != nil {
		return nil, fmt.Errorf("add edge specialist->format: %w", err)
	}
	if err := graph.AddEdge("direct_reply", compose.END); err != nil {
		return nil, fmt.Errorf("add edge direct->end: %w", err)
	}
	if err := graph.AddEdge("run_faq", compose.END); err != nil {
		return nil, fmt.Errorf("add edge faq->end: %w", err)
	}
	if err := graph.AddEdge("format_reply", compose.END); err != nil {
		return nil, fmt.Errorf("add edge format->end: %w", err)
	}

	return graph.Compile(ctx, compose.WithGraphName("engine.turn_graph"))
}

// prepareTurn validates the request, snapshots the windowed history for the
// prompts and appends the user message. The append happens before any stage
// runs, so the message survives even when a later stage errors the turn.
func (e *Engine) prepareTurn(ctx context.Context, in turnInput) (*turnState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", sessionx.ErrInvalidSession)
	}
	if strings.TrimSpace(in.Input) == "" {
		return nil, fmt.Errorf("%w: empty user input", contractx.ErrValidation)
	}

	history, err := e.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if err := e.store.Append(ctx, sessionID, sessionx.UserMessage(in.Input)); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	return &turnState{
		SessionID: sessionID,
		Input:     in.Input,
		Today:     e.Today(),
		History:   sessionx.Window(history, e.historyWindow),
	}, nil
}

// finishTurn records the assistant reply. A failed append does not lose the
// turn; the reply has already been produced.
func (e *Engine) finishTurn(ctx context.Context, st *turnState, reply string) string {
	if err := e.store.Append(ctx, st.SessionID, sessionx.AssistantMessage(reply)); err != nil {
		e.log.Warn().Err(err).Str("session_id", st.SessionID).Msg("append assistant reply failed")
	}
	return reply
}

func (e *Engine) specialistFor(domain contractx.Domain) contractx.Specialist {
	switch domain {
	case contractx.DomainFinancial:
		return e.registry.Financial()
	case contractx.DomainAgenda:
		return e.registry.Agenda()
	}
	return nil
}

func specialistRequest(st *turnState) contractx.SpecialistRequest {
	return contractx.SpecialistRequest{
		Directive: st.Directive,
		Today:     st.Today,
		History:   st.History,
	}
}
