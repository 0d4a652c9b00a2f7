package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	ledgerx "github.com/assessor-ai/assessor/agent/ledger"
)

// LedgerAPI is the slice of the ledger service the gateway needs.
type LedgerAPI interface {
	Insert(ctx context.Context, in ledgerx.InsertInput) (ledgerx.Transaction, error)
	Query(ctx context.Context, f ledgerx.QueryFilters) ([]ledgerx.Transaction, error)
	TotalBalance(ctx context.Context) (float64, error)
	DailyBalance(ctx context.Context, date string) (float64, error)
}

// Gateway executes planned tool calls. Collaborator failures are converted
// into error-status results so the specialist can explain them to the user
// instead of the turn aborting.
type Gateway struct {
	ledger LedgerAPI
}

func NewGateway(ledger LedgerAPI) *Gateway {
	return &Gateway{ledger: ledger}
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func (g *Gateway) Execute(ctx context.Context, domain contractx.Domain, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	allowed := map[string]bool{}
	for _, info := range InfosForDomain(domain) {
		allowed[info.Name] = true
	}

	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if !allowed[req.Tool] {
			results = append(results, contractx.ToolResult{
				Tool:  req.Tool,
				Error: fmt.Sprintf("tool=%s indisponível para o domínio=%s", req.Tool, domain),
			})
			continue
		}
		results = append(results, g.run(ctx, req))
	}
	return results, nil
}

func (g *Gateway) run(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	res, err := g.dispatch(ctx, req)
	if err != nil {
		log.Warn().Str("tool", req.Tool).Err(err).Msg("tool call failed")
		return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
	}
	return contractx.ToolResult{Tool: req.Tool, Result: res}
}

func (g *Gateway) dispatch(ctx context.Context, req contractx.ToolRequest) (any, error) {
	if g.ledger == nil {
		return nil, fmt.Errorf("ledger service is not configured")
	}

	switch req.Tool {
	case ToolTransactionsAdd:
		amount, err := floatArg(req.Args, "amount")
		if err != nil {
			return nil, err
		}
		sourceText, err := stringArg(req.Args, "source_text")
		if err != nil {
			return nil, err
		}
		in := ledgerx.InsertInput{
			Amount:        amount,
			SourceText:    sourceText,
			TypeName:      optString(req.Args, "type_name"),
			Description:   optString(req.Args, "description"),
			PaymentMethod: optString(req.Args, "payment_method"),
		}
		if raw := optString(req.Args, "occurred_at"); raw != "" {
			at, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("occurred_at inválido: %v", err)
			}
			in.OccurredAt = &at
		}
		if id, ok := optInt(req.Args, "category_id"); ok {
			in.CategoryID = &id
		}
		tx, err := g.ledger.Insert(ctx, in)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "ok", "id": tx.ID, "occurred_at": tx.OccurredAt.Format(time.RFC3339)}, nil

	case ToolTransactionsQuery:
		f := ledgerx.QueryFilters{
			Text:     optString(req.Args, "text"),
			TypeName: optString(req.Args, "type_name"),
			Date:     optString(req.Args, "date"),
			DateFrom: optString(req.Args, "date_from"),
			DateTo:   optString(req.Args, "date_to"),
		}
		if limit, ok := optInt(req.Args, "limit"); ok {
			f.Limit = int(limit)
		}
		txs, err := g.ledger.Query(ctx, f)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "ok", "transactions": txs}, nil

	case ToolBalanceTotal:
		balance, err := g.ledger.TotalBalance(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "ok", "total_balance": balance}, nil

	case ToolBalanceDaily:
		date, err := stringArg(req.Args, "date")
		if err != nil {
			return nil, err
		}
		balance, err := g.ledger.DailyBalance(ctx, date)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "ok", "daily_balance": balance}, nil
	}

	return nil, fmt.Errorf("tool=%s desconhecida", req.Tool)
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s é obrigatório", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s deve ser texto", key)
	}
	return s, nil
}

func optString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func floatArg(args map[string]any, key string) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s é obrigatório", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%s deve ser numérico", key)
}

func optInt(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
