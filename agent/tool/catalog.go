// Package tool declares the domain tools a specialist may plan and executes
// them against the ledger and calendar collaborators.
package tool

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/assessor-ai/assessor/agent/contract"
)

const (
	ToolTransactionsAdd   = "transactions.add"
	ToolTransactionsQuery = "transactions.query"
	ToolBalanceTotal      = "balance.total"
	ToolBalanceDaily      = "balance.daily"
)

// InfosForDomain returns the tools a domain's specialist may call. The agenda
// domain is a declared capability slot: no calendar operations are wired yet,
// so its specialist plans no tools.
func InfosForDomain(domain contractx.Domain) []*schema.ToolInfo {
	switch domain {
	case contractx.DomainFinancial:
		return []*schema.ToolInfo{
			{
				Name: ToolTransactionsAdd,
				Desc: "Insere uma transação financeira no banco de dados.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"amount":         {Type: schema.Number, Desc: "Valor da transação (use positivo).", Required: true},
					"source_text":    {Type: schema.String, Desc: "Texto original do usuário.", Required: true},
					"occurred_at":    {Type: schema.String, Desc: "Timestamp ISO 8601; se ausente, usa o momento atual."},
					"type_name":      {Type: schema.String, Desc: "Tipo em inglês: INCOME | EXPENSES | TRANSFER."},
					"category_id":    {Type: schema.Integer, Desc: "ID da categoria (opcional)."},
					"description":    {Type: schema.String, Desc: "Descrição (opcional)."},
					"payment_method": {Type: schema.String, Desc: "Forma de pagamento (opcional)."},
				}),
			},
			{
				Name: ToolTransactionsQuery,
				Desc: "Consulta transações com filtros opcionais, das mais recentes para as mais antigas.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"text":      {Type: schema.String, Desc: "Filtro por texto (descrição ou texto original)."},
					"type_name": {Type: schema.String, Desc: "Tipo: INCOME | EXPENSES | TRANSFER."},
					"date":      {Type: schema.String, Desc: "Data específica (YYYY-MM-DD)."},
					"date_from": {Type: schema.String, Desc: "Data inicial (YYYY-MM-DD)."},
					"date_to":   {Type: schema.String, Desc: "Data final (YYYY-MM-DD)."},
					"limit":     {Type: schema.Integer, Desc: "Máximo de transações a retornar."},
				}),
			},
			{
				Name:        ToolBalanceTotal,
				Desc:        "Retorna o saldo total (entradas menos gastos).",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
			},
			{
				Name: ToolBalanceDaily,
				Desc: "Retorna o saldo de um dia específico.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"date": {Type: schema.String, Desc: "Data (YYYY-MM-DD).", Required: true},
				}),
			},
		}
	case contractx.DomainAgenda:
		return nil
	default:
		return nil
	}
}
