package prompt

import (
	"github.com/cloudwego/eino/schema"

	"github.com/assessor-ai/assessor/agent/session"
)

// Few-shot pairs are injected through a messages placeholder, so their braces
// are never run through the template formatter.

// RouterShots anchors the routing decision: direct replies for small talk and
// out-of-scope, the plain-text forwarding protocol for specialist turns.
func RouterShots() []*schema.Message {
	return []*schema.Message{
		schema.UserMessage("Oi, tudo bem?"),
		schema.AssistantMessage("Olá! Posso te ajudar com finanças ou agenda; por onde quer começar?", nil),

		schema.UserMessage("Me conta uma piada."),
		schema.AssistantMessage("Consigo ajudar apenas com finanças ou agenda. Prefere olhar seus gastos ou marcar um compromisso?", nil),

		schema.UserMessage("Quanto gastei com mercado no mês passado?"),
		schema.AssistantMessage("ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quanto gastei com mercado no mês passado?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=", nil),

		schema.UserMessage("Agendar pagamento amanhã às 9h"),
		schema.AssistantMessage("Você quer lançar uma transação (finanças) ou criar um compromisso no calendário (agenda)?", nil),

		schema.UserMessage("Tenho reunião amanhã às 9h?"),
		schema.AssistantMessage("ROUTE=agenda\nPERGUNTA_ORIGINAL=Tenho reunião amanhã às 9h?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=", nil),

		schema.UserMessage("Como funciona o plano premium?"),
		schema.AssistantMessage("ROUTE=faq\nPERGUNTA_ORIGINAL=Como funciona o plano premium?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY=", nil),
	}
}

// FinancialShots shows the JSON contract for query, insert and clarify turns.
func FinancialShots() []*schema.Message {
	return []*schema.Message{
		schema.UserMessage("ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quanto gastei com mercado no mês passado?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY="),
		schema.AssistantMessage(`{"dominio":"financeiro","intencao":"consultar","resposta":"Você gastou R$ 842,75 com 'comida' no mês passado.","recomendacao":"Quer detalhar por estabelecimento?","janela_tempo":{"de":"2025-08-01","ate":"2025-08-31","rotulo":"mês passado (ago/2025)"}}`, nil),

		schema.UserMessage("ROUTE=financeiro\nPERGUNTA_ORIGINAL=Registrar almoço hoje R$ 45 no débito\nPERSONA={PERSONA_SISTEMA}\nCLARIFY="),
		schema.AssistantMessage(`{"dominio":"financeiro","intencao":"inserir","resposta":"Lancei R$ 45,00 em 'comida' hoje (débito).","recomendacao":"Deseja adicionar uma observação?","escrita":{"operacao":"adicionar","id":2045}}`, nil),

		schema.UserMessage("ROUTE=financeiro\nPERGUNTA_ORIGINAL=Quero um resumo dos gastos\nPERSONA={PERSONA_SISTEMA}\nCLARIFY="),
		schema.AssistantMessage(`{"dominio":"financeiro","intencao":"resumo","resposta":"Preciso do período para seguir.","recomendacao":"","esclarecer":"Qual período considerar (ex.: hoje, esta semana, mês passado)?"}`, nil),
	}
}

// AgendaShots shows the JSON contract for availability, create and clarify turns.
func AgendaShots() []*schema.Message {
	return []*schema.Message{
		schema.UserMessage("ROUTE=agenda\nPERGUNTA_ORIGINAL=Tenho janela amanhã à tarde?\nPERSONA={PERSONA_SISTEMA}\nCLARIFY="),
		schema.AssistantMessage(`{"dominio":"agenda","intencao":"disponibilidade","resposta":"Você está livre amanhã das 14:00 às 16:00.","recomendacao":"Quer reservar 15:00-16:00?","janela_tempo":{"de":"2025-09-29T14:00","ate":"2025-09-29T16:00","rotulo":"amanhã 14:00-16:00"}}`, nil),

		schema.UserMessage("ROUTE=agenda\nPERGUNTA_ORIGINAL=Marcar reunião com João amanhã às 9h por 1 hora\nPERSONA={PERSONA_SISTEMA}\nCLARIFY="),
		schema.AssistantMessage(`{"dominio":"agenda","intencao":"criar","resposta":"Posso criar 'Reunião com João' amanhã 09:00-10:00.","recomendacao":"Confirmo o envio do convite?","janela_tempo":{"de":"2025-09-29T09:00","ate":"2025-09-29T10:00","rotulo":"amanhã 09:00-10:00"},"evento":{"titulo":"Reunião com João","data":"2025-09-29","inicio":"09:00","fim":"10:00","local":"online"}}`, nil),

		schema.UserMessage("ROUTE=agenda\nPERGUNTA_ORIGINAL=Agendar revisão do orçamento na sexta\nPERSONA={PERSONA_SISTEMA}\nCLARIFY="),
		schema.AssistantMessage(`{"dominio":"agenda","intencao":"criar","resposta":"Preciso do horário para agendar.","recomendacao":"","esclarecer":"Qual horário você prefere na sexta?"}`, nil),
	}
}

// HistoryMessages converts stored session turns into chat messages for the
// history placeholder.
func HistoryMessages(history []session.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case session.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Text, nil))
		default:
			out = append(out, schema.UserMessage(m.Text))
		}
	}
	return out
}
